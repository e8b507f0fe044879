package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageStorage хранит локализованные тексты бота.
// Таблица bot_messages: slug + jsonb-колонка msg вида {"uz": "...", "ru": "..."}.
type MessageStorage struct {
	db *pgxpool.Pool
}

func NewMessageStorage(pool *pgxpool.Pool) *MessageStorage {
	return &MessageStorage{db: pool}
}

// Message возвращает тексты слага по языкам
func (s *MessageStorage) Message(ctx context.Context, slug string) (map[string]string, error) {
	query := `SELECT msg FROM bot_messages WHERE slug = $1`

	var msg map[string]string
	err := s.db.QueryRow(ctx, query, slug).Scan(&msg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("message %q not found", slug)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return msg, nil
}

// SlugByText ищет слаг по локализованному тексту (обратный поиск для
// распознавания нажатий reply-кнопок)
func (s *MessageStorage) SlugByText(ctx context.Context, lang, text string) (string, error) {
	query := `SELECT slug FROM bot_messages WHERE msg->>$1 = $2 LIMIT 1`

	var slug string
	err := s.db.QueryRow(ctx, query, lang, text).Scan(&slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	return slug, nil
}
