package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rideNowBot/internal/domain/models"
)

// UserStorage хранит профили Telegram-пользователей
type UserStorage struct {
	db *pgxpool.Pool
}

func NewUserStorage(pool *pgxpool.Pool) *UserStorage {
	return &UserStorage{db: pool}
}

// GetOrCreate возвращает пользователя, создавая запись при первом обращении.
// Имя и username обновляются, если изменились в Telegram.
func (s *UserStorage) GetOrCreate(ctx context.Context, tgID int64, fullName, username string) (*models.TelegramUser, error) {
	user, err := s.User(ctx, tgID)
	if err == nil {
		if user.FullName != fullName || user.Username != username {
			_, err = s.db.Exec(ctx,
				`UPDATE telegram_users SET full_name = $1, username = $2, updated_at = $3 WHERE tg_id = $4`,
				fullName, username, time.Now(), tgID,
			)
			if err != nil {
				return nil, fmt.Errorf("database error: %w", err)
			}
			user.FullName = fullName
			user.Username = username
		}
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	now := time.Now()
	var id int64
	err = s.db.QueryRow(ctx,
		`INSERT INTO telegram_users(tg_id, full_name, username, created_at, updated_at)
		 VALUES($1, $2, $3, $4, $5)
		 ON CONFLICT (tg_id) DO UPDATE SET updated_at = $5
		 RETURNING id`,
		tgID, fullName, username, now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &models.TelegramUser{
		ID:        id,
		TgID:      tgID,
		FullName:  fullName,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// User возвращает пользователя по tg_id
func (s *UserStorage) User(ctx context.Context, tgID int64) (*models.TelegramUser, error) {
	query := `SELECT id, tg_id, full_name, COALESCE(username, ''), COALESCE(language_code, ''), is_blocked, created_at, updated_at
	          FROM telegram_users WHERE tg_id = $1`

	var u models.TelegramUser
	err := s.db.QueryRow(ctx, query, tgID).Scan(
		&u.ID, &u.TgID, &u.FullName, &u.Username, &u.LanguageCode, &u.IsBlocked, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &u, nil
}

// Language возвращает код языка пользователя, пустую строку если язык не выбран
func (s *UserStorage) Language(ctx context.Context, tgID int64) (string, error) {
	query := `SELECT COALESCE(language_code, '') FROM telegram_users WHERE tg_id = $1`

	var lang string
	err := s.db.QueryRow(ctx, query, tgID).Scan(&lang)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	return lang, nil
}

// SetLanguage сохраняет выбранный язык пользователя
func (s *UserStorage) SetLanguage(ctx context.Context, tgID int64, lang string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE telegram_users SET language_code = $1, updated_at = $2 WHERE tg_id = $3`,
		lang, time.Now(), tgID,
	)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	return nil
}
