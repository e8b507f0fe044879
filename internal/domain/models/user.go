package models

import "time"

// TelegramUser представляет пользователя Telegram в системе
type TelegramUser struct {
	ID           int64     `db:"id"`
	TgID         int64     `db:"tg_id"`
	FullName     string    `db:"full_name"`
	Username     string    `db:"username"`
	LanguageCode string    `db:"language_code"`
	IsBlocked    bool      `db:"is_blocked"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Passenger — профиль пассажира во внешнем journey-бэкенде
type Passenger struct {
	TelegramID int64  `json:"telegram_id"`
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	IsActive   bool   `json:"is_active"`
}
