package models

// Event — входящее событие от пользователя: текст, геопозиция, контакт
// или нажатие inline-кнопки. Единый тип вместо пары Message/CallbackQuery.
type Event struct {
	UserID    int64
	ChatID    int64
	MessageID int

	Text     string
	Data     string // callback data, пустая для обычных сообщений
	Location *Location
	Contact  string // номер телефона из contact share

	FullName     string
	Username     string
	LanguageCode string

	IsCallback bool
	CallbackID string
}
