package delivery

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"rideNowBot/internal/pkg/logger/sl"
)

// Kind — вид исходящего действия
type Kind int

const (
	KindSend Kind = iota
	KindEdit
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSend:
		return "send"
	case KindEdit:
		return "edit"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// Action — исходящее действие для чат-транспорта. Текст уже локализован
// на момент постановки в очередь. ReplyMarkup — клавиатура tgbotapi или nil.
type Action struct {
	Kind        Kind
	ChatID      int64
	MessageID   int
	Text        string
	ReplyMarkup interface{}
}

// Transport — контракт чат-транспорта, который исполняет действия
type Transport interface {
	SendMessage(chatID int64, text string, replyMarkup interface{}) error
	EditMessage(chatID int64, messageID int, text string, replyMarkup interface{}) error
	DeleteMessage(chatID int64, messageID int) error
}

const (
	DefaultQueueSize      = 3000
	DefaultWorkerCount    = 2
	DefaultEnqueueTimeout = 10 * time.Millisecond
)

// Queue — ограниченная очередь исходящих действий с небольшим пулом воркеров.
// Постановка неблокирующая: при заполненной очереди действие отбрасывается,
// доступность важнее гарантированной доставки.
type Queue struct {
	actions        chan Action
	transport      Transport
	log            *slog.Logger
	workerCount    int
	enqueueTimeout time.Duration
}

type Config struct {
	QueueSize      int
	WorkerCount    int
	EnqueueTimeout time.Duration
}

func New(transport Transport, log *slog.Logger, cfg Config) *Queue {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = DefaultEnqueueTimeout
	}

	return &Queue{
		actions:        make(chan Action, cfg.QueueSize),
		transport:      transport,
		log:            log,
		workerCount:    cfg.WorkerCount,
		enqueueTimeout: cfg.EnqueueTimeout,
	}
}

// Run запускает воркеров и блокируется до отмены контекста
func (q *Queue) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i := 0; i < q.workerCount; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.worker(ctx, n)
		}(i)
	}

	wg.Wait()
}

// Enqueue ставит действие в очередь. При заполненной очереди действие
// отбрасывается с предупреждением в лог, ошибки наружу не отдаются.
func (q *Queue) Enqueue(a Action) {
	timer := time.NewTimer(q.enqueueTimeout)
	defer timer.Stop()

	select {
	case q.actions <- a:
	case <-timer.C:
		q.log.Warn("outbound queue is full, dropping action",
			slog.String("kind", a.Kind.String()),
			slog.Int64("chatId", a.ChatID))
	}
}

func (q *Queue) worker(ctx context.Context, n int) {
	log := q.log.With(slog.Int("worker", n))

	for {
		select {
		case <-ctx.Done():
			return
		case a := <-q.actions:
			q.execute(log, a)
		}
	}
}

func (q *Queue) execute(log *slog.Logger, a Action) {
	var err error

	switch a.Kind {
	case KindSend:
		err = q.transport.SendMessage(a.ChatID, a.Text, a.ReplyMarkup)
	case KindEdit:
		err = q.transport.EditMessage(a.ChatID, a.MessageID, a.Text, a.ReplyMarkup)
	case KindDelete:
		err = q.transport.DeleteMessage(a.ChatID, a.MessageID)
	}

	if err == nil {
		return
	}

	// edit без изменений и удаление уже удаленного — не ошибки
	if a.Kind != KindSend && isNoOpError(err) {
		return
	}

	log.Error("failed to execute outbound action",
		slog.String("kind", a.Kind.String()),
		slog.Int64("chatId", a.ChatID),
		sl.Err(err))
}

func isNoOpError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "message is not modified") ||
		strings.Contains(msg, "message to delete not found") ||
		strings.Contains(msg, "message to edit not found") ||
		strings.Contains(msg, "message can't be deleted")
}
