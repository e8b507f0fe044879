package statemachine

import (
	"sync"

	"rideNowBot/internal/domain/models"
)

// Store держит состояние диалогов в памяти процесса.
// Каждому пользователю соответствует свой мьютекс, поэтому события
// одного пользователя обрабатываются строго по одному, а разные
// пользователи не блокируют друг друга.
type Store struct {
	mu     sync.Mutex
	states map[int64]*userState
}

type userState struct {
	lock  sync.Mutex
	state models.ConversationState
}

func NewStore() *Store {
	return &Store{states: make(map[int64]*userState)}
}

// Acquire блокирует состояние пользователя и возвращает сессию.
// Вызывающий обязан вызвать Release.
func (s *Store) Acquire(userID int64) *Session {
	s.mu.Lock()
	us, ok := s.states[userID]
	if !ok {
		us = &userState{state: models.ConversationState{Phase: models.PhaseUnset}}
		s.states[userID] = us
	}
	s.mu.Unlock()

	us.lock.Lock()

	return &Session{us: us}
}

// Session — эксклюзивный доступ к состоянию одного пользователя.
// Все изменения видны следующему Acquire только после Release.
type Session struct {
	us *userState
}

func (s *Session) Phase() models.Phase {
	return s.us.state.Phase
}

func (s *Session) SetPhase(p models.Phase) {
	s.us.state.Phase = p
}

// Scratch возвращает указатель на черновик поездки для изменения на месте
func (s *Session) Scratch() *models.Scratch {
	return &s.us.state.Scratch
}

// Clear сбрасывает диалог в исходное состояние
func (s *Session) Clear() {
	s.us.state = models.ConversationState{Phase: models.PhaseUnset}
}

func (s *Session) Release() {
	s.us.lock.Unlock()
}
