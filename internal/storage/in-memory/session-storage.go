package in_memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iamvkosarev/docs-chat-assistant/internal/model"
)

var (
	ErrSessionDoesNotExist = errors.New("session does not exist")
)

type SessionStorage struct {
	mu       sync.Mutex
	isOpen   *bool
	messages []model.Message
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{}
}

func (s *SessionStorage) LoadSession(_ context.Context) (model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isOpen == nil && s.messages == nil {
		return model.SessionState{}, ErrSessionDoesNotExist
	}
	state := model.SessionState{
		Messages: append([]model.Message(nil), s.messages...),
	}
	if s.isOpen != nil {
		state.IsOpen = *s.isOpen
	}
	return state, nil
}

func (s *SessionStorage) SaveOpen(_ context.Context, isOpen bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = &isOpen
	return nil
}

func (s *SessionStorage) SaveMessages(_ context.Context, messages []model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(make([]model.Message, 0, len(messages)), messages...)
	return nil
}

func (s *SessionStorage) ClearSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = nil
	s.messages = nil
	return nil
}
