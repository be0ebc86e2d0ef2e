package key_value

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/iamvkosarev/docs-chat-assistant/internal/model"
	"github.com/iamvkosarev/docs-chat-assistant/internal/observability"
	"github.com/redis/go-redis/v9"
	"time"
)

const (
	keyWindowOpen = "chatWindowOpen"
	keyMessages   = "chatMessages"
)

var (
	ErrSessionDoesNotExist = errors.New("session does not exist")
)

type messageInternal struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionStorage struct {
	rdb      *redis.Client
	clientID string
}

// NewSessionStorage keeps the state of one client under keys prefixed
// with clientID.
func NewSessionStorage(rdb *redis.Client, clientID string) *SessionStorage {
	return &SessionStorage{
		rdb:      rdb,
		clientID: clientID,
	}
}

// LoadSession reads both keys. A key holding data that cannot be decoded is
// skipped and the other one is still used; the decode errors are returned
// only when nothing usable was found.
func (s *SessionStorage) LoadSession(ctx context.Context) (model.SessionState, error) {
	var (
		state     model.SessionState
		found     bool
		decodeErr error
	)

	openRaw, openFound, err := s.get(ctx, keyWindowOpen)
	if err != nil {
		return model.SessionState{}, err
	}
	if openFound {
		if err = json.Unmarshal([]byte(openRaw), &state.IsOpen); err != nil {
			decodeErr = errors.Join(decodeErr, s.skipCorrupt(keyWindowOpen, err))
		} else {
			found = true
		}
	}

	messagesRaw, messagesFound, err := s.get(ctx, keyMessages)
	if err != nil {
		return model.SessionState{}, err
	}
	if messagesFound {
		messages, err := decodeMessages(messagesRaw)
		if err != nil {
			decodeErr = errors.Join(decodeErr, s.skipCorrupt(keyMessages, err))
		} else {
			state.Messages = messages
			found = true
		}
	}

	if !found {
		if decodeErr != nil {
			return model.SessionState{}, decodeErr
		}
		return model.SessionState{}, ErrSessionDoesNotExist
	}
	return state, nil
}

func (s *SessionStorage) skipCorrupt(name string, err error) error {
	err = fmt.Errorf("failed to unmarshal %s: %w", s.key(name), err)
	observability.Logger().Warn("skipping unreadable session key", "key", s.key(name), "error", err)
	return err
}

func decodeMessages(raw string) ([]model.Message, error) {
	var messagesInt []messageInternal
	if err := json.Unmarshal([]byte(raw), &messagesInt); err != nil {
		return nil, err
	}
	messages := make([]model.Message, 0, len(messagesInt))
	for _, msg := range messagesInt {
		messages = append(
			messages, model.Message{
				ID:        msg.ID,
				Source:    model.ParseSender(msg.Sender),
				Text:      msg.Text,
				CreatedAt: msg.Timestamp,
			},
		)
	}
	return messages, nil
}

func (s *SessionStorage) SaveOpen(ctx context.Context, isOpen bool) error {
	return s.set(ctx, keyWindowOpen, isOpen)
}

func (s *SessionStorage) SaveMessages(ctx context.Context, messages []model.Message) error {
	messagesInt := make([]messageInternal, 0, len(messages))
	for _, msg := range messages {
		messagesInt = append(
			messagesInt, messageInternal{
				ID:        msg.ID,
				Text:      msg.Text,
				Sender:    msg.Source.Sender(),
				Timestamp: msg.CreatedAt,
			},
		)
	}
	return s.set(ctx, keyMessages, messagesInt)
}

func (s *SessionStorage) ClearSession(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key(keyWindowOpen), s.key(keyMessages)).Err(); err != nil {
		return fmt.Errorf("failed to delete session of %q: %w", s.clientID, err)
	}
	return nil
}

func (s *SessionStorage) get(ctx context.Context, name string) (string, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", s.key(name), err)
	}
	return raw, true, nil
}

func (s *SessionStorage) set(ctx context.Context, name string, value any) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err = s.rdb.Set(ctx, s.key(name), valueJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.key(name), err)
	}
	return nil
}

func (s *SessionStorage) key(name string) string {
	if s.clientID == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", s.clientID, name)
}
