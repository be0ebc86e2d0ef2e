package usecase

import (
	"context"
	"fmt"
	"github.com/iamvkosarev/docs-chat-assistant/internal/model"
	"github.com/iamvkosarev/docs-chat-assistant/internal/observability"
	"log/slog"
	"sync/atomic"
	"time"
)

const saveTimeout = 5 * time.Second

type SessionStorage interface {
	LoadSession(ctx context.Context) (model.SessionState, error)
	SaveOpen(ctx context.Context, isOpen bool) error
	SaveMessages(ctx context.Context, messages []model.Message) error
	ClearSession(ctx context.Context) error
}

type PersistenceUsecaseDeps struct {
	Storage SessionStorage
	Session *ChatUsecase
}

// PersistenceUsecase mirrors a ChatUsecase into SessionStorage. Nothing is
// written until Load has finished, so a change made while loading can never
// overwrite the saved state with fresh defaults.
type PersistenceUsecase struct {
	PersistenceUsecaseDeps
	logger *slog.Logger
	loaded atomic.Bool
}

func NewPersistenceUsecase(deps PersistenceUsecaseDeps) *PersistenceUsecase {
	p := &PersistenceUsecase{
		PersistenceUsecaseDeps: deps,
		logger:                 observability.WithFields("component", "persistence"),
	}
	deps.Session.OnChange(p.save)
	return p
}

// Load restores the saved window flag and message log into the session and
// reports whether a non-empty log was restored. Missing or unreadable state
// leaves the session untouched. Once loaded, the merged state is written back
// so the mirror also holds changes made while loading.
func (p *PersistenceUsecase) Load(ctx context.Context) bool {
	restored := p.restore(ctx)
	p.loaded.Store(true)
	p.Session.Notify()
	return restored
}

func (p *PersistenceUsecase) restore(ctx context.Context) bool {
	state, err := p.Storage.LoadSession(ctx)
	if err != nil {
		p.logger.Warn("no saved chat session restored", "error", err)
		return false
	}

	current := p.Session.State()
	if state.IsOpen {
		current.IsOpen = true
	}
	restored := len(state.Messages) > 0
	if restored {
		current.Messages = state.Messages
	}
	p.Session.Restore(current)
	return restored
}

func (p *PersistenceUsecase) Loaded() bool {
	return p.loaded.Load()
}

// Close handles the end of the session. On a normal close of a closed
// window the saved state is removed instead of being kept as closed+empty.
func (p *PersistenceUsecase) Close(ctx context.Context, abnormal bool) error {
	if abnormal || p.Session.IsOpen() {
		return nil
	}
	if err := p.Storage.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear chat session: %w", err)
	}
	return nil
}

func (p *PersistenceUsecase) save(state model.SessionState) {
	if !p.loaded.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := p.Storage.SaveOpen(ctx, state.IsOpen); err != nil {
		p.logger.Error("failed to save chat window state", "error", err)
	}
	if len(state.Messages) == 0 {
		return
	}
	if err := p.Storage.SaveMessages(ctx, state.Messages); err != nil {
		p.logger.Error("failed to save chat messages", "error", err)
	}
}
