package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/iamvkosarev/docs-chat-assistant/config"
	"github.com/iamvkosarev/docs-chat-assistant/internal/backend"
	"github.com/iamvkosarev/docs-chat-assistant/internal/model"
	"github.com/iamvkosarev/docs-chat-assistant/internal/observability"
	in_memory "github.com/iamvkosarev/docs-chat-assistant/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/docs-chat-assistant/internal/storage/key-value"
	"github.com/iamvkosarev/docs-chat-assistant/internal/usecase"
	"github.com/redis/go-redis/v9"
	"io"
	"strings"
)

const (
	CommandOpen  = "/open"
	CommandClose = "/close"
)

type Options struct {
	PagePath string
	Input    io.Reader
	Output   io.Writer
	Backend  usecase.ChatBackend
}

// Run restores or starts a chat session and answers every line read from
// opts.Input until it is exhausted or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	logger := observability.Logger()

	storage, closeStorage, err := NewSessionStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create session storage: %w", err)
	}
	defer closeStorage()

	chatBackend := opts.Backend
	if chatBackend == nil {
		chatBackend = backend.NewClient(cfg.Backend)
	}
	chat := usecase.NewChatUsecase(
		usecase.ChatUsecaseDeps{
			Backend: chatBackend,
		}, cfg.Chat,
	)
	persistence := usecase.NewPersistenceUsecase(
		usecase.PersistenceUsecaseDeps{
			Storage: storage,
			Session: chat,
		},
	)

	pagePath := opts.PagePath
	if pagePath == "" {
		pagePath = "/"
	}
	page := usecase.DescribePage(pagePath, chat.Language())
	chat.SetContextPath(page.ContextPath())

	if !persistence.Load(ctx) {
		chat.Greet(page)
	}

	printer := newPrinter(opts.Output)
	for _, msg := range chat.Messages() {
		printer.message(msg)
	}
	chat.OnChange(printer.onChange)
	chat.OnToolResult(printer.toolResult)

	lines := readLines(ctx, opts.Input)
	for {
		select {
		case <-ctx.Done():
			logger.Info("chat session interrupted")
			return persistence.Close(context.Background(), true)
		case line, ok := <-lines:
			if !ok {
				return persistence.Close(context.Background(), false)
			}
			handleLine(ctx, chat, printer, line)
		}
	}
}

func handleLine(ctx context.Context, chat *usecase.ChatUsecase, printer *printer, line string) {
	switch strings.TrimSpace(line) {
	case CommandOpen:
		chat.SetOpen(true)
		return
	case CommandClose:
		chat.SetOpen(false)
		return
	}
	outcome, err := chat.Submit(ctx, line)
	if err != nil {
		if !errors.Is(err, usecase.ErrEmptyMessage) {
			printer.notice(err.Error())
		}
		return
	}
	printer.endTurn(outcome)
}

func readLines(ctx context.Context, input io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			observability.Logger().Error("failed to read input", "error", err)
		}
	}()
	return lines
}

// NewSessionStorage builds the storage selected by cfg.Storage.Backend. The
// returned func releases its connections.
func NewSessionStorage(ctx context.Context, cfg *config.Config) (usecase.SessionStorage, func(), error) {
	switch cfg.Storage.Backend {
	case "", config.StorageBackendMemory:
		return in_memory.NewSessionStorage(), func() {}, nil
	case config.StorageBackendRedis:
		clientID := cfg.Storage.ClientID
		if clientID == "" {
			clientID = uuid.New().String()
			observability.Logger().Warn("no client id configured, session will not be found again", "client_id", clientID)
		}
		rdb := redis.NewClient(
			&redis.Options{
				Addr:     cfg.Redis.Endpoint,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
		)
		if err := rdb.Ping(ctx).Err(); err != nil {
			observability.Logger().Warn("redis is not reachable, saved session may be unavailable", "error", err)
		}
		return key_value.NewSessionStorage(rdb, clientID), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

type printer struct {
	out     io.Writer
	printed map[int64]int
}

func newPrinter(out io.Writer) *printer {
	if out == nil {
		out = io.Discard
	}
	return &printer{
		out:     out,
		printed: make(map[int64]int),
	}
}

func (p *printer) message(msg model.Message) {
	if msg.Source == model.MessageSourceUser {
		p.printed[msg.ID] = len(msg.Text)
		return
	}
	_, _ = fmt.Fprintf(p.out, "assistant> %s\n", msg.Text)
	p.printed[msg.ID] = len(msg.Text)
}

// onChange prints only the text that appeared since the last change.
func (p *printer) onChange(state model.SessionState) {
	for _, msg := range state.Messages {
		if msg.Source == model.MessageSourceUser {
			p.printed[msg.ID] = len(msg.Text)
			continue
		}
		seen, ok := p.printed[msg.ID]
		if !ok {
			_, _ = fmt.Fprintf(p.out, "assistant> %s", msg.Text)
		} else if seen < len(msg.Text) {
			_, _ = io.WriteString(p.out, msg.Text[seen:])
		}
		p.printed[msg.ID] = len(msg.Text)
	}
}

func (p *printer) toolResult(payload string) {
	_, _ = fmt.Fprintf(p.out, "\n[tool] %s\n", payload)
}

func (p *printer) notice(text string) {
	_, _ = fmt.Fprintf(p.out, "! %s\n", text)
}

func (p *printer) endTurn(outcome model.TurnState) {
	_, _ = io.WriteString(p.out, "\n")
	if outcome == model.TurnStateError {
		p.notice("the assistant could not finish this answer")
	}
}
