package usecase

import (
	"context"
	"errors"
	"github.com/iamvkosarev/docs-chat-assistant/config"
	"github.com/iamvkosarev/docs-chat-assistant/internal/backend"
	"github.com/iamvkosarev/docs-chat-assistant/internal/model"
	"github.com/iamvkosarev/docs-chat-assistant/internal/observability"
	"github.com/iamvkosarev/docs-chat-assistant/internal/stream"
	"github.com/iamvkosarev/docs-chat-assistant/pkg/local"
	"github.com/sourcegraph/conc"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

const defaultHistoryWindow = 10

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrTurnInFlight = errors.New("previous message is still being answered")
)

type ChatBackend interface {
	OpenStream(ctx context.Context, req backend.ChatRequest) (io.ReadCloser, error)
}

type ChatUsecaseDeps struct {
	Backend ChatBackend
	Now     func() time.Time
}

// ChatUsecase owns one conversation: the ordered message log, the window
// flag and the turn currently being answered. Only one turn runs at a time.
type ChatUsecase struct {
	ChatUsecaseDeps
	cfg      config.Chat
	language local.Language
	logger   *slog.Logger

	mu          sync.Mutex
	messages    []model.Message
	nextID      int64
	isOpen      bool
	contextPath string
	inFlight    bool
	typing      bool
	turnState   model.TurnState

	changeObservers []func(model.SessionState)
	toolObservers   []func(string)

	// notifyMu is held while queued notifications are delivered. It is
	// never taken with mu held.
	notifyMu sync.Mutex
	pending  []func()
}

func NewChatUsecase(deps ChatUsecaseDeps, cfg config.Chat) *ChatUsecase {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = defaultHistoryWindow
	}
	return &ChatUsecase{
		ChatUsecaseDeps: deps,
		cfg:             cfg,
		language:        local.ParseLanguage(cfg.Language),
		logger:          observability.WithFields("component", "chat"),
		nextID:          1,
	}
}

// OnChange registers fn to be called with a snapshot after every change
// of the window flag or the message log. Snapshots arrive in the order the
// changes were made; fn must not change the session itself.
func (c *ChatUsecase) OnChange(fn func(model.SessionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changeObservers = append(c.changeObservers, fn)
}

// OnToolResult registers fn for tool call results received while streaming.
func (c *ChatUsecase) OnToolResult(fn func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toolObservers = append(c.toolObservers, fn)
}

func (c *ChatUsecase) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Message(nil), c.messages...)
}

func (c *ChatUsecase) State() model.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *ChatUsecase) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

func (c *ChatUsecase) SetOpen(isOpen bool) {
	c.mu.Lock()
	if c.isOpen == isOpen {
		c.mu.Unlock()
		return
	}
	c.isOpen = isOpen
	c.queueChangeLocked()
	c.mu.Unlock()
	c.flush()
}

func (c *ChatUsecase) Toggle() bool {
	isOpen := !c.IsOpen()
	c.SetOpen(isOpen)
	return isOpen
}

func (c *ChatUsecase) ContextPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contextPath
}

func (c *ChatUsecase) SetContextPath(contextPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contextPath = contextPath
}

// InFlight reports whether a turn is running. Submit is rejected meanwhile.
func (c *ChatUsecase) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Typing reports whether the assistant has been asked but has not produced
// any text yet.
func (c *ChatUsecase) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

func (c *ChatUsecase) TurnState() model.TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turnState
}

func (c *ChatUsecase) Language() local.Language {
	return c.language
}

// Restore replaces the window flag and the message log with a saved state.
func (c *ChatUsecase) Restore(state model.SessionState) {
	c.mu.Lock()
	c.isOpen = state.IsOpen
	c.messages = append(make([]model.Message, 0, len(state.Messages)), state.Messages...)
	c.nextID = 1
	for _, msg := range c.messages {
		if msg.ID >= c.nextID {
			c.nextID = msg.ID + 1
		}
	}
	c.queueChangeLocked()
	c.mu.Unlock()
	c.flush()
}

// Notify hands the current state to the change observers without changing it.
func (c *ChatUsecase) Notify() {
	c.mu.Lock()
	c.queueChangeLocked()
	c.mu.Unlock()
	c.flush()
}

// Greet adds the first assistant message for page when the log is empty.
func (c *ChatUsecase) Greet(page model.PageInfo) bool {
	c.mu.Lock()
	if len(c.messages) > 0 {
		c.mu.Unlock()
		return false
	}
	c.appendLocked(model.MessageSourceAssistant, Greeting(page, c.language))
	c.queueChangeLocked()
	c.mu.Unlock()
	c.flush()
	return true
}

// Submit sends text as a new user message and applies the streamed answer
// to the log. It blocks until the turn ends and reports whether it ended in
// TurnStateDone or TurnStateError. Failures of the turn are turned into
// assistant messages; only rejected submissions return an error.
func (c *ChatUsecase) Submit(ctx context.Context, text string) (model.TurnState, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.TurnStateIdle, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return model.TurnStateIdle, ErrTurnInFlight
	}
	c.inFlight = true
	c.typing = true
	c.turnState = model.TurnStateAwaitingFirstByte
	c.appendLocked(model.MessageSourceUser, text)
	req := backend.NewChatRequest(c.windowLocked(), c.contextPath, c.Now())
	c.queueChangeLocked()
	c.mu.Unlock()
	c.flush()

	outcome := model.TurnStateError
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.typing = false
		c.turnState = model.TurnStateIdle
		c.mu.Unlock()
	}()

	if err := c.runTurn(ctx, req); err != nil {
		c.logger.Error("chat turn failed", "error", err)
		c.appendAndNotify(model.MessageSourceAssistant, local.TextReplyUnavailable.Text(c.language))
		return outcome, nil
	}

	c.mu.Lock()
	outcome = c.turnState
	c.mu.Unlock()
	return outcome, nil
}

// runTurn returns an error only for transport failures.
func (c *ChatUsecase) runTurn(ctx context.Context, req backend.ChatRequest) error {
	body, err := c.Backend.OpenStream(ctx, req)
	if err != nil {
		return err
	}
	defer body.Close()

	var assistantID int64
	decoder := stream.NewDecoder(body, stream.WithLogger(c.logger))
	events := make(chan model.StreamEvent)
	var streamErr error

	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			defer close(events)
			for {
				event, err := decoder.Next()
				if errors.Is(err, io.EOF) {
					return
				}
				if err != nil {
					streamErr = err
					return
				}
				select {
				case events <- event:
				case <-ctx.Done():
					streamErr = ctx.Err()
					return
				}
			}
		},
	)
	wg.Go(
		func() {
			for event := range events {
				c.applyEvent(&assistantID, event)
			}
		},
	)
	wg.Wait()

	return streamErr
}

// applyEvent applies one decoded event; assistantID holds the message the
// answer is streamed into, zero until the first text arrives.
func (c *ChatUsecase) applyEvent(assistantID *int64, event model.StreamEvent) {
	c.mu.Lock()
	switch event.Kind {
	case model.StreamEventTextDelta:
		if *assistantID == 0 {
			*assistantID = c.appendLocked(model.MessageSourceAssistant, event.Content).ID
			c.typing = false
			c.turnState = model.TurnStateStreaming
		} else {
			c.appendTextLocked(*assistantID, event.Content)
		}
		c.queueChangeLocked()

	case model.StreamEventToolResult:
		c.queueToolResultLocked(event.Payload)

	case model.StreamEventDone:
		c.turnState = model.TurnStateDone

	case model.StreamEventError:
		c.logger.Warn("chat backend reported an error", "error", event.Message)
		c.turnState = model.TurnStateError
		c.typing = false
		if *assistantID == 0 {
			c.appendLocked(model.MessageSourceAssistant, local.TextServiceError.Format(c.language, event.Message))
			c.queueChangeLocked()
		}
	}
	c.mu.Unlock()
	c.flush()
}

func (c *ChatUsecase) appendAndNotify(source model.MessageSource, text string) {
	c.mu.Lock()
	c.appendLocked(source, text)
	c.queueChangeLocked()
	c.mu.Unlock()
	c.flush()
}

func (c *ChatUsecase) appendLocked(source model.MessageSource, text string) model.Message {
	msg := model.Message{
		ID:        c.nextID,
		Source:    source,
		Text:      text,
		CreatedAt: c.Now(),
	}
	c.nextID++
	c.messages = append(c.messages, msg)
	return msg
}

func (c *ChatUsecase) appendTextLocked(id int64, text string) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			c.messages[i].Text += text
			return
		}
	}
}

// windowLocked maps the tail of the log to the backend message shape.
func (c *ChatUsecase) windowLocked() []backend.ChatMessage {
	tail := c.messages
	if len(tail) > c.cfg.HistoryWindow {
		tail = tail[len(tail)-c.cfg.HistoryWindow:]
	}
	window := make([]backend.ChatMessage, 0, len(tail))
	for _, msg := range tail {
		window = append(
			window, backend.ChatMessage{
				Role:    msg.Source.Role(),
				Content: msg.Text,
			},
		)
	}
	return window
}

func (c *ChatUsecase) snapshotLocked() model.SessionState {
	return model.SessionState{
		IsOpen:   c.isOpen,
		Messages: append([]model.Message(nil), c.messages...),
	}
}

// queueChangeLocked schedules the change observers with the current state.
// Queue order is mutation order since both happen under mu.
func (c *ChatUsecase) queueChangeLocked() {
	state := c.snapshotLocked()
	observers := slices.Clone(c.changeObservers)
	c.pending = append(
		c.pending, func() {
			for _, observer := range observers {
				observer(state)
			}
		},
	)
}

func (c *ChatUsecase) queueToolResultLocked(payload string) {
	observers := slices.Clone(c.toolObservers)
	c.pending = append(
		c.pending, func() {
			for _, observer := range observers {
				observer(payload)
			}
		},
	)
}

// flush delivers queued notifications one at a time. When it returns,
// everything queued before the call has been delivered.
func (c *ChatUsecase) flush() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()
		next()
	}
}
