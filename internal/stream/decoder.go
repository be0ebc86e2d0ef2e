// Package stream decodes the line framed chat stream emitted by the
// assistant backend into discrete events.
//
// Each significant line looks like
//
//	data: {"content":"..."}
//
// and the stream ends with "data: [DONE]" or when the body is exhausted.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/iamvkosarev/docs-chat-assistant/internal/model"
	"github.com/iamvkosarev/docs-chat-assistant/internal/observability"
	"github.com/tidwall/gjson"
)

const (
	dataPrefix      = "data: "
	doneSentinel    = "[DONE]"
	toolResultOpen  = "[TOOL_RESULT]"
	toolResultClose = "[/TOOL_RESULT]"
	replacementRune = "\uFFFD"
	defaultReadSize = 4096
)

type Option func(*Decoder)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Decoder turns a byte stream into StreamEvents. It is not safe for
// concurrent use and cannot be restarted.
type Decoder struct {
	r      *bufio.Reader
	logger *slog.Logger
	done   bool
}

func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		r:      bufio.NewReaderSize(r, defaultReadSize),
		logger: observability.Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next event. After a Done or Error event it returns
// io.EOF. Exhausting the source without the [DONE] sentinel yields Done.
// Any other read error is returned as is and ends the stream.
func (d *Decoder) Next() (model.StreamEvent, error) {
	for !d.done {
		line, err := d.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			d.done = true
			return model.StreamEvent{}, fmt.Errorf("failed to read stream: %w", err)
		}
		exhausted := err != nil

		if line != "" {
			if event, ok := d.decodeLine(strings.TrimSuffix(line, "\n")); ok {
				d.done = event.IsTerminal()
				return event, nil
			}
		}
		if exhausted {
			d.done = true
			return model.NewDone(), nil
		}
	}
	return model.StreamEvent{}, io.EOF
}

func (d *Decoder) decodeLine(line string) (model.StreamEvent, bool) {
	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return model.StreamEvent{}, false
	}
	payload = strings.ToValidUTF8(payload, replacementRune)
	if payload == doneSentinel {
		return model.NewDone(), true
	}
	if !gjson.Valid(payload) {
		d.logger.Debug("dropping malformed stream line", "payload", payload)
		return model.StreamEvent{}, false
	}

	parsed := gjson.Parse(payload)
	if errField := parsed.Get("error"); truthy(errField) {
		return model.NewStreamError(errField.String()), true
	}

	content := parsed.Get("content")
	if content.Type != gjson.String || content.Str == "" {
		return model.StreamEvent{}, false
	}
	if toolResult, ok := unwrapToolResult(content.Str); ok {
		return model.NewToolResult(toolResult), true
	}
	return model.NewTextDelta(content.Str), true
}

func unwrapToolResult(content string) (string, bool) {
	if !strings.HasPrefix(content, toolResultOpen) || !strings.HasSuffix(content, toolResultClose) {
		return "", false
	}
	// markers may overlap on very short input
	if len(content) < len(toolResultOpen)+len(toolResultClose) {
		return "", true
	}
	return content[len(toolResultOpen) : len(content)-len(toolResultClose)], true
}

func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

// Result carries either an event or the transport error that ended the stream.
type Result struct {
	Event model.StreamEvent
	Err   error
}

// Events drains d on its own goroutine and delivers results in arrival
// order. The channel is closed after a terminal event, a read error or
// when ctx is done.
func Events(ctx context.Context, d *Decoder) <-chan Result {
	results := make(chan Result)
	go func() {
		defer close(results)
		for {
			event, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case results <- Result{Event: event, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil || event.IsTerminal() {
				return
			}
		}
	}()
	return results
}
