package model

type StreamEventKind int8

const (
	StreamEventTextDelta = StreamEventKind(iota)
	StreamEventToolResult
	StreamEventDone
	StreamEventError
)

func (k StreamEventKind) String() string {
	switch k {
	case StreamEventTextDelta:
		return "text_delta"
	case StreamEventToolResult:
		return "tool_result"
	case StreamEventDone:
		return "done"
	case StreamEventError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamEvent is one decoded unit of a chat stream. Which field is set
// depends on Kind: Content for text deltas, Payload for tool results and
// Message for errors.
type StreamEvent struct {
	Kind    StreamEventKind
	Content string
	Payload string
	Message string
}

func NewTextDelta(content string) StreamEvent {
	return StreamEvent{Kind: StreamEventTextDelta, Content: content}
}

func NewToolResult(payload string) StreamEvent {
	return StreamEvent{Kind: StreamEventToolResult, Payload: payload}
}

func NewDone() StreamEvent {
	return StreamEvent{Kind: StreamEventDone}
}

func NewStreamError(message string) StreamEvent {
	return StreamEvent{Kind: StreamEventError, Message: message}
}

func (e StreamEvent) IsTerminal() bool {
	return e.Kind == StreamEventDone || e.Kind == StreamEventError
}
