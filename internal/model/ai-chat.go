package model

import "time"

type MessageSource string

const (
	MessageSourceUser      = MessageSource("user")
	MessageSourceAssistant = MessageSource("assistant")
)

type Message struct {
	ID        int64
	Source    MessageSource
	Text      string
	CreatedAt time.Time
}

// SessionState is the part of a conversation that outlives the process.
type SessionState struct {
	IsOpen   bool
	Messages []Message
}

// TurnState tracks one submission through to completion.
type TurnState int8

const (
	TurnStateIdle = TurnState(iota)
	TurnStateAwaitingFirstByte
	TurnStateStreaming
	TurnStateDone
	TurnStateError
)

func (s TurnState) String() string {
	switch s {
	case TurnStateAwaitingFirstByte:
		return "awaiting-first-byte"
	case TurnStateStreaming:
		return "streaming"
	case TurnStateDone:
		return "done"
	case TurnStateError:
		return "error"
	default:
		return "idle"
	}
}
