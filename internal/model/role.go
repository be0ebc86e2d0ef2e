package model

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// ParseSender maps a persisted sender tag back to a message source.
// Anything that is not "user" was produced by the assistant.
func ParseSender(s string) MessageSource {
	switch s {
	case SenderUser:
		return MessageSourceUser
	default:
		return MessageSourceAssistant
	}
}

func (s MessageSource) Sender() string {
	if s == MessageSourceUser {
		return SenderUser
	}
	return SenderAI
}

// Role is the name the chat backend expects for this source.
func (s MessageSource) Role() string {
	if s == MessageSourceUser {
		return string(MessageSourceUser)
	}
	return string(MessageSourceAssistant)
}
