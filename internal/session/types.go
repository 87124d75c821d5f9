package session

import (
	"errors"
	"strings"
	"time"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Feedback is the rating a user gave an agent reply
type Feedback string

const (
	FeedbackUnset Feedback = ""
	FeedbackUp    Feedback = "up"
	FeedbackDown  Feedback = "down"
)

var (
	ErrNoSuchMessage   = errors.New("no message at that position")
	ErrNotRateable     = errors.New("only agent replies can be rated")
	ErrUnknownFeedback = errors.New("feedback must be up or down")
)

// Message represents a single entry in the transcript
type Message struct {
	Sender     Sender    `json:"sender"`
	Text       string    `json:"text"`
	References []string  `json:"references,omitempty"`
	Feedback   Feedback  `json:"feedback,omitempty"`
	ResponseID string    `json:"response_id,omitempty"` // empty when the backend did not answer
	Timestamp  time.Time `json:"timestamp"`

	// AwaitingInput is set when the agent asked a follow-up question.
	AwaitingInput bool `json:"awaiting_input,omitempty"`
	// Failed marks the placeholder appended when the agent call failed.
	Failed bool `json:"failed,omitempty"`
}

// IsAgent reports whether the message came from the agent
func (m Message) IsAgent() bool {
	return m.Sender == SenderAgent
}

// Rateable reports whether a rating on this message can be sent to the backend
func (m Message) Rateable() bool {
	return m.IsAgent() && m.ResponseID != ""
}

// ParseFeedback converts user-facing rating words into a Feedback value.
func ParseFeedback(s string) (Feedback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "+", "+1", "yes", "good", "👍":
		return FeedbackUp, nil
	case "down", "-", "-1", "no", "bad", "👎":
		return FeedbackDown, nil
	}
	return FeedbackUnset, ErrUnknownFeedback
}

// Emoji returns the badge shown next to a rated reply
func (f Feedback) Emoji() string {
	switch f {
	case FeedbackUp:
		return "👍"
	case FeedbackDown:
		return "👎"
	}
	return ""
}

// ChangeKind says what a Change notification was caused by
type ChangeKind int

const (
	ChangeAppend ChangeKind = iota
	ChangeBusy
	ChangeFeedback
)

// Change is delivered to subscribers after the session state moves
type Change struct {
	Kind  ChangeKind
	Index int // affected message, -1 for busy transitions
	Len   int
	Busy  bool
}

// ScrollToNewest reports whether views should jump to the latest entry.
// Only transcript growth and busy transitions qualify.
func (c Change) ScrollToNewest() bool {
	return c.Kind == ChangeAppend || c.Kind == ChangeBusy
}
