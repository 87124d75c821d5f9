// Package chat drives one conversation: it turns user input into agent
// exchanges and correlates ratings with the replies they belong to.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"policy-chat/internal/agent"
	"policy-chat/internal/session"
)

const (
	// NoResponseText is shown when the agent answered without content.
	NoResponseText = "(no response)"
	// ConnectionErrorText replaces the reply when the agent call failed.
	ConnectionErrorText = "⚠️ Error connecting to agent"
)

var errNotSettled = errors.New("exchange did not complete")

// Asker is the part of the agent backend the controller needs
type Asker interface {
	Ask(ctx context.Context, req agent.AskRequest) (*agent.AskResponse, error)
}

// Turn is an accepted user submission waiting for the agent
type Turn struct {
	Index     int // transcript position of the user message
	Text      string
	SessionID string
	StartedAt time.Time
}

// Outcome is the settled result of one exchange
type Outcome struct {
	Turn     Turn
	Response *agent.AskResponse
	Err      error
	Duration time.Duration
}

// Controller runs the request/response cycle for user turns.
// At most one exchange is in flight; the session's busy flag is the gate.
type Controller struct {
	sess   *session.Manager
	asker  Asker
	logger *zap.Logger
}

// NewController creates a controller bound to one session
func NewController(sess *session.Manager, asker Asker, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		sess:   sess,
		asker:  asker,
		logger: logger.Named("exchange"),
	}
}

// Begin accepts a submission. It returns false, changing nothing, when the
// text is blank or an exchange is already running. Otherwise the user message
// is appended verbatim and the session is marked busy.
func (c *Controller) Begin(text string) (Turn, bool) {
	if strings.TrimSpace(text) == "" || c.sess.Busy() {
		return Turn{}, false
	}

	now := time.Now()
	idx := c.sess.Append(session.Message{
		Sender:    session.SenderUser,
		Text:      text,
		Timestamp: now,
	})
	c.sess.SetBusy(true)

	return Turn{
		Index:     idx,
		Text:      text,
		SessionID: c.sess.ID(),
		StartedAt: now,
	}, true
}

// Exchange performs the agent call for turn. It never panics; any failure
// is reported in the Outcome.
func (c *Controller) Exchange(ctx context.Context, turn Turn) (out Outcome) {
	out = Outcome{Turn: turn}
	defer func() {
		if r := recover(); r != nil {
			out.Response = nil
			out.Err = fmt.Errorf("agent call panicked: %v", r)
		}
		out.Duration = time.Since(turn.StartedAt)
	}()

	out.Response, out.Err = c.asker.Ask(ctx, agent.AskRequest{
		UserInput: turn.Text,
		SessionID: turn.SessionID,
	})
	if out.Err == nil && out.Response == nil {
		out.Err = fmt.Errorf("%w: empty reply", agent.ErrDecode)
	}
	return out
}

// Settle appends exactly one agent message for the outcome and clears busy.
// It returns the index of the appended message.
func (c *Controller) Settle(out Outcome) int {
	defer c.sess.SetBusy(false)

	if out.Err != nil || out.Response == nil {
		err := out.Err
		if err == nil {
			err = errNotSettled
		}
		c.logger.Warn("agent call failed",
			zap.String("session_id", out.Turn.SessionID),
			zap.Int("turn", out.Turn.Index),
			zap.Duration("elapsed", out.Duration),
			zap.Error(err),
		)
		return c.sess.Append(session.Message{
			Sender: session.SenderAgent,
			Text:   ConnectionErrorText,
			Failed: true,
		})
	}

	resp := out.Response
	text := resp.Content
	if text == "" {
		text = NoResponseText
	}
	refs := resp.References
	if refs == nil {
		refs = []string{}
	}

	c.logger.Debug("agent replied",
		zap.String("session_id", out.Turn.SessionID),
		zap.String("response_id", resp.ResponseID),
		zap.Int("references", len(refs)),
		zap.Duration("elapsed", out.Duration),
	)
	return c.sess.Append(session.Message{
		Sender:        session.SenderAgent,
		Text:          text,
		References:    refs,
		ResponseID:    resp.ResponseID,
		AwaitingInput: resp.RequireUserInput,
	})
}

// Submit runs a whole turn synchronously. It reports whether the text was
// accepted; when it was, the transcript has grown by exactly two messages
// and busy is clear by the time Submit returns.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	turn, ok := c.Begin(text)
	if !ok {
		return false
	}

	out := Outcome{Turn: turn, Err: errNotSettled}
	defer func() {
		c.Settle(out)
	}()
	out = c.Exchange(ctx, turn)
	return true
}
