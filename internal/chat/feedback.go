package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"policy-chat/internal/agent"
	"policy-chat/internal/session"
)

// Reporter delivers ratings to the backend
type Reporter interface {
	SendFeedback(ctx context.Context, req agent.FeedbackRequest) error
}

// Correlator applies ratings to agent replies and reports them.
// The local rating is authoritative: a failed report never reverts it.
type Correlator struct {
	sess     *session.Manager
	reporter Reporter
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewCorrelator creates a correlator. timeout bounds each detached report;
// zero means the reporter's own limits apply.
func NewCorrelator(sess *session.Manager, reporter Reporter, timeout time.Duration, logger *zap.Logger) *Correlator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Correlator{
		sess:     sess,
		reporter: reporter,
		timeout:  timeout,
		logger:   logger.Named("feedback"),
	}
}

// Toggle applies value to the agent message at index: unset or the other
// value becomes value, value becomes unset. It returns the report to send,
// or nil when the message has no response id.
//
// The report always carries value itself, also when the toggle cleared it.
func (c *Correlator) Toggle(index int, value session.Feedback) (*agent.FeedbackRequest, error) {
	if value != session.FeedbackUp && value != session.FeedbackDown {
		return nil, fmt.Errorf("%w: %q", session.ErrUnknownFeedback, value)
	}
	msg, ok := c.sess.Message(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d", session.ErrNoSuchMessage, index)
	}

	next := value
	if msg.Feedback == value {
		next = session.FeedbackUnset
	}
	if err := c.sess.SetFeedback(index, next); err != nil {
		return nil, err
	}

	if msg.ResponseID == "" {
		c.logger.Debug("rating kept local, reply has no response id", zap.Int("index", index))
		return nil, nil
	}
	return &agent.FeedbackRequest{
		SessionID:  c.sess.ID(),
		ResponseID: msg.ResponseID,
		Feedback:   string(value),
	}, nil
}

// Report sends one rating. Failures are logged and returned; they never
// touch the transcript.
func (c *Correlator) Report(ctx context.Context, req agent.FeedbackRequest) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.reporter.SendFeedback(ctx, req); err != nil {
		c.logger.Warn("feedback report failed",
			zap.String("session_id", req.SessionID),
			zap.String("response_id", req.ResponseID),
			zap.String("feedback", req.Feedback),
			zap.Error(err),
		)
		return err
	}
	c.logger.Debug("feedback reported",
		zap.String("response_id", req.ResponseID),
		zap.String("feedback", req.Feedback),
	)
	return nil
}

// Rate toggles the rating and fires the report in the background.
// Only problems with the local update are returned.
func (c *Correlator) Rate(ctx context.Context, index int, value session.Feedback) error {
	req, err := c.Toggle(index, value)
	if err != nil || req == nil {
		return err
	}

	detached := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.Report(detached, *req)
	}()
	return nil
}

// Wait blocks until every background report has finished
func (c *Correlator) Wait() {
	c.wg.Wait()
}
