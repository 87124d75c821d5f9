package ui

import (
	"context"
	"sync"

	"policy-chat/internal/agent"
	"policy-chat/internal/chat"
	"policy-chat/internal/session"
)

type stubAgent struct {
	mu        sync.Mutex
	asks      []agent.AskRequest
	feedback  []agent.FeedbackRequest
	responses []*agent.AskResponse
	askErr    error
}

func (s *stubAgent) Ask(ctx context.Context, req agent.AskRequest) (*agent.AskResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asks = append(s.asks, req)
	if s.askErr != nil {
		return nil, s.askErr
	}
	if len(s.responses) == 0 {
		return &agent.AskResponse{}, nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *stubAgent) SendFeedback(ctx context.Context, req agent.FeedbackRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, req)
	return nil
}

func (s *stubAgent) Feedback() []agent.FeedbackRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]agent.FeedbackRequest{}, s.feedback...)
}

func (s *stubAgent) Asks() []agent.AskRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]agent.AskRequest{}, s.asks...)
}

type harness struct {
	sess  *session.Manager
	ctrl  *chat.Controller
	corr  *chat.Correlator
	agent *stubAgent
}

func newHarness(responses ...*agent.AskResponse) *harness {
	stub := &stubAgent{responses: responses}
	sess := session.NewManager()
	return &harness{
		sess:  sess,
		ctrl:  chat.NewController(sess, stub, nil),
		corr:  chat.NewCorrelator(sess, stub, 0, nil),
		agent: stub,
	}
}

func leaveAnswer() *agent.AskResponse {
	return &agent.AskResponse{
		Content:    "You get <b>20 days</b> of paid leave.",
		ResponseID: "r-leave",
		References: []string{"Employee Handbook §4.2"},
	}
}
