package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskSendsRequestAndParsesReply(t *testing.T) {
	var got AskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/hrpolicy/agent", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "policy-chat/test", r.Header.Get("User-Agent"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"<b>20 days</b>","response_id":"r1","references":["doc#3"],"require_user_input":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, WithUserAgent("policy-chat/test"))
	resp, err := c.Ask(context.Background(), AskRequest{UserInput: "What is the leave policy?", SessionID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, AskRequest{UserInput: "What is the leave policy?", SessionID: "s1"}, got)
	assert.Equal(t, "<b>20 days</b>", resp.Content)
	assert.Equal(t, "r1", resp.ResponseID)
	assert.Equal(t, []string{"doc#3"}, resp.References)
	assert.True(t, resp.RequireUserInput)
}

func TestAskMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, time.Second).Ask(context.Background(), AskRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Content)
	assert.Empty(t, resp.ResponseID)
	assert.Nil(t, resp.References)
}

func TestAskNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Ask(context.Background(), AskRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestAskErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Ask(context.Background(), AskRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

func TestAskTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).Ask(context.Background(), AskRequest{})
	require.Error(t, err)
}

func TestAskUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Ask(context.Background(), AskRequest{})
	require.Error(t, err)
}

func TestSendFeedback(t *testing.T) {
	var got FeedbackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feedback", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":"Feedback submitted successfully."}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).SendFeedback(context.Background(), FeedbackRequest{
		SessionID:  "s1",
		ResponseID: "r1",
		Feedback:   "up",
	})
	require.NoError(t, err)
	assert.Equal(t, FeedbackRequest{SessionID: "s1", ResponseID: "r1", Feedback: "up"}, got)
}

func TestSendFeedbackErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).SendFeedback(context.Background(), FeedbackRequest{})
	assert.ErrorIs(t, err, ErrStatus)
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte(`"running"`))
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL, time.Second).HealthCheck(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.ErrorIs(t, NewClient(down.URL, time.Second).HealthCheck(context.Background()), ErrStatus)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://example.test///", time.Second)
	assert.Equal(t, "http://example.test", c.BaseURL())
}
