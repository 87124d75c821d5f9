package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-chat/internal/session"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    CommandKind
		fb      session.Feedback
		reply   int
		wantErr bool
	}{
		{name: "exit", line: "/exit", kind: CmdExit},
		{name: "quit alias", line: "  /QUIT ", kind: CmdExit},
		{name: "clear", line: "/clear", kind: CmdClear},
		{name: "history", line: "/history", kind: CmdHistory},
		{name: "session", line: "/session", kind: CmdSession},
		{name: "help", line: "/help", kind: CmdHelp},
		{name: "up latest", line: "/up", kind: CmdRate, fb: session.FeedbackUp},
		{name: "down numbered", line: "/down 2", kind: CmdRate, fb: session.FeedbackDown, reply: 2},
		{name: "hash number", line: "/up #3", kind: CmdRate, fb: session.FeedbackUp, reply: 3},
		{name: "rate form", line: "/Rate down 1", kind: CmdRate, fb: session.FeedbackDown, reply: 1},
		{name: "rate emoji", line: "/rate 👍", kind: CmdRate, fb: session.FeedbackUp},
		{name: "rate without value", line: "/rate", kind: CmdRate, wantErr: true},
		{name: "rate bad value", line: "/rate meh", kind: CmdRate, wantErr: true},
		{name: "zero reply", line: "/up 0", kind: CmdRate, fb: session.FeedbackUp, wantErr: true},
		{name: "bad reply", line: "/down x", kind: CmdRate, fb: session.FeedbackDown, wantErr: true},
		{name: "unknown", line: "/frobnicate", kind: CmdUnknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := ParseCommand(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.kind, cmd.Kind)
			if tt.wantErr {
				assert.Error(t, cmd.Err)
				return
			}
			require.NoError(t, cmd.Err)
			assert.Equal(t, tt.fb, cmd.Feedback)
			assert.Equal(t, tt.reply, cmd.Reply)
		})
	}
}

func TestParseCommandLeavesQuestionsAlone(t *testing.T) {
	for _, line := range []string{"", "   ", "What is the leave policy?", "a/b"} {
		_, ok := ParseCommand(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestReplyIndexAndNumber(t *testing.T) {
	sess := session.NewManager()

	_, err := ReplyIndex(sess, 0)
	assert.Error(t, err)

	sess.Append(session.Message{Sender: session.SenderUser, Text: "q1"})
	sess.Append(session.Message{Sender: session.SenderAgent, Text: "a1", ResponseID: "r1"})
	sess.Append(session.Message{Sender: session.SenderUser, Text: "q2"})
	sess.Append(session.Message{Sender: session.SenderAgent, Text: "a2", ResponseID: "r2"})

	idx, err := ReplyIndex(sess, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	idx, err = ReplyIndex(sess, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = ReplyIndex(sess, 3)
	assert.Error(t, err)

	msgs := sess.Messages()
	assert.Equal(t, 1, ReplyNumber(msgs, 1))
	assert.Equal(t, 2, ReplyNumber(msgs, 3))
	assert.Equal(t, 0, ReplyNumber(msgs, 2), "user messages have no reply number")
	assert.Equal(t, 0, ReplyNumber(msgs, 9))
}

func TestRatingStatus(t *testing.T) {
	assert.Equal(t, "Rated reply #2 👍", ratingStatus(2, session.FeedbackUp))
	assert.Equal(t, "Rating cleared on reply #1", ratingStatus(1, session.FeedbackUnset))
}
