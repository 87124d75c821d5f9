package ui

import (
	"fmt"
	"strconv"
	"strings"

	"policy-chat/internal/session"
)

// CommandKind identifies a slash command
type CommandKind int

const (
	CmdExit CommandKind = iota
	CmdClear
	CmdHistory
	CmdSession
	CmdHelp
	CmdRate
	CmdUnknown
)

// Command is a parsed slash command
type Command struct {
	Kind     CommandKind
	Feedback session.Feedback
	Reply    int // 1-based agent reply number, 0 means the latest
	Raw      string
	Err      error
}

const helpText = `Commands:
  /up [n]     rate agent reply n with 👍 (default: latest); again to clear
  /down [n]   rate agent reply n with 👎 (default: latest); again to clear
  /history    show the whole conversation
  /session    show the session id
  /clear      clear the screen (the conversation is kept)
  /help       show this help
  /exit       quit`

// ParseCommand recognises slash commands. Anything not starting with "/"
// is a question for the agent and ok is false.
func ParseCommand(line string) (cmd Command, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{}, false
	}

	fields := strings.Fields(trimmed)
	cmd = Command{Raw: trimmed}
	switch strings.ToLower(fields[0]) {
	case "/exit", "/quit":
		cmd.Kind = CmdExit
	case "/clear":
		cmd.Kind = CmdClear
	case "/history":
		cmd.Kind = CmdHistory
	case "/session":
		cmd.Kind = CmdSession
	case "/help", "/?":
		cmd.Kind = CmdHelp
	case "/up", "/down", "/rate":
		cmd.Kind = CmdRate
		args := fields[1:]
		if strings.EqualFold(fields[0], "/rate") {
			if len(args) == 0 {
				cmd.Err = fmt.Errorf("usage: /rate up|down [n]")
				return cmd, true
			}
			fb, err := session.ParseFeedback(args[0])
			if err != nil {
				cmd.Err = err
				return cmd, true
			}
			cmd.Feedback = fb
			args = args[1:]
		} else if strings.EqualFold(fields[0], "/up") {
			cmd.Feedback = session.FeedbackUp
		} else {
			cmd.Feedback = session.FeedbackDown
		}
		if len(args) > 0 {
			n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
			if err != nil || n < 1 {
				cmd.Err = fmt.Errorf("reply number must be a positive integer, got %q", args[0])
				return cmd, true
			}
			cmd.Reply = n
		}
	default:
		cmd.Kind = CmdUnknown
		cmd.Err = fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
	return cmd, true
}

// ReplyIndex maps a 1-based agent reply number to its transcript index.
// Zero selects the latest reply.
func ReplyIndex(sess *session.Manager, reply int) (int, error) {
	agents := sess.AgentIndexes()
	if len(agents) == 0 {
		return -1, fmt.Errorf("no agent replies to rate yet")
	}
	if reply == 0 {
		return agents[len(agents)-1], nil
	}
	if reply > len(agents) {
		return -1, fmt.Errorf("there is no reply #%d (latest is #%d)", reply, len(agents))
	}
	return agents[reply-1], nil
}

// ReplyNumber is the inverse of ReplyIndex: the 1-based reply number of
// the agent message at transcript index i, or 0.
func ReplyNumber(msgs []session.Message, i int) int {
	n := 0
	for j := 0; j <= i && j < len(msgs); j++ {
		if msgs[j].IsAgent() {
			n++
		}
	}
	if i < 0 || i >= len(msgs) || !msgs[i].IsAgent() {
		return 0
	}
	return n
}

// ratingStatus describes the rating state after a toggle
func ratingStatus(reply int, fb session.Feedback) string {
	if fb == session.FeedbackUnset {
		return fmt.Sprintf("Rating cleared on reply #%d", reply)
	}
	return fmt.Sprintf("Rated reply #%d %s", reply, fb.Emoji())
}
