package ui

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"policy-chat/internal/chat"
	"policy-chat/internal/session"
	"policy-chat/internal/terminal"
)

// Plain runs the conversation as a line-oriented REPL. It is used when
// stdout is not a terminal or full-screen mode is disabled.
type Plain struct {
	sess    *session.Manager
	ctrl    *chat.Controller
	corr    *chat.Correlator
	display *Display
	reader  *terminal.Reader
	spinner *terminal.Spinner
	host    string
	logger  *zap.Logger
}

// PlainDeps groups what the REPL needs
type PlainDeps struct {
	Session    *session.Manager
	Controller *chat.Controller
	Correlator *chat.Correlator
	Display    *Display
	Host       string
	Logger     *zap.Logger
}

// NewPlain wires a REPL reading from in. Progress output goes to status.
func NewPlain(deps PlainDeps, in io.Reader, status io.Writer) *Plain {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Plain{
		sess:    deps.Session,
		ctrl:    deps.Controller,
		corr:    deps.Correlator,
		display: deps.Display,
		reader:  terminal.NewReader(in),
		spinner: terminal.NewSpinner(status),
		host:    deps.Host,
		logger:  logger.Named("plain"),
	}
	p.sess.Subscribe(p.onChange)
	return p
}

// onChange redraws after each session change: new messages are printed and
// the spinner follows the busy flag.
func (p *Plain) onChange(c session.Change) {
	switch c.Kind {
	case session.ChangeAppend:
		p.spinner.Stop()
		msgs := p.sess.Messages()
		p.display.PrintMessage(msgs[c.Index], ReplyNumber(msgs, c.Index))
	case session.ChangeBusy:
		if c.Busy {
			p.spinner.Start("Waiting for the agent...")
		} else {
			p.spinner.Stop()
		}
	case session.ChangeFeedback:
		msgs := p.sess.Messages()
		p.display.PrintSuccess(ratingStatus(ReplyNumber(msgs, c.Index), msgs[c.Index].Feedback))
	}
}

// Run reads input until EOF, /exit or ctx is done
func (p *Plain) Run(ctx context.Context) error {
	p.display.PrintWelcome(p.host, p.sess.ID())
	defer p.spinner.Stop()

	for {
		if ctx.Err() != nil {
			break
		}

		p.display.PrintPrompt()
		line, err := p.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		if cmd, ok := ParseCommand(line); ok {
			if p.handle(ctx, cmd) {
				break
			}
			continue
		}

		// Blank lines and input while busy are ignored.
		p.ctrl.Submit(ctx, line)
	}

	p.corr.Wait()
	p.display.PrintGoodbye()
	return nil
}

// handle executes a slash command and reports whether to quit
func (p *Plain) handle(ctx context.Context, cmd Command) bool {
	if cmd.Err != nil {
		p.display.PrintWarning(cmd.Err.Error())
		return false
	}

	switch cmd.Kind {
	case CmdExit:
		return true
	case CmdClear:
		p.display.ClearScreen()
		p.display.PrintWelcome(p.host, p.sess.ID())
	case CmdHistory:
		p.display.PrintHistory(p.sess.Messages())
	case CmdSession:
		p.display.PrintInfo("Session " + p.sess.ID())
	case CmdHelp:
		p.display.PrintHelp()
	case CmdRate:
		idx, err := ReplyIndex(p.sess, cmd.Reply)
		if err != nil {
			p.display.PrintWarning(err.Error())
			return false
		}
		if err := p.corr.Rate(ctx, idx, cmd.Feedback); err != nil {
			p.display.PrintWarning(err.Error())
		}
	}
	return false
}
