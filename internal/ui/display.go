package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"policy-chat/internal/session"
)

// Color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Display writes the line-mode conversation view
type Display struct {
	out            io.Writer
	width          int
	renderer       *Renderer
	showReferences bool
}

// NewDisplay creates a display writing to out
func NewDisplay(out io.Writer, width int, renderer *Renderer, showReferences bool) *Display {
	if width <= 0 {
		width = 80
	}
	return &Display{
		out:            out,
		width:          width,
		renderer:       renderer,
		showReferences: showReferences,
	}
}

func (d *Display) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

// ClearScreen clears the terminal
func (d *Display) ClearScreen() {
	d.printf("\033[2J\033[H")
}

// PrintWelcome displays the welcome banner
func (d *Display) PrintWelcome(host, sessionID string) {
	d.printf("%s%s╔══════════════════════════════════════════╗%s\n", colorBold, colorCyan, colorReset)
	d.printf("%s%s║      policy-chat · HR policy assistant   ║%s\n", colorBold, colorCyan, colorReset)
	d.printf("%s%s╚══════════════════════════════════════════╝%s\n", colorBold, colorCyan, colorReset)
	d.printf("\n%s%sAgent:%s %s\n", colorBold, colorGray, colorReset, host)
	d.printf("%sSession:%s %s\n", colorGray, colorReset, sessionID)
	d.printf("%sCommands:%s /up [n] | /down [n] | /history | /help | /exit\n", colorGray, colorReset)
	d.printf("\n")
}

// PrintSeparator prints a visual separator
func (d *Display) PrintSeparator() {
	line := strings.Repeat("─", min(d.width, 80))
	d.printf("%s%s%s\n", colorDim, line, colorReset)
}

// PrintPrompt displays user input prompt
func (d *Display) PrintPrompt() {
	d.printf("\n%s%s❯%s ", colorBold, colorGreen, colorReset)
}

// PrintMessage displays one transcript entry. reply is the agent reply
// number used by /up and /down; it is ignored for user messages.
func (d *Display) PrintMessage(msg session.Message, reply int) {
	timestamp := msg.Timestamp.Format("15:04:05")
	if !msg.IsAgent() {
		d.printf("\n%s┌─ You · %s%s\n", colorGray, timestamp, colorReset)
		// User text is literal, never interpreted as markup.
		for _, line := range strings.Split(wordwrap.String(msg.Text, d.width-4), "\n") {
			d.printf("%s│%s %s\n", colorGray, colorReset, line)
		}
		d.printf("%s└%s\n", colorGray, colorReset)
		return
	}

	badge := ""
	if msg.Feedback != session.FeedbackUnset {
		badge = " " + msg.Feedback.Emoji()
	}
	d.printf("\n%s┌─ Agent #%d · %s%s%s\n", colorGray, reply, timestamp, badge, colorReset)

	body := msg.Text
	if msg.Failed {
		d.printf("%s│%s %s%s%s\n", colorGray, colorReset, colorRed, body, colorReset)
	} else {
		if d.renderer != nil {
			body = d.renderer.Agent(body, d.width-4)
		}
		for _, line := range strings.Split(body, "\n") {
			d.printf("%s│%s %s\n", colorGray, colorReset, line)
		}
	}

	if d.showReferences && len(msg.References) > 0 {
		d.printf("%s│%s\n", colorGray, colorReset)
		d.printf("%s│ 📚 Sources:%s\n", colorGray, colorReset)
		for _, ref := range msg.References {
			d.printf("%s│    • %s%s\n", colorGray, truncate(ref, 70), colorReset)
		}
	}
	if msg.AwaitingInput {
		d.printf("%s│ ↳ The agent is waiting for more details.%s\n", colorGray, colorReset)
	}
	if msg.Rateable() {
		d.printf("%s│ Rate with /up %d or /down %d%s\n", colorDim, reply, reply, colorReset)
	}
	d.printf("%s└%s\n", colorGray, colorReset)
}

// PrintHistory shows the whole transcript
func (d *Display) PrintHistory(msgs []session.Message) {
	if len(msgs) == 0 {
		d.PrintInfo("No conversation history yet")
		return
	}

	d.PrintSeparator()
	d.printf("Full Conversation History\n")
	d.PrintSeparator()
	reply := 0
	for _, msg := range msgs {
		if msg.IsAgent() {
			reply++
		}
		d.PrintMessage(msg, reply)
	}
	d.PrintSeparator()
}

// PrintHelp lists the slash commands
func (d *Display) PrintHelp() {
	d.printf("%s%s%s\n", colorGray, helpText, colorReset)
}

// PrintInfo displays info message
func (d *Display) PrintInfo(msg string) {
	d.printf("%sℹ %s%s\n", colorCyan, msg, colorReset)
}

// PrintWarning displays warning message
func (d *Display) PrintWarning(msg string) {
	d.printf("%s⚠ %s%s\n", colorYellow, msg, colorReset)
}

// PrintError displays error message
func (d *Display) PrintError(err error) {
	d.printf("%s✗ Error: %v%s\n", colorRed, err, colorReset)
}

// PrintSuccess displays success message
func (d *Display) PrintSuccess(msg string) {
	d.printf("%s✓ %s%s\n", colorGreen, msg, colorReset)
}

// PrintGoodbye displays goodbye message
func (d *Display) PrintGoodbye() {
	d.printf("\n%s%sGoodbye! 👋%s\n", colorBold, colorCyan, colorReset)
}

// Helper functions

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
