// Package markup interprets the inline HTML the policy agent embeds in its
// replies. Replies are converted to Markdown so the terminal renderer can
// display them as structured content instead of escaped tags.
package markup

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	tagPattern   = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
	spaceOnlyEnd = regexp.MustCompile(`[ \t]+\n`)
)

// HasMarkup reports whether s contains anything that looks like an HTML tag
func HasMarkup(s string) bool {
	return tagPattern.MatchString(s)
}

// ToMarkdown converts inline HTML in s to Markdown. Text without tags is
// returned unchanged; text that fails to parse is returned as-is.
func ToMarkdown(s string) string {
	if !HasMarkup(s) {
		return s
	}

	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return s
	}

	w := &writer{}
	for _, n := range nodes {
		w.node(n)
	}
	return cleanMarkdown(w.String())
}

// PlainText strips all markup and collapses whitespace. Used for one-line
// previews.
func PlainText(s string) string {
	if !HasMarkup(s) {
		return strings.Join(strings.Fields(s), " ")
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(nodeText(n))
		sb.WriteString(" ")
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

type listState struct {
	ordered bool
	n       int
}

type writer struct {
	sb    strings.Builder
	lists []listState
	pre   int
}

func (w *writer) String() string {
	return w.sb.String()
}

func (w *writer) write(s string) {
	w.sb.WriteString(s)
}

// block makes sure the next output starts on a fresh paragraph
func (w *writer) block() {
	out := w.sb.String()
	if out == "" || strings.HasSuffix(out, "\n\n") {
		return
	}
	if strings.HasSuffix(out, "\n") {
		w.write("\n")
		return
	}
	w.write("\n\n")
}

func (w *writer) newline() {
	out := w.sb.String()
	if out != "" && !strings.HasSuffix(out, "\n") {
		w.write("\n")
	}
}

func (w *writer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

// wrap renders the children of n between left and right, skipping empty spans
func (w *writer) wrap(n *html.Node, left, right string) {
	inner := &writer{lists: w.lists, pre: w.pre}
	inner.children(n)
	text := inner.String()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		w.write(text)
		return
	}
	// Keep surrounding spaces outside the markers.
	lead := text[:len(text)-len(strings.TrimLeft(text, " \t\n"))]
	trail := text[len(strings.TrimRight(text, " \t\n")):]
	w.write(lead + left + trimmed + right + trail)
}

func (w *writer) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if w.pre > 0 {
			w.write(n.Data)
			return
		}
		w.write(collapseSpace(n.Data))
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.DocumentNode:
		w.children(n)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title:
		return
	case atom.B, atom.Strong:
		w.wrap(n, "**", "**")
	case atom.I, atom.Em:
		w.wrap(n, "*", "*")
	case atom.S, atom.Del, atom.Strike:
		w.wrap(n, "~~", "~~")
	case atom.Code:
		if w.pre > 0 {
			w.children(n)
			return
		}
		w.wrap(n, "`", "`")
	case atom.Pre:
		w.block()
		w.write("```\n")
		w.pre++
		w.children(n)
		w.pre--
		w.newline()
		w.write("```")
		w.block()
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			w.children(n)
			return
		}
		w.wrap(n, "[", "]("+href+")")
	case atom.Br:
		w.write("  \n")
	case atom.Hr:
		w.block()
		w.write("---")
		w.block()
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Blockquote, atom.Table:
		w.block()
		if n.DataAtom == atom.Blockquote {
			inner := &writer{lists: w.lists}
			inner.children(n)
			for i, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
				if i > 0 {
					w.write("\n")
				}
				w.write("> " + line)
			}
		} else {
			w.children(n)
		}
		w.block()
	case atom.Tr:
		w.newline()
		w.children(n)
	case atom.Td, atom.Th:
		w.children(n)
		w.write(" ")
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		w.block()
		w.write(strings.Repeat("#", level) + " ")
		inner := &writer{}
		inner.children(n)
		w.write(strings.TrimSpace(inner.String()))
		w.block()
	case atom.Ul, atom.Ol:
		if len(w.lists) == 0 {
			w.block()
		} else {
			w.newline()
		}
		w.lists = append(w.lists, listState{ordered: n.DataAtom == atom.Ol})
		w.children(n)
		w.lists = w.lists[:len(w.lists)-1]
		if len(w.lists) == 0 {
			w.block()
		}
	case atom.Li:
		w.newline()
		depth := len(w.lists)
		marker := "- "
		if depth > 0 {
			top := &w.lists[depth-1]
			top.n++
			if top.ordered {
				marker = fmt.Sprintf("%d. ", top.n)
			}
		} else {
			depth = 1
		}
		w.write(strings.Repeat("  ", depth-1) + marker)
		inner := &writer{lists: w.lists}
		inner.children(n)
		w.write(strings.TrimSpace(inner.String()))
		w.newline()
	default:
		w.children(n)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText extracts all text from a node and its children
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
		return ""
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(nodeText(c))
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			text.WriteString(" ")
		}
	}
	return text.String()
}

func collapseSpace(s string) string {
	if s == "" {
		return s
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// cleanMarkdown trims trailing spaces and squeezes runs of blank lines
func cleanMarkdown(s string) string {
	s = spaceOnlyEnd.ReplaceAllStringFunc(s, func(m string) string {
		// Two or more spaces only come from <br>; keep them as a hard break.
		if strings.HasSuffix(m, "  \n") {
			return "  \n"
		}
		return "\n"
	})
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
