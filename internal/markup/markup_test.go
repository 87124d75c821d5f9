package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text unchanged", "Employees get 20 days.", "Employees get 20 days."},
		{"plain multiline unchanged", "line one\nline two", "line one\nline two"},
		{"bold", "<b>20 days</b>", "**20 days**"},
		{"strong inline", "You get <strong>20</strong> days.", "You get **20** days."},
		{"italic", "<i>note</i> this", "*note* this"},
		{"code", "run <code>leave --list</code>", "run `leave --list`"},
		{"link", `See <a href="https://hr.example/leave">the policy</a>.`, "See [the policy](https://hr.example/leave)."},
		{"link without href", "<a>anchor</a>", "anchor"},
		{"line break", "first<br>second", "first  \nsecond"},
		{"paragraphs", "<p>One</p><p>Two</p>", "One\n\nTwo"},
		{"heading", "<h2>Leave</h2><p>Details</p>", "## Leave\n\nDetails"},
		{"unordered list", "<ul><li>A</li><li>B</li></ul>", "- A\n- B"},
		{"ordered list", "<ol><li>x</li><li>y</li></ol>", "1. x\n2. y"},
		{"text around list", "Options:<ul><li>A</li></ul>Done", "Options:\n\n- A\n\nDone"},
		{"script dropped", "safe<script>alert(1)</script>", "safe"},
		{"entities decoded", "<b>Tom &amp; Jerry</b>", "**Tom & Jerry**"},
		{"empty bold", "a<b> </b>b", "a b"},
		{"nested emphasis", "<b>very <i>important</i></b>", "**very *important***"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMarkdown(tt.in))
		})
	}
}

func TestHasMarkup(t *testing.T) {
	assert.True(t, HasMarkup("<b>x</b>"))
	assert.True(t, HasMarkup("a<br/>b"))
	assert.True(t, HasMarkup(`<a href="x">y</a>`))
	assert.False(t, HasMarkup("a < b"))
	assert.False(t, HasMarkup("no tags here"))
	assert.False(t, HasMarkup(""))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "20 days", PlainText("<b>20 days</b>"))
	assert.Equal(t, "a b", PlainText("<p>a</p><p>b</p>"))
	assert.Equal(t, "one two", PlainText("one\n  two"))
	assert.Equal(t, "x y", PlainText("x<br>y"))
}
