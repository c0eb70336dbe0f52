package logs

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func numbered(n int, sep string) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(lines, sep)
}

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "unix line breaks", raw: "a\nb\nc", want: []string{"a", "b", "c"}},
		{name: "windows line breaks", raw: "a\r\nb\r\nc", want: []string{"a", "b", "c"}},
		{name: "mixed line breaks", raw: "a\r\nb\nc", want: []string{"a", "b", "c"}},
		{name: "trailing newline is not a line", raw: "a\nb\n", want: []string{"a", "b"}},
		{name: "trailing crlf is not a line", raw: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "blank lines inside are kept", raw: "a\n\nb", want: []string{"a", "", "b"}},
		{name: "empty", raw: "", want: nil},
		{name: "whitespace only lines are counted", raw: " \n\t\r\n", want: []string{" ", "\t"}},
		{name: "single line break", raw: "\n", want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lines(tt.raw))
		})
	}
}

func TestTrim(t *testing.T) {
	t.Run("returns the full text when under the limit", func(t *testing.T) {
		raw := numbered(10, "\n") + "\n"

		got, total := Trim(raw, 500)

		assert.Equal(t, 10, total)
		assert.Equal(t, numbered(10, "\n"), got)
	})

	t.Run("returns the full text at exactly the limit", func(t *testing.T) {
		got, total := Trim(numbered(5, "\n"), 5)

		assert.Equal(t, 5, total)
		assert.Equal(t, numbered(5, "\n"), got)
	})

	t.Run("keeps exactly the last maxLines lines and reports the true total", func(t *testing.T) {
		got, total := Trim(numbered(1000, "\r\n"), 3)

		assert.Equal(t, 1000, total)
		assert.Equal(t, "line 998\nline 999\nline 1000", got)
	})

	t.Run("normalises crlf when nothing is trimmed", func(t *testing.T) {
		got, total := Trim("a\r\nb", 10)

		assert.Equal(t, 2, total)
		assert.Equal(t, "a\nb", got)
	})

	t.Run("empty log has zero lines", func(t *testing.T) {
		got, total := Trim("", 10)

		assert.Equal(t, 0, total)
		assert.Empty(t, got)
	})

	t.Run("whitespace-only log keeps its true line count", func(t *testing.T) {
		got, total := Trim("   \n\t\n  ", 500)

		assert.Equal(t, 3, total)
		assert.Equal(t, "   \n\t\n  ", got)
		assert.Equal(t, EmptyLog, ForPrompt(got))
	})

	t.Run("blank line only counts as one line", func(t *testing.T) {
		got, total := Trim("   \n", 10)

		assert.Equal(t, 1, total)
		assert.Equal(t, "   ", got)
	})

	t.Run("single line limit", func(t *testing.T) {
		got, total := Trim("first\nsecond\nthird\n", 1)

		assert.Equal(t, 3, total)
		assert.Equal(t, "third", got)
	})
}

func TestForPrompt(t *testing.T) {
	assert.Equal(t, EmptyLog, ForPrompt(""))
	assert.Equal(t, EmptyLog, ForPrompt("  \n "))
	assert.Equal(t, "boom", ForPrompt("boom"))
}
