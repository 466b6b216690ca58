package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableFormatter(t *testing.T) {
	table := NewTableFormatter([]string{"Version", "Status"})
	table.AddRow([]string{"5.5.0", "PASSED"})
	table.AddRow([]string{"6.0.0-1693"})

	want := "" +
		"┌────────────┬────────┐\n" +
		"│ Version    │ Status │\n" +
		"├────────────┼────────┤\n" +
		"│ 5.5.0      │ PASSED │\n" +
		"│ 6.0.0-1693 │        │\n" +
		"└────────────┴────────┘\n"

	assert.Equal(t, want, table.String())
}

func TestBox_Render(t *testing.T) {
	box := NewBox(SuccessMessage, "Integration run finished")
	box.width = 40
	out := box.
		AddRaw("┌──┐ a raw line that is much wider than the box itself").
		AddBullet("cluster c-1 is still allocated").
		Render()

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "✓")
	assert.Contains(t, lines[1], "Integration run finished")
	assert.Contains(t, lines[2], "a raw line that is much wider than the box itself")
	assert.Contains(t, lines[3], "• cluster c-1 is still allocated")
}

func TestBox_WrapsLongLines(t *testing.T) {
	box := NewBox(WarningMessage, "t")
	box.width = 30
	out := box.
		AddLine("one two three four five six seven eight nine ten eleven").
		Render()

	// top, title, wrapped content, bottom
	assert.Greater(t, len(strings.Split(out, "\n")), 4)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{""}, wrapText("   ", 10))
	assert.Equal(t, []string{"aaa bbb", "ccc"}, wrapText("aaa bbb ccc", 7))
}
