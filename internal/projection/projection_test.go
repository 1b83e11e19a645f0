// SPDX-License-Identifier: AGPL-3.0-or-later
package projection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "out", "file.txt")
	content := []byte("hello world")

	if err := AtomicWrite(target, content); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(got) != string(content) {
		t.Errorf("got %q, want %q", got, content)
	}

	if err := AtomicWrite(target, []byte("second")); err != nil {
		t.Fatalf("AtomicWrite overwrite failed: %v", err)
	}
	got, _ = os.ReadFile(target)
	if string(got) != "second" {
		t.Errorf("got %q after overwrite, want %q", got, "second")
	}
}

func TestASCIIFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"café", "cafe"},
		{"naïve\tline\nbreak", "naive line break"},
		{"dash — here", "dash ? here"},
		{"rocket \U0001F680", "rocket ?"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ASCIIFold(tt.in), "input %q", tt.in)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"clipped", "hello world", 5, "hell~"},
		{"folded first", "résumé", 6, "resume"},
		{"one column", "ab", 1, "a"},
		{"zero", "x", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clip(tt.in, tt.width))
		})
	}
}

func TestLines(t *testing.T) {
	l := NewLines(5)
	assert.Equal(t, MinWidth, l.Width())

	l.Add("abc   ")
	l.Blank()
	l.Addf("%s", strings.Repeat("x", 30))
	assert.Equal(t, "abc\n\n"+strings.Repeat("x", 19)+"~\n", l.String())
}

func TestBarChart(t *testing.T) {
	lines := BarChart([]string{"a", "bb"}, []int{0, 4}, 20)
	require.Len(t, lines, 2)
	assert.Equal(t, "a  |"+strings.Repeat(" ", 15)+"0", lines[0])
	assert.Equal(t, "bb |"+strings.Repeat("#", 14)+" 4", lines[1])
}

func TestBarChart_SmallValueGetsOneMark(t *testing.T) {
	lines := BarChart([]string{"a", "b"}, []int{1, 1000}, 20)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "|#")
	assert.NotContains(t, lines[0], "|##")
}

func TestBarChart_NegativeValueRenderedRaw(t *testing.T) {
	lines := BarChart([]string{"x", "y"}, []int{-3, 2}, 20)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " -3"))
	assert.NotContains(t, lines[0], "#")
	assert.Len(t, lines[0], 20)
	assert.Equal(t, "y |"+strings.Repeat("#", 14)+"  2", lines[1])
}

func TestBarChart_WidthBound(t *testing.T) {
	labels := []string{"2025-10-01", "2025-10-02"}
	for _, width := range []int{0, 20, 25, 80} {
		for _, line := range BarChart(labels, []int{7, 12345}, width) {
			assert.LessOrEqual(t, len(line), NormalizeWidth(width))
		}
	}
}

func TestRenderTable(t *testing.T) {
	lines := RenderTable([]string{"A", "BB"}, [][]string{{"x", "y"}, {"long", "z"}}, 40)
	assert.Equal(t, []string{
		"A     BB",
		"----  --",
		"x     y",
		"long  z",
	}, lines)

	clipped := RenderTable([]string{"NAME"}, [][]string{{strings.Repeat("n", 50)}}, 20)
	assert.Equal(t, strings.Repeat("n", 19)+"~", clipped[2])
}

func TestRenderListAndHeader(t *testing.T) {
	assert.Equal(t, []string{"  - one", "  - two"}, RenderList([]string{"one", "two"}, 40))
	assert.Empty(t, RenderList(nil, 40))
	assert.Equal(t, []string{"Title", "====="}, RenderHeader("Title", 40))
}
