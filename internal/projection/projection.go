// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projection renders report data as plain fixed-width ASCII.
// Every helper guarantees that each produced line is printable ASCII and no
// wider than the requested width; long content is clipped, never wrapped.
package projection

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/natefinch/atomic"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinWidth is the narrowest layout the renderers support.
const MinWidth = 20

// ClipMarker ends a clipped line.
const ClipMarker = "~"

// AtomicWrite writes content to path atomically by writing to a temp file and renaming it.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// NormalizeWidth raises width to MinWidth.
func NormalizeWidth(width int) int {
	if width < MinWidth {
		return MinWidth
	}
	return width
}

// ASCIIFold maps s onto printable ASCII. Accents are stripped ("café" -> "cafe"),
// whitespace controls become spaces and anything else outside 0x20-0x7E becomes '?'.
func ASCIIFold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r >= 0x20 && r <= 0x7e:
			b.WriteRune(r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// Clip folds s to ASCII and truncates it to width, marking the cut with ClipMarker.
func Clip(s string, width int) string {
	s = ASCIIFold(s)
	if width <= 0 {
		return ""
	}
	if len(s) <= width {
		return s
	}
	if width == 1 {
		return s[:1]
	}
	return s[:width-len(ClipMarker)] + ClipMarker
}

// Lines accumulates clipped output lines.
type Lines struct {
	width int
	b     strings.Builder
}

// NewLines returns a line writer for the given width (raised to MinWidth).
func NewLines(width int) *Lines {
	return &Lines{width: NormalizeWidth(width)}
}

// Width is the effective line width.
func (l *Lines) Width() int { return l.width }

// Add appends one clipped line.
func (l *Lines) Add(line string) {
	l.b.WriteString(strings.TrimRight(Clip(line, l.width), " "))
	l.b.WriteByte('\n')
}

// Addf appends one formatted, clipped line.
func (l *Lines) Addf(format string, args ...any) {
	l.Add(fmt.Sprintf(format, args...))
}

// Blank appends an empty line.
func (l *Lines) Blank() { l.b.WriteByte('\n') }

// AddAll appends lines produced by another renderer.
func (l *Lines) AddAll(lines []string) {
	for _, line := range lines {
		l.Add(line)
	}
}

func (l *Lines) String() string { return l.b.String() }

// BarChart renders one "label |#### n" line per value. Bar lengths are
// proportional to value/max within the space left after the label and number.
// Negative values render their raw number with an empty bar.
func BarChart(labels []string, values []int, width int) []string {
	width = NormalizeWidth(width)
	n := len(values)
	if len(labels) < n {
		n = len(labels)
	}

	labelW, numW, maxVal := 0, 1, 0
	for i := 0; i < n; i++ {
		labelW = max(labelW, len(ASCIIFold(labels[i])))
		numW = max(numW, len(strconv.Itoa(values[i])))
		maxVal = max(maxVal, values[i])
	}

	barW := max(width-labelW-len(" |")-1-numW, 0)

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v := values[i]
		fill := 0
		if maxVal > 0 && v > 0 {
			fill = (v*barW + maxVal/2) / maxVal
			if fill == 0 && barW > 0 {
				fill = 1
			}
			fill = min(fill, barW)
		}
		line := fmt.Sprintf("%-*s |%s%s %*d",
			labelW, ASCIIFold(labels[i]),
			strings.Repeat("#", fill), strings.Repeat(" ", barW-fill),
			numW, v)
		lines = append(lines, Clip(line, width))
	}
	return lines
}

// RenderTable renders a space-aligned ASCII table with a dashed rule under the header.
// It assumes rows are already sorted if determinism is required.
func RenderTable(headers []string, rows [][]string, width int) []string {
	width = NormalizeWidth(width)
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(ASCIIFold(h))
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(ASCIIFold(row[i])))
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = ASCIIFold(cells[i])
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		return Clip(strings.TrimRight(strings.Join(parts, "  "), " "), width)
	}

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, format(headers), format(rules))
	for _, row := range rows {
		lines = append(lines, format(row))
	}
	return lines
}

// RenderList renders an indented ASCII list.
func RenderList(items []string, width int) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, Clip("  - "+item, NormalizeWidth(width)))
	}
	return lines
}

// RenderHeader renders an underlined section title.
func RenderHeader(text string, width int) []string {
	title := Clip(text, NormalizeWidth(width))
	return []string{title, strings.Repeat("=", len(title))}
}
