// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mddoc extracts the few facts the backlog needs from loosely structured
// markdown: the first heading, GFM task list items, an owner marker and YAML frontmatter.
package mddoc

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Frontmatter is the optional YAML header of a proposal or todo file.
type Frontmatter struct {
	Title  string `yaml:"title"`
	Owner  string `yaml:"owner"`
	Status string `yaml:"status"`
}

// Task is a single "- [ ]" / "- [x]" item.
type Task struct {
	Text    string
	Checked bool
	// Section is the text of the nearest heading above the item, empty if none.
	Section string
}

// Document is a parsed markdown file.
type Document struct {
	Frontmatter Frontmatter
	body        []byte
	root        ast.Node
}

var md = goldmark.New(goldmark.WithExtensions(extension.TaskList))

var (
	ownerRe   = regexp.MustCompile(`(?mi)^\s*(?:[-*+]\s+)?\*{0,2}owner\*{0,2}[ \t]*:[ \t]*\*{0,2}[ \t]*([^\r\n]*)$`)
	mentionRe = regexp.MustCompile(`(?:^|[\s(\[,])@([A-Za-z0-9](?:[A-Za-z0-9_-]*[A-Za-z0-9])?)`)
)

// Parse parses src. The returned Document is always usable: when the frontmatter
// is malformed the error is returned alongside a Document whose Frontmatter is empty.
func Parse(src []byte) (*Document, error) {
	fm, body, hasFM := splitFrontmatter(src)
	doc := &Document{body: body}
	doc.root = md.Parser().Parse(text.NewReader(body))

	if !hasFM {
		return doc, nil
	}
	if err := yaml.Unmarshal(fm, &doc.Frontmatter); err != nil {
		doc.Frontmatter = Frontmatter{}
		return doc, fmt.Errorf("decoding frontmatter: %w", err)
	}
	return doc, nil
}

// splitFrontmatter separates a leading "---" fenced YAML block from the body.
func splitFrontmatter(src []byte) (fm, body []byte, ok bool) {
	s := bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	lines := bytes.SplitAfter(s, []byte("\n"))
	if len(lines) < 2 || strings.TrimSpace(string(lines[0])) != "---" {
		return nil, s, false
	}

	offset := len(lines[0])
	for _, line := range lines[1:] {
		if strings.TrimSpace(string(line)) == "---" {
			return s[len(lines[0]):offset], s[offset+len(line):], true
		}
		offset += len(line)
	}
	// Unterminated fence: treat the whole file as body.
	return nil, s, false
}

// FirstHeading returns the text of the first heading, or "" when there is none.
func (d *Document) FirstHeading() string {
	var title string
	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			if t := nodeText(h, d.body); t != "" {
				title = t
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return title
}

// Tasks returns every task list item in document order.
func (d *Document) Tasks() []Task {
	var (
		tasks   []Task
		section string
	)
	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			section = nodeText(node, d.body)
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			block := node.FirstChild()
			if block == nil {
				return ast.WalkContinue, nil
			}
			box, ok := block.FirstChild().(*extast.TaskCheckBox)
			if !ok {
				return ast.WalkContinue, nil
			}
			tasks = append(tasks, Task{
				Text:    nodeText(block, d.body),
				Checked: box.IsChecked,
				Section: section,
			})
		}
		return ast.WalkContinue, nil
	})
	return tasks
}

// Owner returns the owner named by an "**Owner**:" line, else the first @mention.
func (d *Document) Owner() string {
	if m := ownerRe.FindSubmatch(d.body); m != nil {
		v := strings.TrimSpace(strings.Trim(string(m[1]), "* \t"))
		v = strings.TrimPrefix(v, "@")
		if v != "" {
			return v
		}
	}
	if m := mentionRe.FindSubmatch(d.body); m != nil {
		return string(m[1])
	}
	return ""
}

// nodeText concatenates the inline text below n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
