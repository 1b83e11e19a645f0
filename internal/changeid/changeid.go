// SPDX-License-Identifier: AGPL-3.0-or-later

// Package changeid splits OpenSpec change directory names into a date and a slug.
//
// Directory names are conventionally YYYY-MM-DD-slug, but real trees contain names
// without a date and names whose date prefix was written twice by older scaffolding.
// Parse degrades gracefully on all of them.
package changeid

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the layout of the date prefix.
const DateLayout = "2006-01-02"

var prefixRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// Parsed is the result of Parse.
type Parsed struct {
	// Date is midnight of the prefix date in the requested location. Zero when HasDate is false.
	Date    time.Time
	HasDate bool
	// Slug is the name without its date prefix, or the whole name when there is no prefix.
	Slug string
	// DuplicatePrefix is set when the same date prefix was repeated, e.g. 2025-10-18-2025-10-18-feature.
	DuplicatePrefix bool
}

// Parse extracts the date prefix and slug from a change directory name.
// It never fails; a name without a valid date prefix yields HasDate=false and the
// full name as slug, and the caller falls back to the filesystem timestamp.
func Parse(name string, loc *time.Location) Parsed {
	if loc == nil {
		loc = time.Local
	}

	date, rest, ok := splitPrefix(name, loc)
	if !ok {
		return Parsed{Slug: name}
	}

	p := Parsed{Date: date, HasDate: true, Slug: rest}
	prefix := date.Format(DateLayout) + "-"
	for strings.HasPrefix(p.Slug, prefix) && len(p.Slug) > len(prefix) {
		p.Slug = p.Slug[len(prefix):]
		p.DuplicatePrefix = true
	}
	return p
}

func splitPrefix(name string, loc *time.Location) (time.Time, string, bool) {
	m := prefixRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	d, err := time.ParseInLocation(DateLayout, m[1], loc)
	if err != nil {
		return time.Time{}, "", false
	}
	return d, m[2], true
}

// Format renders a date in the prefix layout.
func Format(d time.Time) string {
	return d.Format(DateLayout)
}
