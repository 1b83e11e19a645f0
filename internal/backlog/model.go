// SPDX-License-Identifier: AGPL-3.0-or-later

/*
OpenSpec Backlog - a read-only backlog scanner for OpenSpec change directories.
It classifies every change under openspec/changes, aggregates age statistics and renders an open-item chart.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package backlog defines the change record model shared by the scanner, the classifier and the reports.
package backlog

import (
	"fmt"
	"strings"
	"time"
)

// Status is the inferred lifecycle stage of a change.
type Status string

const (
	StatusUnknown    Status = "unknown"
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// AllStatuses returns every status in completeness order.
func AllStatuses() []Status {
	return []Status{StatusUnknown, StatusPlanned, StatusInProgress, StatusDone}
}

// Rank orders statuses by completeness: unknown < planned < in-progress < done.
func (s Status) Rank() int {
	switch s {
	case StatusPlanned:
		return 1
	case StatusInProgress:
		return 2
	case StatusDone:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUnknown, StatusPlanned, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus accepts a status name, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "in_progress", "inprogress":
		v = string(StatusInProgress)
	}
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q: must be one of: planned, in-progress, done, unknown", raw)
	}
	return s, nil
}

// DateSource records where a change date came from.
type DateSource string

const (
	DateFromPrefix DateSource = "prefix"
	DateFromMtime  DateSource = "mtime"
)

// Record-level warning codes.
const (
	WarnFutureDated     = "future-dated"
	WarnDuplicatePrefix = "duplicate-date-prefix"
)

// ChangeRecord is one change directory as seen by a single scan.
// Records are built fresh on every scan and never mutated afterwards.
type ChangeRecord struct {
	ID         string
	Slug       string
	Date       time.Time
	DateSource DateSource
	Title      *string
	Status     Status
	Owner      *string
	AgeDays    int
	Archived   bool
	Warnings   []string

	// Path is the absolute change directory.
	Path string
}

// IsOpen reports whether the change still counts against the backlog.
func (r ChangeRecord) IsOpen() bool {
	return r.Status != StatusDone
}

// CalendarDays returns the number of whole calendar days from -> to.
// Both times are reduced to their calendar date in their own location first,
// so DST transitions never produce fractional days.
func CalendarDays(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / 86400)
}

// DateOf truncates t to midnight in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
