// SPDX-License-Identifier: AGPL-3.0-or-later

/*
OpenSpec Backlog - a read-only backlog scanner for OpenSpec change directories.
It classifies every change under openspec/changes, aggregates age statistics and renders an open-item chart.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package backlog aggregates scanned change records into summary statistics and an
// open-item series, and renders them as fixed-width ASCII or JSON.
package backlog

import (
	"time"

	model "github.com/bartekus/openspec-backlog/internal/backlog"
)

// DefaultTopN is the default length of the oldest-open list.
const DefaultTopN = 10

// DefaultWindow is the default series window in days.
const DefaultWindow = 30

// Stats represents overall backlog statistics.
type Stats struct {
	Total int
	// Active counts every record that is not done.
	Active int
	Counts map[model.Status]int
	// MeanAgeDays and MedianAgeDays are nil when there are no records.
	MeanAgeDays   *float64
	MedianAgeDays *float64
	// Oldest lists the oldest open records, oldest first.
	Oldest []model.ChangeRecord
}

// Point is the number of open changes on one day.
type Point struct {
	Date time.Time
	Open int
}

// Burndown is the open-item count over a trailing window. It is not a
// velocity-based burndown; there is no ideal line.
type Burndown struct {
	Window int
	Points []Point
}

// Report bundles everything one run renders.
type Report struct {
	Today    time.Time
	Stats    Stats
	Burndown Burndown
	Records  []model.ChangeRecord
}
