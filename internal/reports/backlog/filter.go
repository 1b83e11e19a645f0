// SPDX-License-Identifier: AGPL-3.0-or-later
package backlog

import (
	"time"

	model "github.com/bartekus/openspec-backlog/internal/backlog"
)

// Filter narrows the records a report covers. The zero value keeps everything.
type Filter struct {
	Statuses []model.Status
	// Since keeps records dated on or after this calendar day.
	Since *time.Time
}

// IncludesStatus reports whether s passes the status filter.
func (f Filter) IncludesStatus(s model.Status) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, want := range f.Statuses {
		if want == s {
			return true
		}
	}
	return false
}

// Apply returns the records matching f, preserving order.
func (f Filter) Apply(records []model.ChangeRecord) []model.ChangeRecord {
	out := make([]model.ChangeRecord, 0, len(records))
	for _, r := range records {
		if !f.IncludesStatus(r.Status) {
			continue
		}
		if f.Since != nil && model.CalendarDays(*f.Since, r.Date) < 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}
