// SPDX-License-Identifier: AGPL-3.0-or-later
package backlog

import (
	"fmt"

	model "github.com/bartekus/openspec-backlog/internal/backlog"
	"github.com/bartekus/openspec-backlog/internal/changeid"
	"github.com/bartekus/openspec-backlog/internal/projection"
)

// RenderText renders the summary, the oldest open changes and the open-item chart
// as ASCII. Every line is at most width characters (width is raised to projection.MinWidth).
func RenderText(r Report, width int) string {
	out := projection.NewLines(width)

	out.AddAll(projection.RenderHeader("Backlog as of "+changeid.Format(r.Today), out.Width()))
	out.Addf("Summary: %d active, %d planned, %d in-progress, %d done",
		r.Stats.Active,
		r.Stats.Counts[model.StatusPlanned],
		r.Stats.Counts[model.StatusInProgress],
		r.Stats.Counts[model.StatusDone])
	out.Addf("Unknown: %d  Total: %d", r.Stats.Counts[model.StatusUnknown], r.Stats.Total)
	out.Addf("Age (days): mean %s, median %s", formatAge(r.Stats.MeanAgeDays), formatAge(r.Stats.MedianAgeDays))
	out.Blank()

	out.Add("Oldest open changes:")
	if len(r.Stats.Oldest) == 0 {
		out.Add("  (none)")
	}
	items := make([]string, 0, len(r.Stats.Oldest))
	for _, rec := range r.Stats.Oldest {
		items = append(items, fmt.Sprintf("%dd %s %s", rec.AgeDays, rec.Status, rec.ID))
	}
	out.AddAll(projection.RenderList(items, out.Width()))
	out.Blank()

	out.Addf("Open items, last %d days:", r.Burndown.Window)
	labels := make([]string, 0, len(r.Burndown.Points))
	values := make([]int, 0, len(r.Burndown.Points))
	for _, p := range r.Burndown.Points {
		labels = append(labels, changeid.Format(p.Date))
		values = append(values, p.Open)
	}
	out.AddAll(projection.BarChart(labels, values, out.Width()))

	return out.String()
}

// RenderList renders one table row per change.
func RenderList(records []model.ChangeRecord, width int) string {
	out := projection.NewLines(width)
	if len(records) == 0 {
		out.Add("No changes found.")
		return out.String()
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		owner, title := "-", "-"
		if rec.Owner != nil {
			owner = *rec.Owner
		}
		if rec.Title != nil {
			title = *rec.Title
		}
		id := rec.ID
		if rec.Archived {
			id = "archive/" + id
		}
		rows = append(rows, []string{id, string(rec.Status), fmt.Sprintf("%dd", rec.AgeDays), owner, title})
	}
	out.AddAll(projection.RenderTable([]string{"ID", "STATUS", "AGE", "OWNER", "TITLE"}, rows, out.Width()))
	return out.String()
}

func formatAge(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}
