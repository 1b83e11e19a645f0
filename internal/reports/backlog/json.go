// SPDX-License-Identifier: AGPL-3.0-or-later
package backlog

import (
	"encoding/json"

	model "github.com/bartekus/openspec-backlog/internal/backlog"
	"github.com/bartekus/openspec-backlog/internal/changeid"
)

// The JSON document shape. Field names are part of the CLI contract.
type (
	jsonReport struct {
		GeneratedAt string       `json:"generated_at"`
		Summary     jsonSummary  `json:"summary"`
		Changes     []jsonChange `json:"changes"`
		Burndown    jsonBurndown `json:"burndown"`
	}

	jsonSummary struct {
		Total         int            `json:"total"`
		Active        int            `json:"active"`
		Counts        map[string]int `json:"counts"`
		MeanAgeDays   *float64       `json:"mean_age_days"`
		MedianAgeDays *float64       `json:"median_age_days"`
		Oldest        []jsonOldest   `json:"oldest"`
	}

	jsonOldest struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		AgeDays int    `json:"age_days"`
	}

	jsonChange struct {
		ID         string   `json:"id"`
		Slug       string   `json:"slug"`
		Date       string   `json:"date"`
		DateSource string   `json:"date_source"`
		Title      *string  `json:"title"`
		Status     string   `json:"status"`
		Owner      *string  `json:"owner"`
		AgeDays    int      `json:"age_days"`
		Archived   bool     `json:"archived"`
		Warnings   []string `json:"warnings,omitempty"`
	}

	jsonBurndown struct {
		Window int         `json:"window"`
		Points []jsonPoint `json:"points"`
	}

	jsonPoint struct {
		Date string `json:"date"`
		Open int    `json:"open"`
	}
)

// JSON renders the report as an indented JSON document followed by a newline.
func (r Report) JSON() ([]byte, error) {
	doc := jsonReport{
		GeneratedAt: changeid.Format(r.Today),
		Summary: jsonSummary{
			Total:         r.Stats.Total,
			Active:        r.Stats.Active,
			Counts:        make(map[string]int, len(r.Stats.Counts)),
			MeanAgeDays:   r.Stats.MeanAgeDays,
			MedianAgeDays: r.Stats.MedianAgeDays,
			Oldest:        make([]jsonOldest, 0, len(r.Stats.Oldest)),
		},
		Changes: changesJSON(r.Records),
		Burndown: jsonBurndown{
			Window: r.Burndown.Window,
			Points: make([]jsonPoint, 0, len(r.Burndown.Points)),
		},
	}
	for _, s := range model.AllStatuses() {
		doc.Summary.Counts[string(s)] = r.Stats.Counts[s]
	}
	for _, o := range r.Stats.Oldest {
		doc.Summary.Oldest = append(doc.Summary.Oldest, jsonOldest{ID: o.ID, Status: string(o.Status), AgeDays: o.AgeDays})
	}
	for _, p := range r.Burndown.Points {
		doc.Burndown.Points = append(doc.Burndown.Points, jsonPoint{Date: changeid.Format(p.Date), Open: p.Open})
	}
	return marshal(doc)
}

// changesJSON converts records to their JSON representation.
func changesJSON(records []model.ChangeRecord) []jsonChange {
	out := make([]jsonChange, 0, len(records))
	for _, rec := range records {
		out = append(out, jsonChange{
			ID:         rec.ID,
			Slug:       rec.Slug,
			Date:       changeid.Format(rec.Date),
			DateSource: string(rec.DateSource),
			Title:      rec.Title,
			Status:     string(rec.Status),
			Owner:      rec.Owner,
			AgeDays:    rec.AgeDays,
			Archived:   rec.Archived,
			Warnings:   rec.Warnings,
		})
	}
	return out
}

// ChangesDocument renders only the changes array, as used by the list command.
func ChangesDocument(records []model.ChangeRecord) ([]byte, error) {
	return marshal(changesJSON(records))
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
