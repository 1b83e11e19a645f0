// SPDX-License-Identifier: AGPL-3.0-or-later
package backlog

import (
	"sort"
	"time"

	model "github.com/bartekus/openspec-backlog/internal/backlog"
)

// CalculateStats computes per-status counts, age distribution and the topN oldest
// open records. An empty input yields zero counts and nil averages.
func CalculateStats(records []model.ChangeRecord, topN int) Stats {
	stats := Stats{
		Total:  len(records),
		Counts: make(map[model.Status]int, 4),
	}
	for _, s := range model.AllStatuses() {
		stats.Counts[s] = 0
	}
	stats.Oldest = []model.ChangeRecord{}

	if len(records) == 0 {
		return stats
	}

	ages := make([]int, 0, len(records))
	sum := 0
	var open []model.ChangeRecord
	for _, r := range records {
		stats.Counts[r.Status]++
		ages = append(ages, r.AgeDays)
		sum += r.AgeDays
		if r.IsOpen() {
			stats.Active++
			open = append(open, r)
		}
	}

	mean := float64(sum) / float64(len(ages))
	median := medianOf(ages)
	stats.MeanAgeDays = &mean
	stats.MedianAgeDays = &median

	sort.SliceStable(open, func(i, j int) bool {
		if open[i].AgeDays != open[j].AgeDays {
			return open[i].AgeDays > open[j].AgeDays
		}
		return open[i].ID < open[j].ID
	})
	if topN < 0 {
		topN = 0
	}
	if len(open) > topN {
		open = open[:topN]
	}
	stats.Oldest = append(stats.Oldest, open...)
	return stats
}

func medianOf(values []int) float64 {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// GenerateBurndown returns window+1 points covering [today-window, today], oldest
// first. Each point counts records that are not done and are dated on or before that day.
func GenerateBurndown(records []model.ChangeRecord, today time.Time, window int) Burndown {
	if window < 0 {
		window = 0
	}
	today = model.DateOf(today, today.Location())

	b := Burndown{Window: window, Points: make([]Point, 0, window+1)}
	for i := window; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		open := 0
		for _, r := range records {
			if r.IsOpen() && model.CalendarDays(r.Date, day) >= 0 {
				open++
			}
		}
		b.Points = append(b.Points, Point{Date: day, Open: open})
	}
	return b
}

// Build runs the aggregation stages over already-filtered records.
func Build(records []model.ChangeRecord, today time.Time, window, topN int) Report {
	return Report{
		Today:    model.DateOf(today, today.Location()),
		Stats:    CalculateStats(records, topN),
		Burndown: GenerateBurndown(records, today, window),
		Records:  records,
	}
}
