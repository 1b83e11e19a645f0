// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify infers a change's lifecycle status from a handful of signals
// collected from its directory. The rules are a heuristic over unstructured text;
// ties resolve toward reporting less completion, not more.
package classify

import (
	"strings"

	"github.com/bartekus/openspec-backlog/internal/backlog"
	"github.com/bartekus/openspec-backlog/internal/mddoc"
)

// Stage is one of the fixed workflow stages tracked in todo.md.
type Stage int

const (
	StageProposal Stage = iota
	StageSpecification
	StageTasks
	StageImplementation
	StageValidation
	StageGitOperations
)

// Stages returns the workflow stages in order.
func Stages() []Stage {
	return []Stage{
		StageProposal,
		StageSpecification,
		StageTasks,
		StageImplementation,
		StageValidation,
		StageGitOperations,
	}
}

func (s Stage) String() string {
	switch s {
	case StageProposal:
		return "Proposal"
	case StageSpecification:
		return "Specification"
	case StageTasks:
		return "Tasks"
	case StageImplementation:
		return "Implementation"
	case StageValidation:
		return "Validation"
	case StageGitOperations:
		return "Git Operations"
	}
	return "Stage(?)"
}

// keywords are matched against lower-cased task and heading text.
var keywords = map[Stage][]string{
	StageProposal:       {"proposal", "propose"},
	StageSpecification:  {"specification", "specs", "spec"},
	StageTasks:          {"tasks.md", "task breakdown", "tasks"},
	StageImplementation: {"implementation", "implement"},
	StageValidation:     {"validation", "validate", "verification"},
	StageGitOperations:  {"git operations", "git", "commit", "pull request"},
}

// requiredForDone are the stages that must be checked before a change counts as done.
// Git Operations is tracked but not required.
var requiredForDone = []Stage{
	StageProposal,
	StageSpecification,
	StageTasks,
	StageImplementation,
	StageValidation,
}

var middleBand = []Stage{StageImplementation, StageValidation}

// MatchStage returns the stage whose keyword occurs earliest in text.
func MatchStage(text string) (Stage, bool) {
	lower := strings.ToLower(text)
	best, bestAt := Stage(0), -1
	for _, s := range Stages() {
		for _, kw := range keywords[s] {
			if at := indexWord(lower, kw); at >= 0 && (bestAt < 0 || at < bestAt) {
				best, bestAt = s, at
			}
		}
	}
	return best, bestAt >= 0
}

// indexWord returns the first index of kw in s on word boundaries, or -1.
func indexWord(s, kw string) int {
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], kw)
		if j < 0 {
			return -1
		}
		start := i + j
		end := start + len(kw)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return start
		}
		i = start + 1
	}
	return -1
}

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('0' <= b && b <= '9')
}

// Signals are the observations a Classifier works from.
type Signals struct {
	HasProposal      bool
	HasTodo          bool
	HasRetrospective bool

	// StagesSeen holds every stage mentioned anywhere in todo.md.
	StagesSeen map[Stage]bool
	// Stages holds the stages whose checkboxes are complete.
	Stages map[Stage]bool

	Checked int
	Total   int
}

// SignalsFromTodo derives checklist signals from the task items of todo.md.
// A stage counts as checked when a checked task names it, or when every task
// (at least one) under a heading that names it is checked.
func SignalsFromTodo(tasks []mddoc.Task) Signals {
	sig := Signals{
		HasTodo:    true,
		StagesSeen: map[Stage]bool{},
		Stages:     map[Stage]bool{},
	}

	type tally struct{ checked, total int }
	sections := map[Stage]*tally{}

	for _, t := range tasks {
		sig.Total++
		if t.Checked {
			sig.Checked++
		}

		if st, ok := MatchStage(t.Text); ok {
			sig.StagesSeen[st] = true
			if t.Checked {
				sig.Stages[st] = true
			}
		}
		if st, ok := MatchStage(t.Section); ok {
			sig.StagesSeen[st] = true
			tl := sections[st]
			if tl == nil {
				tl = &tally{}
				sections[st] = tl
			}
			tl.total++
			if t.Checked {
				tl.checked++
			}
		}
	}

	for st, tl := range sections {
		if tl.total > 0 && tl.checked == tl.total {
			sig.Stages[st] = true
		}
	}
	return sig
}

// Classifier maps signals to a status.
type Classifier interface {
	Classify(Signals) backlog.Status
}

// Heuristic is the default Classifier.
type Heuristic struct{}

// Classify implements Classifier.
func (Heuristic) Classify(sig Signals) backlog.Status {
	if len(sig.StagesSeen) == 0 && sig.Total > 0 {
		return classifyByRatio(sig)
	}

	if sig.HasRetrospective && allChecked(sig.Stages, requiredForDone) {
		return backlog.StatusDone
	}
	if anyChecked(sig.Stages, middleBand) {
		return backlog.StatusInProgress
	}
	if sig.HasProposal {
		return backlog.StatusPlanned
	}
	return backlog.StatusUnknown
}

// classifyByRatio handles checklists that never name a workflow stage.
func classifyByRatio(sig Signals) backlog.Status {
	switch {
	case sig.HasRetrospective && sig.Checked == sig.Total:
		return backlog.StatusDone
	case sig.Checked > 0:
		return backlog.StatusInProgress
	case sig.HasProposal:
		return backlog.StatusPlanned
	}
	return backlog.StatusUnknown
}

func allChecked(checked map[Stage]bool, stages []Stage) bool {
	for _, s := range stages {
		if !checked[s] {
			return false
		}
	}
	return true
}

func anyChecked(checked map[Stage]bool, stages []Stage) bool {
	for _, s := range stages {
		if checked[s] {
			return true
		}
	}
	return false
}
