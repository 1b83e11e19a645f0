package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bartekus/openspec-backlog/internal/backlog"
	"github.com/bartekus/openspec-backlog/internal/changeid"
	"github.com/bartekus/openspec-backlog/internal/classify"
	"github.com/bartekus/openspec-backlog/internal/mddoc"
)

// Well-known files inside a change directory.
const (
	ProposalFile      = "proposal.md"
	TodoFile          = "todo.md"
	RetrospectiveFile = "retrospective.md"
)

// ConfigurationError reports an unusable base directory. It is the only fatal scan error.
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Reason, e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Options tune a Scanner. The zero value is usable.
type Options struct {
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
	// Location is used for calendar dates; defaults to time.Local.
	Location *time.Location
	// IncludeArchive also scans changes/archive/*.
	IncludeArchive bool
	// Classifier defaults to classify.Heuristic.
	Classifier classify.Classifier
	// Logger receives one warning per degraded record; defaults to discarding.
	Logger *slog.Logger
	Filter FilterOptions
}

// ChangeDir is one candidate change directory.
type ChangeDir struct {
	Name     string
	Path     string
	Archived bool
}

// Scanner reads change directories below an OpenSpec tree.
type Scanner struct {
	baseDir string
	opts    Options
}

// New creates a Scanner rooted at baseDir, which is either a repository root
// containing openspec/changes or an openspec directory containing changes.
func New(baseDir string, opts Options) *Scanner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.Heuristic{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Filter.ExcludeDirs == nil {
		opts.Filter.ExcludeDirs = DefaultExcludeDirs()
	}
	return &Scanner{baseDir: baseDir, opts: opts}
}

// Today returns the scan's reference date.
func (s *Scanner) Today() time.Time {
	return backlog.DateOf(s.opts.Now(), s.opts.Location)
}

// ChangesDir resolves the changes directory.
func (s *Scanner) ChangesDir() (string, error) {
	info, err := os.Stat(s.baseDir)
	if err != nil {
		return "", &ConfigurationError{Path: s.baseDir, Reason: "base directory not accessible", Err: err}
	}
	if !info.IsDir() {
		return "", &ConfigurationError{Path: s.baseDir, Reason: "base directory is not a directory"}
	}

	candidates := []string{
		filepath.Join(s.baseDir, "openspec", "changes"),
		filepath.Join(s.baseDir, "changes"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c, nil
		}
	}
	return "", &ConfigurationError{Path: s.baseDir, Reason: "no openspec/changes directory under base directory"}
}

// ChangeDirs lists the change directories, sorted by name, archived ones last.
func (s *Scanner) ChangeDirs(ctx context.Context) ([]ChangeDir, error) {
	changesDir, err := s.ChangesDir()
	if err != nil {
		return nil, err
	}

	names, err := listDirs(changesDir)
	if err != nil {
		return nil, &ConfigurationError{Path: changesDir, Reason: "reading changes directory", Err: err}
	}

	dirs := make([]ChangeDir, 0, len(names))
	for _, name := range FilterNames(names, s.opts.Filter) {
		dirs = append(dirs, ChangeDir{Name: name, Path: filepath.Join(changesDir, name)})
	}

	if !s.opts.IncludeArchive {
		return dirs, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	archiveDir := filepath.Join(changesDir, ArchiveDir)
	archived, err := listDirs(archiveDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dirs, nil
		}
		s.opts.Logger.Warn("skipping unreadable archive", "path", archiveDir, "error", err)
		return dirs, nil
	}
	for _, name := range FilterNames(archived, FilterOptions{IncludeHidden: s.opts.Filter.IncludeHidden}) {
		dirs = append(dirs, ChangeDir{Name: name, Path: filepath.Join(archiveDir, name), Archived: true})
	}
	return dirs, nil
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Scan builds one record per change directory. Problems inside a single change
// degrade that record and are logged; they never fail the scan.
func (s *Scanner) Scan(ctx context.Context) ([]backlog.ChangeRecord, error) {
	dirs, err := s.ChangeDirs(ctx)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	records := make([]backlog.ChangeRecord, 0, len(dirs))
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := s.buildRecord(d, today)
		for _, w := range rec.Warnings {
			s.opts.Logger.Warn("degraded change record", "change", rec.ID, "warning", w)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Scanner) buildRecord(d ChangeDir, today time.Time) backlog.ChangeRecord {
	rec := backlog.ChangeRecord{
		ID:       d.Name,
		Path:     d.Path,
		Archived: d.Archived,
	}

	var (
		sig      classify.Signals
		degraded bool
		fmOwner  string
	)

	parsed := changeid.Parse(d.Name, s.opts.Location)
	rec.Slug = parsed.Slug
	if parsed.DuplicatePrefix {
		rec.Warnings = append(rec.Warnings, backlog.WarnDuplicatePrefix)
	}

	if parsed.HasDate {
		rec.Date, rec.DateSource = parsed.Date, backlog.DateFromPrefix
	} else {
		rec.DateSource = backlog.DateFromMtime
		info, err := os.Stat(d.Path)
		if err != nil {
			degraded = true
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("stat change directory: %v", err))
			rec.Date = today
		} else {
			rec.Date = backlog.DateOf(info.ModTime(), s.opts.Location)
		}
	}

	rec.AgeDays = backlog.CalendarDays(rec.Date, today)
	if rec.AgeDays < 0 {
		rec.Warnings = append(rec.Warnings, backlog.WarnFutureDated)
		rec.AgeDays = 0
	}

	proposal, ok, err := readOptional(filepath.Join(d.Path, ProposalFile))
	switch {
	case err != nil:
		degraded = true
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s: %v", ProposalFile, err))
	case ok:
		sig.HasProposal = true
		doc, perr := mddoc.Parse(proposal)
		if perr != nil {
			degraded = true
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s: %v", ProposalFile, perr))
		}
		title := doc.FirstHeading()
		if title == "" {
			title = doc.Frontmatter.Title
		}
		if title != "" {
			rec.Title = &title
		}
		fmOwner = doc.Frontmatter.Owner
	}

	todo, ok, err := readOptional(filepath.Join(d.Path, TodoFile))
	switch {
	case err != nil:
		degraded = true
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s: %v", TodoFile, err))
	case ok:
		doc, perr := mddoc.Parse(todo)
		if perr != nil {
			degraded = true
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s: %v", TodoFile, perr))
		}
		todoSig := classify.SignalsFromTodo(doc.Tasks())
		todoSig.HasProposal = sig.HasProposal
		sig = todoSig
		if owner := doc.Owner(); owner != "" {
			rec.Owner = &owner
		}
	}
	if rec.Owner == nil && fmOwner != "" {
		rec.Owner = &fmOwner
	}

	if _, err := os.Stat(filepath.Join(d.Path, RetrospectiveFile)); err == nil {
		sig.HasRetrospective = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		degraded = true
		rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s: %v", RetrospectiveFile, err))
	}

	rec.Status = s.opts.Classifier.Classify(sig)
	if degraded || !rec.Status.Valid() {
		rec.Status = backlog.StatusUnknown
	}
	return rec
}

// readOptional reads path, reporting ok=false without error when it does not exist.
func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the scanned tree
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read: %w", err)
	}
	return data, true, nil
}
