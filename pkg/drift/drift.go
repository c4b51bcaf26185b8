// Package drift compares an installed configuration directory with its
// source checkout without writing anything. It makes visible what a sync
// would change and which installed files a sync would never remove.
package drift

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skillsync/pkg/logger"
	"github.com/jingkaihe/skillsync/pkg/skills"
	"github.com/jingkaihe/skillsync/pkg/synchronizer"
	"github.com/pkg/errors"
)

// State is the comparison outcome for one file
type State string

// File states
const (
	StateInSync   State = "in-sync"
	StateModified State = "modified"
	StateMissing  State = "missing"
	StateStale    State = "stale"
)

// Entry is one compared file
type Entry struct {
	Kind   skills.Kind `yaml:"kind"`
	File   string      `yaml:"file"`
	State  State       `yaml:"state"`
	Source string      `yaml:"source,omitempty"`
	Dest   string      `yaml:"dest"`
	Diff   string      `yaml:"diff,omitempty"` // Unified diff from installed to source, when requested
}

// Report lists every compared file, command definition first
type Report struct {
	Entries []Entry
}

// Clean reports whether every entry is in sync.
func (r *Report) Clean() bool {
	for _, e := range r.Entries {
		if e.State != StateInSync {
			return false
		}
	}
	return true
}

// Count returns the number of entries in the given state.
func (r *Report) Count(state State) int {
	n := 0
	for _, e := range r.Entries {
		if e.State == state {
			n++
		}
	}
	return n
}

type inspectOptions struct {
	diff bool
}

// Option configures Inspect
type Option func(*inspectOptions)

// WithDiff attaches unified diffs to modified entries.
func WithDiff(diff bool) Option {
	return func(o *inspectOptions) {
		o.diff = diff
	}
}

// Inspect compares the synchronizer's source and destination. Excluded skill
// files are ignored on both sides. Per-file read errors are aggregated and
// returned alongside a report covering every other file; an invalid source
// layout is returned on its own.
func Inspect(ctx context.Context, s *synchronizer.Synchronizer, opts ...Option) (*Report, error) {
	o := &inspectOptions{}
	for _, opt := range opts {
		opt(o)
	}

	src, dest := s.Source(), s.Dest()
	if err := src.Check(); err != nil {
		return nil, err
	}

	report := &Report{}
	var result *multierror.Error

	entry, err := compare(skills.KindCommand, src.CommandFile, src.CommandPath(), dest.CommandPath(), o.diff)
	if err != nil {
		result = multierror.Append(result, err)
	} else {
		report.Entries = append(report.Entries, entry)
	}

	names, err := src.SkillFiles()
	if err != nil {
		return nil, err
	}
	inSource := make(map[string]bool, len(names))
	for _, name := range names {
		inSource[name] = true
		if s.Excluded(name) {
			continue
		}
		entry, err := compare(skills.KindSkill, name,
			filepath.Join(src.SkillsDir(), name), filepath.Join(dest.SkillsDir(), name), o.diff)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		report.Entries = append(report.Entries, entry)
	}

	installed, err := dest.SkillFiles()
	if err != nil {
		result = multierror.Append(result, err)
	}
	for _, name := range installed {
		if inSource[name] || s.Excluded(name) {
			continue
		}
		report.Entries = append(report.Entries, Entry{
			Kind:  skills.KindSkill,
			File:  name,
			State: StateStale,
			Dest:  filepath.Join(dest.SkillsDir(), name),
		})
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"entries":  len(report.Entries),
		"modified": report.Count(StateModified),
		"missing":  report.Count(StateMissing),
		"stale":    report.Count(StateStale),
	}).Debug("drift inspected")

	return report, result.ErrorOrNil()
}

func compare(kind skills.Kind, file, srcPath, destPath string, withDiff bool) (Entry, error) {
	entry := Entry{Kind: kind, File: file, Source: srcPath, Dest: destPath}

	srcData, err := os.ReadFile(srcPath)
	if err != nil {
		return entry, errors.Wrapf(err, "failed to read source %s", srcPath)
	}

	destData, err := os.ReadFile(destPath)
	if errors.Is(err, fs.ErrNotExist) {
		entry.State = StateMissing
		return entry, nil
	}
	if err != nil {
		return entry, errors.Wrapf(err, "failed to read installed %s", destPath)
	}

	if bytes.Equal(srcData, destData) {
		entry.State = StateInSync
		return entry, nil
	}

	entry.State = StateModified
	if withDiff {
		entry.Diff = udiff.Unified("installed/"+file, "source/"+file, string(destData), string(srcData))
	}
	return entry, nil
}
