// Package synchronizer installs a repository's command definition and skill
// documents into a Claude configuration directory.
//
// A sync is a full overwrite, not a merge: every source file replaces the
// destination file of the same name, and destination files that have no
// source counterpart are left untouched. The first error aborts the run and
// files already written stay in place, so re-running is always safe.
package synchronizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/jingkaihe/skillsync/pkg/logger"
	"github.com/jingkaihe/skillsync/pkg/skills"
	"github.com/pkg/errors"
)

var (
	// ErrSourceMissing marks an absent or unreadable source file or directory.
	ErrSourceMissing = skills.ErrSourceMissing
	// ErrDestinationWrite marks a failure creating or writing the destination.
	ErrDestinationWrite = errors.New("destination write failed")
)

// OpError records the failed operation, the path involved and the error kind
// (ErrSourceMissing or ErrDestinationWrite). errors.Is matches both the kind
// and the underlying cause.
type OpError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Synchronizer copies documents from a source layout to a destination root
type Synchronizer struct {
	source  skills.Layout
	dest    skills.Layout
	exclude []glob.Glob
	dryRun  bool
}

// Option configures a Synchronizer
type Option func(*Synchronizer) error

// WithExclude skips skill files whose names match any of the glob patterns.
func WithExclude(patterns ...string) Option {
	return func(s *Synchronizer) error {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return errors.Wrapf(err, "invalid exclude pattern %q", p)
			}
			s.exclude = append(s.exclude, g)
		}
		return nil
	}
}

// WithDryRun plans the sync without touching the destination.
func WithDryRun(dryRun bool) Option {
	return func(s *Synchronizer) error {
		s.dryRun = dryRun
		return nil
	}
}

// New creates a Synchronizer installing source into destRoot, which uses the
// same commands/ and skills/ shape as the source.
func New(source skills.Layout, destRoot string, opts ...Option) (*Synchronizer, error) {
	s := &Synchronizer{
		source: source,
		dest: skills.Layout{
			Root:         destRoot,
			CommandFile:  source.CommandFile,
			SkillPattern: source.SkillPattern,
		},
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Source returns the source layout.
func (s *Synchronizer) Source() skills.Layout { return s.source }

// Dest returns the destination layout.
func (s *Synchronizer) Dest() skills.Layout { return s.dest }

// Result describes a completed sync
type Result struct {
	CommandFile string
	// Copied lists skill files written in this run, in copy order.
	Copied []string
	// Excluded lists source skill files skipped by exclude patterns.
	Excluded []string
	// Installed lists every skill file present in the destination after the
	// run, including files that no longer exist in the source.
	Installed []string
	DryRun    bool
}

// Sync performs one full synchronization.
func (s *Synchronizer) Sync(ctx context.Context) (*Result, error) {
	log := logger.G(ctx).WithFields(map[string]interface{}{
		"source":  s.source.Root,
		"dest":    s.dest.Root,
		"dry_run": s.dryRun,
	})

	if err := s.source.Check(); err != nil {
		return nil, err
	}

	names, err := s.source.SkillFiles()
	if err != nil {
		return nil, &OpError{Op: "list", Path: s.source.SkillsDir(), Kind: ErrSourceMissing, Err: err}
	}

	result := &Result{
		CommandFile: s.source.CommandFile,
		DryRun:      s.dryRun,
	}

	var toCopy []string
	for _, name := range names {
		if s.Excluded(name) {
			result.Excluded = append(result.Excluded, name)
			continue
		}
		toCopy = append(toCopy, name)
	}

	if s.dryRun {
		result.Copied = toCopy
		installed, err := skills.MatchFiles(s.dest.SkillsDir(), s.dest.SkillPattern)
		if err != nil {
			log.WithError(err).Warn("failed to list every installed skill")
		}
		result.Installed = union(installed, toCopy)
		log.WithField("skills", len(toCopy)).Debug("dry run planned")
		return result, nil
	}

	for _, dir := range []string{s.dest.CommandsDir(), s.dest.SkillsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &OpError{Op: "mkdir", Path: dir, Kind: ErrDestinationWrite, Err: err}
		}
	}

	if err := copyFile(s.source.CommandPath(), s.dest.CommandPath()); err != nil {
		return nil, err
	}
	log.WithField("file", s.source.CommandFile).Debug("copied command definition")

	for _, name := range toCopy {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "sync interrupted")
		}
		src := filepath.Join(s.source.SkillsDir(), name)
		dst := filepath.Join(s.dest.SkillsDir(), name)
		if err := copyFile(src, dst); err != nil {
			return result, err
		}
		result.Copied = append(result.Copied, name)
		log.WithField("file", name).Debug("copied skill")
	}

	// Unreadable installed entries are logged, not fatal.
	result.Installed, err = skills.MatchFiles(s.dest.SkillsDir(), s.dest.SkillPattern)
	if err != nil {
		log.WithError(err).Warn("failed to list every installed skill")
	}

	log.WithFields(map[string]interface{}{
		"copied":    len(result.Copied),
		"installed": len(result.Installed),
	}).Debug("sync complete")

	return result, nil
}

// Excluded reports whether a skill file name matches an exclude pattern.
func (s *Synchronizer) Excluded(name string) bool {
	for _, g := range s.exclude {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// copyFile replaces dst with the bytes of src. Read failures are source
// errors, write failures are destination errors.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return &OpError{Op: "stat", Path: src, Kind: ErrSourceMissing, Err: err}
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return &OpError{Op: "read", Path: src, Kind: ErrSourceMissing, Err: err}
	}
	if err := writeFile(dst, data, info.Mode().Perm()); err != nil {
		return &OpError{Op: "write", Path: dst, Kind: ErrDestinationWrite, Err: err}
	}
	return nil
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}
