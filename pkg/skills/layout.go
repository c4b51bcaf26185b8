package skills

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// ErrSourceMissing marks a required source file or directory that is absent
// or unreadable.
var ErrSourceMissing = errors.New("source missing")

// Layout describes where documents live under a root directory. The same
// shape is used for the repository checkout and the installed ~/.claude.
type Layout struct {
	Root         string
	CommandFile  string
	SkillPattern string
}

// CommandsDir returns <root>/commands.
func (l Layout) CommandsDir() string {
	return filepath.Join(l.Root, CommandsSubdir)
}

// SkillsDir returns <root>/skills.
func (l Layout) SkillsDir() string {
	return filepath.Join(l.Root, SkillsSubdir)
}

// CommandPath returns the path of the command definition.
func (l Layout) CommandPath() string {
	return filepath.Join(l.CommandsDir(), l.CommandFile)
}

// Check verifies the layout is usable as a sync source: the command file must
// be a regular file and the skills directory must be a readable directory.
func (l Layout) Check() error {
	info, err := os.Stat(l.CommandPath())
	if err != nil {
		return errors.Wrapf(ErrSourceMissing, "command definition %s: %v", l.CommandPath(), err)
	}
	if !info.Mode().IsRegular() {
		return errors.Wrapf(ErrSourceMissing, "command definition %s is not a regular file", l.CommandPath())
	}

	info, err = os.Stat(l.SkillsDir())
	if err != nil {
		return errors.Wrapf(ErrSourceMissing, "skills directory %s: %v", l.SkillsDir(), err)
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrSourceMissing, "skills directory %s is not a directory", l.SkillsDir())
	}
	if _, err := os.ReadDir(l.SkillsDir()); err != nil {
		return errors.Wrapf(ErrSourceMissing, "skills directory %s is unreadable: %v", l.SkillsDir(), err)
	}
	return nil
}

// SkillFiles returns the sorted names of regular files directly inside the
// skills directory that match SkillPattern. A missing skills directory yields
// an empty list; callers that require it call Check first. See MatchFiles for
// unreadable entries.
func (l Layout) SkillFiles() ([]string, error) {
	return MatchFiles(l.SkillsDir(), l.SkillPattern)
}

// MatchFiles lists regular files in dir whose names match pattern. Symlinks
// are followed; subdirectories and dotfiles are skipped, as a shell glob
// would. An entry that cannot be stat'ed, such as a dangling symlink, is
// reported as ErrSourceMissing; the names that could be read are still
// returned alongside the error.
func MatchFiles(dir, pattern string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to match %q in %s", pattern, dir)
	}

	var (
		names    []string
		firstErr error
	)
	for _, match := range matches {
		if filepath.Base(match) != match || strings.HasPrefix(match, ".") {
			continue
		}
		path := filepath.Join(dir, match)
		info, err := os.Stat(path)
		if err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(ErrSourceMissing, "skill file %s: %v", path, err)
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		names = append(names, match)
	}
	sort.Strings(names)
	return names, firstErr
}

// Documents parses the command definition and every skill file. Unreadable
// documents are returned as errors; parse problems are not fatal and leave
// the optional fields empty.
func (l Layout) Documents() ([]*Document, error) {
	var docs []*Document

	if _, err := os.Stat(l.CommandPath()); err == nil {
		doc, err := ParseFile(l.CommandPath(), KindCommand)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	names, err := l.SkillFiles()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		doc, err := ParseFile(filepath.Join(l.SkillsDir(), name), KindSkill)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
