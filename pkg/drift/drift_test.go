package drift

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/skillsync/pkg/skills"
	"github.com/jingkaihe/skillsync/pkg/synchronizer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commandFile = "initialize-project.md"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setup(t *testing.T, opts ...synchronizer.Option) (src, dest string, s *synchronizer.Synchronizer) {
	t.Helper()
	src = t.TempDir()
	dest = t.TempDir()

	writeFile(t, filepath.Join(src, "commands", commandFile), "# Init\n")
	writeFile(t, filepath.Join(src, "skills", "base.md"), "# Base v2\n")
	writeFile(t, filepath.Join(src, "skills", "python.md"), "# Python\n")
	writeFile(t, filepath.Join(src, "skills", "go.md"), "# Go\n")

	writeFile(t, filepath.Join(dest, "commands", commandFile), "# Init\n")
	writeFile(t, filepath.Join(dest, "skills", "base.md"), "# Base v1\n")
	writeFile(t, filepath.Join(dest, "skills", "python.md"), "# Python\n")
	writeFile(t, filepath.Join(dest, "skills", "old-name.md"), "# Old\n")

	layout := skills.Layout{Root: src, CommandFile: commandFile, SkillPattern: "*.md"}
	s, err := synchronizer.New(layout, dest, opts...)
	require.NoError(t, err)
	return src, dest, s
}

func states(r *Report) map[string]State {
	out := map[string]State{}
	for _, e := range r.Entries {
		out[e.File] = e.State
	}
	return out
}

func TestInspect(t *testing.T) {
	_, dest, s := setup(t)

	report, err := Inspect(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, map[string]State{
		commandFile:   StateInSync,
		"base.md":     StateModified,
		"go.md":       StateMissing,
		"python.md":   StateInSync,
		"old-name.md": StateStale,
	}, states(report))

	assert.Equal(t, skills.KindCommand, report.Entries[0].Kind)
	assert.False(t, report.Clean())
	assert.Equal(t, 1, report.Count(StateModified))
	assert.Equal(t, 1, report.Count(StateStale))

	for _, e := range report.Entries {
		assert.Empty(t, e.Diff, "diffs are opt-in")
		if e.State == StateStale {
			assert.Empty(t, e.Source)
			assert.Equal(t, filepath.Join(dest, "skills", "old-name.md"), e.Dest)
		}
	}
}

func TestInspectWithDiff(t *testing.T) {
	_, _, s := setup(t)

	report, err := Inspect(context.Background(), s, WithDiff(true))
	require.NoError(t, err)

	var base *Entry
	for i := range report.Entries {
		if report.Entries[i].File == "base.md" {
			base = &report.Entries[i]
		}
	}
	require.NotNil(t, base)
	assert.Contains(t, base.Diff, "--- installed/base.md")
	assert.Contains(t, base.Diff, "+++ source/base.md")
	assert.Contains(t, base.Diff, "-# Base v1")
	assert.Contains(t, base.Diff, "+# Base v2")
}

func TestInspectCleanAfterSync(t *testing.T) {
	_, _, s := setup(t)

	_, err := s.Sync(context.Background())
	require.NoError(t, err)

	report, err := Inspect(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Count(StateModified))
	assert.Equal(t, 0, report.Count(StateMissing))
	assert.Equal(t, 1, report.Count(StateStale), "sync never removes stale files")
}

func TestInspectHonoursExclude(t *testing.T) {
	_, _, s := setup(t, synchronizer.WithExclude("go.md", "old-*"))

	report, err := Inspect(context.Background(), s)
	require.NoError(t, err)

	got := states(report)
	assert.NotContains(t, got, "go.md")
	assert.NotContains(t, got, "old-name.md")
}

func TestInspectAggregatesReadErrors(t *testing.T) {
	_, dest, s := setup(t)
	require.NoError(t, os.Remove(filepath.Join(dest, "skills", "python.md")))
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "skills", "python.md"), 0o755))

	report, err := Inspect(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "python.md")

	require.NotNil(t, report)
	got := states(report)
	assert.Equal(t, StateModified, got["base.md"], "other files are still reported")
	assert.NotContains(t, got, "python.md")
}

func TestInspectSourceMissing(t *testing.T) {
	s, err := synchronizer.New(skills.Layout{Root: t.TempDir(), CommandFile: commandFile, SkillPattern: "*.md"}, t.TempDir())
	require.NoError(t, err)

	_, err = Inspect(context.Background(), s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, synchronizer.ErrSourceMissing))
}
