package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/focusboard/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "project_data"), Options{})
	require.NoError(t, err)
	return s
}

func sampleProject(name string) *models.Project {
	p := models.NewProject(name, "Education", "2025-01-01", time.Date(2024, 9, 1, 10, 0, 0, 0, time.Local))
	p.Todos = append(p.Todos, models.Todo{Task: "Write intro", DateAdded: "2024-09-01"})
	return p
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("Thesis", sampleProject("Thesis")))

	got, err := s.Load("Thesis")
	require.NoError(t, err)
	assert.Equal(t, "Thesis", got.Name)
	assert.Equal(t, "Education", got.Category)
	assert.Equal(t, "2025-01-01", got.DueDate)
	require.Len(t, got.Todos, 1)
	assert.Equal(t, "Write intro", got.Todos[0].Task)
	assert.False(t, got.Todos[0].Completed)
	assert.NotEmpty(t, got.Todos[0].ID)
}

func TestSaveIsEqualAfterNormalization(t *testing.T) {
	s := newTestStore(t)
	p := sampleProject("Round")
	p.AddDocument(models.Document{Title: "Plan", Content: "# Plan", DateCreated: "2024-09-02", Attachment: "attachments/plan.pdf"})

	require.NoError(t, s.Save("Round", p))
	got, err := s.Load("Round")
	require.NoError(t, err)

	// Save backfilled the id on p itself
	assert.Equal(t, p, got)
}

func TestSaveCreatesLayout(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("Layout", sampleProject("Layout")))

	info, err := os.Stat(filepath.Join(s.Root(), "Layout", "attachments"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	raw, err := os.ReadFile(filepath.Join(s.Root(), "Layout", "project_info.json"))
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"name", "category", "created_date", "due_date", "todos", "documents", "archived"} {
		assert.Contains(t, fields, key)
	}
}

func TestLoadDistinguishesMissingFromCorrupt(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	dir := filepath.Join(s.Root(), "broken")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project_info.json"), []byte("{oops"), 0644))

	_, err = s.Load("broken")
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestListSkipsInvalidProjects(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("b-valid", sampleProject("b-valid")))
	require.NoError(t, s.Save("a-valid", sampleProject("a-valid")))

	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "empty-dir"), 0755))
	corrupt := filepath.Join(s.Root(), "corrupt")
	require.NoError(t, os.MkdirAll(corrupt, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(corrupt, "project_info.json"), []byte("nope"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "stray.txt"), []byte("x"), 0644))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a-valid", "b-valid"}, names)
}

func TestListByCategory(t *testing.T) {
	s := newTestStore(t)
	work := sampleProject("Report")
	work.Category = "Work"
	require.NoError(t, s.Save("Report", work))
	require.NoError(t, s.Save("Thesis", sampleProject("Thesis")))

	names, err := s.ListByCategory("Work")
	require.NoError(t, err)
	assert.Equal(t, []string{"Report"}, names)

	names, err = s.ListByCategory("All")
	require.NoError(t, err)
	assert.Equal(t, []string{"Report", "Thesis"}, names)
}

func TestArchive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("Old", sampleProject("Old")))

	require.NoError(t, s.Archive("Old"))

	names, err := s.List()
	require.NoError(t, err)
	assert.NotContains(t, names, "Old")

	_, err = s.Load("Old")
	assert.ErrorIs(t, err, ErrNotFound)

	archived, err := s.ListArchived()
	require.NoError(t, err)
	assert.Equal(t, []string{"Old"}, archived)
	assert.FileExists(t, filepath.Join(s.Root(), "archived", "Old", "project_info.json"))
}

func TestArchiveCollision(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("Dup", sampleProject("Dup")))
	require.NoError(t, s.Archive("Dup"))
	require.NoError(t, s.Save("Dup", sampleProject("Dup")))

	assert.ErrorIs(t, s.Archive("Dup"), ErrAlreadyArchived)

	// the active copy is untouched
	_, err := s.Load("Dup")
	assert.NoError(t, err)
}

func TestArchiveMissing(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Archive("nothing"), ErrNotFound)
}

func TestDeleteRemovesAttachments(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("Gone", sampleProject("Gone")))
	ref, err := s.SaveAttachment("Gone", "notes.txt", []byte("hello"))
	require.NoError(t, err)
	path := s.AttachmentPath("Gone", ref)
	require.FileExists(t, path)

	require.NoError(t, s.Delete("Gone"))

	assert.NoFileExists(t, path)
	_, err = s.Load("Gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("Gone"), ErrNotFound)
}

func TestDeleteReadOnlyTree(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("Locked", sampleProject("Locked")))
	_, err := s.SaveAttachment("Locked", "scan.png", []byte{1, 2, 3})
	require.NoError(t, err)

	att := filepath.Join(s.Root(), "Locked", "attachments")
	require.NoError(t, os.Chmod(filepath.Join(att, "scan.png"), 0444))
	require.NoError(t, os.Chmod(att, 0555))

	require.NoError(t, s.Delete("Locked"))
	assert.NoDirExists(t, filepath.Join(s.Root(), "Locked"))
}

func TestDeletePartialFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	s := newTestStore(t)
	require.NoError(t, s.Save("Stuck", sampleProject("Stuck")))
	_, err := s.SaveAttachment("Stuck", "scan.png", []byte{1, 2, 3})
	require.NoError(t, err)

	// the project directory itself cannot be unlinked from a read-only root
	require.NoError(t, os.Chmod(s.Root(), 0555))
	t.Cleanup(func() { os.Chmod(s.Root(), 0755) })

	err = s.Delete("Stuck")
	assert.ErrorIs(t, err, ErrPartialDelete)

	// what could be removed stays removed
	dir := filepath.Join(s.Root(), "Stuck")
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, "project_info.json"))
	assert.NoDirExists(t, filepath.Join(dir, "attachments"))
}

func TestSaveAttachment(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("Docs", sampleProject("Docs")))

	ref, err := s.SaveAttachment("Docs", "/home/me/Downloads/Report.PDF", []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, "attachments/Report.PDF", ref)

	// same name overwrites
	_, err = s.SaveAttachment("Docs", "Report.PDF", []byte("v2"))
	require.NoError(t, err)
	data, err := s.ReadAttachment("Docs", ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	_, err = s.SaveAttachment("Docs", "run.exe", []byte("x"))
	assert.ErrorIs(t, err, ErrAttachmentType)
}

func TestReadAttachmentLegacyReference(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("Legacy", sampleProject("Legacy")))
	_, err := s.SaveAttachment("Legacy", "old.txt", []byte("kept"))
	require.NoError(t, err)

	data, err := s.ReadAttachment("Legacy", "project_data/Legacy/attachments/old.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), data)
}

func TestInvalidNames(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", "  ", "archived", "..", ".", "a/b", `a\b`} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(name, sampleProject(name)), ErrInvalidName)
			_, err := s.Load(name)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}
