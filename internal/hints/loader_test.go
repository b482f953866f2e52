package hints

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "customer.json", `{"doctype":"Customer","hints":[{"title":"naming","body":"Names are immutable."}]}`)
	write(t, dir, "broken.json", `{"doctype":"Ticket","hints":[`)

	l := NewLoader(dir, testLogger())
	require.NoError(t, l.Load())

	assert.Len(t, l.ForDocType("Customer"), 1)
	assert.Empty(t, l.ForDocType("Ticket"))
}

func TestLoadIndexesByWorkflow(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "onboarding.json", `{"workflow":"onboarding","hints":[{"title":"order","body":"Create the Customer before the Contact."}]}`)

	l := NewLoader(dir, testLogger())
	require.NoError(t, l.Load())

	hints := l.ForWorkflow("onboarding")
	require.Len(t, hints, 1)
	assert.Equal(t, "order", hints[0].Title)
	assert.Empty(t, l.ForDocType("onboarding"))
}

func TestLoadIgnoresNonJSONAndUntargetedFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "notes.txt", "not a hint file")
	write(t, dir, "untargeted.json", `{"hints":[{"title":"lost","body":"no owner"}]}`)
	write(t, dir, "customer.json", `{"doctype":"Customer","hints":[{"title":"a","body":"b"}]}`)

	l := NewLoader(dir, testLogger())
	require.NoError(t, l.Load())
	assert.Len(t, l.ForDocType("Customer"), 1)
}

func TestLoadMergesFilesForSameDocType(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.json", `{"doctype":"Customer","hints":[{"title":"first","body":"1"}]}`)
	write(t, dir, "b.json", `{"doctype":"Customer","hints":[{"title":"second","body":"2"}]}`)

	l := NewLoader(dir, testLogger())
	require.NoError(t, l.Load())

	hints := l.ForDocType("Customer")
	require.Len(t, hints, 2)
	// Files load in sorted name order.
	assert.Equal(t, "first", hints[0].Title)
	assert.Equal(t, "second", hints[1].Title)
}

func TestReloadReplacesSnapshotAtomically(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "customer.json", `{"doctype":"Customer","hints":[{"title":"old","body":"x"}]}`)

	l := NewLoader(dir, testLogger())
	require.NoError(t, l.Load())
	require.Len(t, l.ForDocType("Customer"), 1)

	require.NoError(t, os.Remove(filepath.Join(dir, "customer.json")))
	write(t, dir, "ticket.json", `{"doctype":"Ticket","hints":[{"title":"new","body":"y"}]}`)
	require.NoError(t, l.Load())

	assert.Empty(t, l.ForDocType("Customer"))
	assert.Len(t, l.ForDocType("Ticket"), 1)
}

func TestEmptyDirIsNoop(t *testing.T) {
	l := NewLoader("", testLogger())
	require.NoError(t, l.Load())
	assert.Empty(t, l.ForDocType("Customer"))
}

func TestMissingDirReturnsError(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"), testLogger())
	assert.Error(t, l.Load())
}
