package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSummaryOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.txt"),
		[]byte("  Alice is a software engineer based in Oslo.\n"), 0o644))

	p, err := Load(dir, "Alice Example")
	require.NoError(t, err)
	assert.Equal(t, "Alice Example", p.Name)
	assert.Equal(t, "Alice is a software engineer based in Oslo.", p.Summary)
	assert.Empty(t, p.LinkedIn)
}

func TestLoadMissingSummary(t *testing.T) {
	_, err := Load(t.TempDir(), "Alice Example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile summary")
}

func TestTextConcatenation(t *testing.T) {
	p := &Profile{Summary: "summary part"}
	assert.Equal(t, "summary part", p.Text())

	p.LinkedIn = "linkedin part"
	assert.Equal(t, "summary part\n\nlinkedin part", p.Text())
}
