package cryptox

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetPepperState clears the cached pepper so each test exercises a fresh
// load. The pepper is process-global, so these tests must not run in
// parallel with anything that hashes.
func resetPepperState(t *testing.T, path string) {
	t.Helper()
	pepperMu.Lock()
	pepper, pepperFile = "", path
	pepperMu.Unlock()
	t.Cleanup(func() {
		pepperMu.Lock()
		pepper, pepperFile = "", ""
		pepperMu.Unlock()
	})
}

// Hashing must work in a process that never configures a pepper path, the
// way test binaries come up.
func TestHashPasswordWithoutPepperPath(t *testing.T) {
	resetPepperState(t, "")

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
}

func TestPepperPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")

	resetPepperState(t, path)
	require.NoError(t, LoadPepper())
	first := GetPepper()
	require.NotEmpty(t, first)

	resetPepperState(t, path)
	require.NoError(t, LoadPepper())
	require.Equal(t, first, GetPepper())
}

func TestLoadPepperRejectsUnreadablePath(t *testing.T) {
	// A directory cannot be read as a pepper file.
	resetPepperState(t, t.TempDir())

	require.Error(t, LoadPepper())

	// The lazy path must still come up with a usable pepper.
	require.NotEmpty(t, GetPepper())
}
