package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizeRejectsRelativePaths(t *testing.T) {
	_, err := Canonicalize("relative/path")
	require.Error(t, err)
}

func TestCanonicalizeRejectsInvalidUTF8(t *testing.T) {
	_, err := Canonicalize("/a/\xff\xfe")
	require.Error(t, err)
}

func TestCanonicalizeCleansPath(t *testing.T) {
	got, err := Canonicalize(filepath.Join("/a", "b", "..", "c"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/a", "c"), got)
}

func TestIsImmediateChildTrue(t *testing.T) {
	require.True(t, IsImmediateChild(filepath.Join("/a"), filepath.Join("/a", "b")))
}

func TestIsImmediateChildFalseForGrandchild(t *testing.T) {
	require.False(t, IsImmediateChild(filepath.Join("/a"), filepath.Join("/a", "b", "c")))
}

func TestIsImmediateChildFalseForPrefixCollision(t *testing.T) {
	// "/a/bc" must not be treated as a child of "/a/b".
	require.False(t, IsImmediateChild(filepath.Join("/a", "b"), filepath.Join("/a", "bc")))
}
