package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreErrorUnwrapsToUnderlying(t *testing.T) {
	underlying := stderrors.New("disk full")
	err := NewStoreError("write_directory", underlying)

	require.ErrorIs(t, err, underlying)
	require.Contains(t, err.Error(), "write_directory")
	require.Contains(t, err.Error(), "disk full")
}

func TestAsMatchesConcreteKind(t *testing.T) {
	var err error = NewIoError("open", "/a.txt", stderrors.New("permission denied"))

	var ioErr *IoError
	require.True(t, stderrors.As(err, &ioErr))
	require.Equal(t, "/a.txt", ioErr.Path)

	var storeErr *StoreError
	require.False(t, stderrors.As(err, &storeErr))
}

func TestNotInitializedErrorMessage(t *testing.T) {
	err := NewNotInitializedError("storage.Pool")
	require.Equal(t, "storage.Pool accessed before initialization", err.Error())
}

func TestExtractorErrorUnwraps(t *testing.T) {
	underlying := stderrors.New("missing expected member word/document.xml")
	err := NewExtractorError("docx", "/a.docx", underlying)
	require.ErrorIs(t, err, underlying)
}
