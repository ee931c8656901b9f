package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRollsAtLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := NewRotatingFileWriter(path, 10, 2)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("aaaaaaaa\n")) // 9 bytes
	require.NoError(t, err)
	_, err = w.Write([]byte("bbbbbbbb\n")) // would exceed the limit
	require.NoError(t, err)

	live, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbbb\n", string(live))

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaa\n", string(backup))
}

func TestWriterKeepsLimitedBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := NewRotatingFileWriter(path, 4, 1)
	require.NoError(t, err)
	defer w.Close()

	for _, chunk := range []string{"1111\n", "2222\n", "3333\n"} {
		_, err := w.Write([]byte(chunk))
		require.NoError(t, err)
	}

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "2222\n", string(backup))

	_, err = os.Stat(path + ".2")
	assert.True(t, os.IsNotExist(err))
}

func TestWriterOversizedEntryStillWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := NewRotatingFileWriter(path, 4, 1)
	require.NoError(t, err)
	defer w.Close()

	n, err := w.Write([]byte("this line is larger than the limit\n"))
	require.NoError(t, err)
	assert.Equal(t, 35, n)
}

func TestWriterRejectsWritesAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := NewRotatingFileWriter(path, 1024, 1)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestWriterValidatesConfig(t *testing.T) {
	_, err := NewRotatingFileWriter("", 1024, 1)
	assert.Error(t, err)

	_, err = NewRotatingFileWriter(filepath.Join(t.TempDir(), "app.log"), 0, 1)
	assert.Error(t, err)
}
