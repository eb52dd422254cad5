package output

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/require"
)

func skipWithoutClipboard(t *testing.T) {
	t.Helper()
	if clipboard.Unsupported {
		t.Skip("no clipboard utility on this host")
	}
}

func TestCommitWritesReply(t *testing.T) {
	skipWithoutClipboard(t)
	var got string
	c := newCommitter(func(s string) error { got = s; return nil }, nil)

	require.NoError(t, c.Commit(context.Background(), "the reply"))
	require.Equal(t, "the reply", got)
}

func TestCommitIgnoresEmptyReply(t *testing.T) {
	called := false
	c := newCommitter(func(string) error { called = true; return nil }, nil)

	require.NoError(t, c.Commit(context.Background(), ""))
	require.False(t, called)
}

func TestCommitWrapsWriteError(t *testing.T) {
	skipWithoutClipboard(t)
	boom := errors.New("xclip exited 1")
	c := newCommitter(func(string) error { return boom }, nil)

	err := c.Commit(context.Background(), "x")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "set clipboard")
}

func TestCommitHonorsContext(t *testing.T) {
	skipWithoutClipboard(t)
	release := make(chan struct{})
	defer close(release)
	c := newCommitter(func(string) error { <-release; return nil }, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Commit(ctx, "x")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
