package backend

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

func TestWatcher_SendsOnItemsFileWrite(t *testing.T) {
	dir := t.TempDir()
	items := filepath.Join(dir, "items.json")
	msgs := make(chanSender, 16)

	w, err := NewWatcher(items, msgs)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(items, []byte(`{"items":[]}`), 0o644))

	select {
	case msg := <-msgs:
		assert.Equal(t, WatchMsg{Path: items}, msg)
	case <-time.After(5 * time.Second):
		t.Fatal("no WatchMsg for items file")
	}
}

func TestWatcher_CreatesMissingDirectory(t *testing.T) {
	items := filepath.Join(t.TempDir(), "db", "items.json")

	w, err := NewWatcher(items, make(chanSender, 1))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	info, err := os.Stat(filepath.Dir(items))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
