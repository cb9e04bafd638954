package kiosk

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiosk", "state.json")
	store := NewFileStore(path)

	id, err := store.DeviceID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	record := PairingRecord{ScreenID: "A", DeviceID: id, AuthorizedAt: time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)}
	require.NoError(t, store.SavePairing(record))

	reopened := NewFileStore(path)
	again, err := reopened.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err := reopened.Pairing("A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record.DeviceID, got.DeviceID)
	assert.True(t, record.AuthorizedAt.Equal(got.AuthorizedAt))

	require.NoError(t, reopened.ClearPairing("A"))
	got, err = store.Pairing("A")
	require.NoError(t, err)
	assert.Nil(t, got)

	missing, err := store.Pairing("B")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
