package migrations

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS(t *testing.T) {
	source, err := iofs.New(FS, ".")
	require.NoError(t, err)
	defer source.Close()

	version, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	up, identifier, err := source.ReadUp(version)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "game_session", identifier)
	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "game_session")

	down, _, err := source.ReadDown(version)
	require.NoError(t, err)
	down.Close()
}
