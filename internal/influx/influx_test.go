package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factionboard/missionstore/pkg/core"
)

func TestConnect_DisabledReturnsError(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", false)

	m := NewManager(zerolog.Nop(), filepath.Join(t.TempDir(), "backup.gz"))
	assert.Error(t, m.Connect())
}

// With no server listening, points must land in the gzip backup file.
func TestRecordOperation_FallsBackToBackupFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", true)
	viper.Set("influx.protocol", "http")
	viper.Set("influx.host", "127.0.0.1")
	viper.Set("influx.port", "9")
	viper.Set("influx.org", "factionboard")

	backupPath := filepath.Join(t.TempDir(), "backup.gz")
	m := NewManager(zerolog.Nop(), backupPath)
	require.NoError(t, m.Connect())
	require.False(t, m.IsValid)

	mission := core.NewMission("🜁 Gilded Compass", "Recover the Moonshard", "", "", "", time.Now().UTC())
	mission.Status = core.StatusAccepted
	require.NoError(t, m.RecordOperation(context.Background(), "update", mission))

	doc := core.EmptyDocument()
	doc.Append(mission)
	require.NoError(t, m.RecordSnapshot(context.Background(), doc))

	require.NoError(t, m.Close())

	f, err := os.Open(backupPath)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "mission_ops")
	assert.Contains(t, text, "op=update")
	assert.Contains(t, text, "status=Accepted")
	assert.Contains(t, text, "board ")
	assert.Contains(t, text, "missions=1i")
}
