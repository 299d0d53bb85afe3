package report_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialseed/internal/bootstrap"
	"github.com/dropDatabas3/socialseed/internal/domain/types"
	"github.com/dropDatabas3/socialseed/internal/report"
)

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "seed_report.yaml")
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	in := &report.Report{
		RunID:     "5f0c0f3e-0000-4000-8000-000000000001",
		Generated: at,
		Driver:    "mongo",
		DSN:       "mongodb://localhost:27017",
		Messages: &bootstrap.MessagesResult{
			Database:   "messages_db",
			Collection: "messages",
			Index:      types.IndexSpec{Field: "recipient", Order: types.Ascending},
			Seeded:     true,
			Inserted:   3,
			StartedAt:  at,
			FinishedAt: at.Add(time.Second),
		},
	}
	require.NoError(t, report.Write(path, in))

	out, err := report.Read(path)
	require.NoError(t, err)
	assert.Equal(t, in.RunID, out.RunID)
	assert.True(t, in.Generated.Equal(out.Generated))
	require.NotNil(t, out.Messages)
	assert.Equal(t, 3, out.Messages.Inserted)
	assert.Equal(t, types.Ascending, out.Messages.Index.Order)
	assert.Nil(t, out.Admin)

	// overwrite sin dejar temporales
	in.Messages.Inserted = 0
	in.Messages.Skipped = bootstrap.SkipNotEmpty
	require.NoError(t, report.Write(path, in))
	out, err = report.Read(path)
	require.NoError(t, err)
	assert.Equal(t, bootstrap.SkipNotEmpty, out.Messages.Skipped)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRead_Missing(t *testing.T) {
	_, err := report.Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
