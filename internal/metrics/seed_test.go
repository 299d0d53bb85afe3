package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestSeedRuns_Counts(t *testing.T) {
	before := testutil.ToFloat64(SeedRuns.WithLabelValues("test", OutcomeSkipped))
	SeedRuns.WithLabelValues("test", OutcomeSkipped).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SeedRuns.WithLabelValues("test", OutcomeSkipped)))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	SeedDocumentsInserted.WithLabelValues("textfile").Add(3)

	path := filepath.Join(t.TempDir(), "seed.prom")
	require.NoError(t, WriteTextfile(path, reg))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `seed_documents_inserted_total{target="textfile"}`))
}

func TestWriteTextfile_BadDir(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "seed.prom"), prometheus.NewRegistry())
	assert.Error(t, err)
}
