package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `time,symbol,open,high,low,close,volume
2024-03-01T00:00:00Z,EURUSD,1.0980,1.1020,1.0960,1.1000,1500
2024-03-02T00:00:00Z,EURUSD,1.1000,1.1050,1.0990,1.1040,1200
`)

	bars, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "EURUSD", bars[0].Symbol)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, 1.0980, bars[0].Open)
	assert.Equal(t, 1.1020, bars[0].High)
	assert.Equal(t, 1.0960, bars[0].Low)
	assert.Equal(t, 1.1000, bars[0].Close)
	assert.Equal(t, 1500.0, bars[0].Volume)
}

func TestLoadCSVNoHeaderAndNoVolume(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, "2024-03-01T00:00:00Z,EURUSD,1.0,1.2,0.9,1.1\n")

	bars, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Zero(t, bars[0].Volume)
}

func TestLoadCSVSkipsShortRows(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `time,symbol,open,high,low,close,volume
2024-03-01T00:00:00Z,EURUSD
2024-03-02T00:00:00Z,EURUSD,1.0,1.2,0.9,1.1,10
`)

	bars, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestLoadCSVBadPrice(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, "2024-03-01T00:00:00Z,EURUSD,xx,1.2,0.9,1.1,10\n")

	_, err := LoadCSV(path)
	assert.Error(t, err)
}

func TestLoadCSVMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
