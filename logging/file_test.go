package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/s3browser/logging"
)

func TestDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)
	f := logging.NewDailyFile(dir, func() time.Time { return now })

	_, err := f.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = f.Write([]byte("second\n"))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = f.Write([]byte("next day\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	day1, err := os.ReadFile(filepath.Join(dir, "2024-01-02.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(day1))

	day2, err := os.ReadFile(filepath.Join(dir, "2024-01-03.log"))
	require.NoError(t, err)
	assert.Equal(t, "next day\n", string(day2))
}

func TestDailyFile_Appends(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	clock := func() time.Time { return now }

	first := logging.NewDailyFile(dir, clock)
	_, err := first.Write([]byte("run 1\n"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := logging.NewDailyFile(dir, clock)
	_, err = second.Write([]byte("run 2\n"))
	require.NoError(t, err)
	require.NoError(t, second.Close())

	data, err := os.ReadFile(second.Path(now))
	require.NoError(t, err)
	assert.Equal(t, "run 1\nrun 2\n", string(data))
}

func TestDailyFile_CloseIdempotent(t *testing.T) {
	f := logging.NewDailyFile(t.TempDir(), nil)
	assert.NoError(t, f.Close())

	_, err := f.Write([]byte("x"))
	require.NoError(t, err)
	assert.NoError(t, f.Close())
	assert.NoError(t, f.Close())
}
