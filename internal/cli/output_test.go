package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/user/atmos-energy/internal/adapter/atmos"
	"github.com/user/atmos-energy/internal/adapter/atmos/portaltest"
	"github.com/user/atmos-energy/internal/config"
	"github.com/user/atmos-energy/internal/usage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var sampleReadings = []usage.Reading{
	{Timestamp: time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC).Unix(), Value: 2.5},
	{Timestamp: time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC).Unix(), Value: 3},
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "usage.csv")
	require.NoError(t, WriteOutput(path, sampleReadings))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"timestamp", "value"},
		{formatTimestamp(sampleReadings[0].Timestamp), "2.5"},
		{formatTimestamp(sampleReadings[1].Timestamp), "3"},
	}, records)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.XLSX")
	require.NoError(t, WriteOutput(path, sampleReadings))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("usage")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Timestamp", "Value"}, rows[0])
	require.Equal(t, formatTimestamp(sampleReadings[0].Timestamp), rows[1][0])
	require.Equal(t, "2.5", rows[1][1])
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, sampleReadings))

	out := buf.String()
	require.Contains(t, out, "TIMESTAMP")
	require.Contains(t, out, formatTimestamp(sampleReadings[1].Timestamp))
	require.Contains(t, out, "2 readings")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, sampleReadings))

	var got []usage.Reading
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, sampleReadings, got)
}

func TestWriteXLSX_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	require.Error(t, WriteXLSX(filepath.Join(blocker, "usage.xlsx"), sampleReadings))
}

func TestFormatTimestamp(t *testing.T) {
	ts := sampleReadings[0].Timestamp
	require.Equal(t, time.Unix(ts, 0).Local().Format("2006-01-02T15:04:05"), formatTimestamp(ts))
}

func TestRetrieve(t *testing.T) {
	portal := portaltest.New(t)
	portal.DefaultWorkbook = portaltest.MustWorkbook(t, portaltest.DailyRows(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), 4, 1.5))

	cfg := config.DefaultConfig()
	cfg.Username = portal.Username
	cfg.Password = portal.Password
	cfg.Settings.BaseURL = portal.URL

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	clock := atmos.WithClock(func() time.Time { return time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC) })

	t.Run("single period", func(t *testing.T) {
		readings, err := retrieve(cmd, cfg, newClient(cfg, zap.NewNop(), clock))
		require.NoError(t, err)
		require.Len(t, readings, 4)
		require.Equal(t, []string{"Current"}, portal.Downloads())
	})

	t.Run("history", func(t *testing.T) {
		history := *cfg
		history.Months = 2
		_, err := retrieve(cmd, &history, newClient(&history, zap.NewNop(), clock))
		require.NoError(t, err)
		require.Equal(t, []string{"Current", "Current", "November,2025"}, portal.Downloads())
		require.Equal(t, 2, portal.Logouts())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		bad := *cfg
		bad.Password = "nope"
		_, err := retrieve(cmd, &bad, newClient(&bad, zap.NewNop(), clock))
		require.ErrorIs(t, err, atmos.ErrAuthentication)
		require.ErrorIs(t, err, atmos.ErrCredentialsRejected)
	})
}
