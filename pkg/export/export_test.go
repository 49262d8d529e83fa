package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmonthly/pkg/report"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	e, err := NewExporter(t.TempDir())
	require.NoError(t, err)
	return e
}

func TestWriteCSV(t *testing.T) {
	e := newTestExporter(t)

	rows := []report.PostCountRow{
		report.NewRow("alice", 2, 2024, time.February, []string{
			"https://www.instagram.com/p/abc/",
			"https://www.instagram.com/p/def/",
		}),
		report.NotFoundRow("ghost"),
	}

	path, err := e.WriteCSV(rows)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`instagram_results_\d{8}_\d{6}\.csv$`), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Instagram ID", "Post Count", "Year", "Month", "Links"}, records[0])
	assert.Equal(t, []string{
		"alice", "2", "2024", "February",
		"https://www.instagram.com/p/abc/ | https://www.instagram.com/p/def/",
	}, records[1])
	assert.Equal(t, []string{"ghost", "0", "-", "-", "User not found"}, records[2])
}

func TestWriteCSVEmptyRows(t *testing.T) {
	e := newTestExporter(t)

	path, err := e.WriteCSV(nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Instagram ID,Post Count,Year,Month,Links\n", string(data))
}

func TestWriteCSVLeavesNoTempFile(t *testing.T) {
	e := newTestExporter(t)

	_, err := e.WriteCSV([]report.PostCountRow{report.ErrorRow("x")})
	require.NoError(t, err)

	leftovers, err := filepath.Glob(filepath.Join(e.Dir(), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFilterRunLog(t *testing.T) {
	e := newTestExporter(t)

	logPath := filepath.Join(t.TempDir(), "app.log")
	lines := []string{
		`{"level":"info","message":"Completed alice | February 2024 | Posts: 3 | Time: 1.20 sec"}`,
		`{"level":"debug","message":"request finished"}`,
		`{"level":"error","message":"Error: User ghost not found."}`,
		`{"level":"info","message":"Session store"}`,
		`{"level":"info","message":"Completed processing for alice."}`,
	}
	require.NoError(t, os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	path, err := e.FilterRunLog(logPath)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`processed_logs_\d{8}_\d{6}\.log$`), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, []string{lines[0], lines[2], lines[4]}, got)
}

func TestFilterRunLogMissingSource(t *testing.T) {
	e := newTestExporter(t)

	_, err := e.FilterRunLog(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}

func TestDownloadReadsAndDeletes(t *testing.T) {
	e := newTestExporter(t)

	path := filepath.Join(e.Dir(), "instagram_results_20240201_120000.csv")
	require.NoError(t, os.WriteFile(path, []byte("header\nrow\n"), 0644))

	name, data, err := e.Download(path)
	require.NoError(t, err)
	assert.Equal(t, "instagram_results_20240201_120000.csv", name)
	assert.Equal(t, "header\nrow\n", string(data))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "artifact must be deleted after download")
}

func TestDownloadMissingFile(t *testing.T) {
	e := newTestExporter(t)

	_, _, err := e.Download(filepath.Join(e.Dir(), "missing.csv"))
	assert.Error(t, err)
}
