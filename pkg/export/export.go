// Package export turns scan results into downloadable artifacts: a
// timestamped CSV of post counts and a filtered copy of the run log.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"igmonthly/pkg/logger"
	"igmonthly/pkg/report"
)

// csvHeader is the exact column order of the results file.
var csvHeader = []string{"Instagram ID", "Post Count", "Year", "Month", "Links"}

const timestampLayout = "20060102_150405"

// Exporter writes result artifacts into a single output directory.
type Exporter struct {
	dir string
	log logger.Logger
}

// NewExporter creates the output directory if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Exporter{dir: dir, log: logger.GetLogger()}, nil
}

// Dir returns the output directory path.
func (e *Exporter) Dir() string {
	return e.dir
}

// WriteCSV writes one row per (target, month) to
// instagram_results_<YYYYMMDD_HHMMSS>.csv and returns the path.
func (e *Exporter) WriteCSV(rows []report.PostCountRow) (string, error) {
	filename := filepath.Join(e.dir, fmt.Sprintf("instagram_results_%s.csv", time.Now().Format(timestampLayout)))

	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	w := csv.NewWriter(out)
	writeErr := w.Write(csvHeader)
	for _, row := range rows {
		if writeErr != nil {
			break
		}
		writeErr = w.Write([]string{
			row.Handle,
			strconv.Itoa(row.PostCount),
			row.Year,
			row.Month,
			row.LinksCell(),
		})
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	closeErr := out.Close()

	if writeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write csv: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	e.log.WithField("path", filename).Info("Results CSV written")
	return filename, nil
}

// FilterRunLog copies the run log into
// processed_logs_<YYYYMMDD_HHMMSS>.log, keeping only lines that mention
// Completed or Error, and returns the path.
func (e *Exporter) FilterRunLog(logPath string) (string, error) {
	in, err := os.Open(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to open run log: %w", err)
	}
	defer in.Close()

	filename := filepath.Join(e.dir, fmt.Sprintf("processed_logs_%s.log", time.Now().Format(timestampLayout)))
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var writeErr error
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "Completed") && !strings.Contains(line, "Error") {
			continue
		}
		if _, writeErr = w.WriteString(line + "\n"); writeErr != nil {
			break
		}
	}
	if writeErr == nil {
		writeErr = scanner.Err()
	}
	if writeErr == nil {
		writeErr = w.Flush()
	}
	closeErr := out.Close()

	if writeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to filter run log: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return filename, nil
}

// Download reads an artifact into memory and deletes the file, returning
// the base name and contents. The caller owns delivery; nothing stale is
// left in the output directory.
func (e *Exporter) Download(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return "", nil, fmt.Errorf("failed to remove artifact: %w", err)
	}
	e.log.Info(fmt.Sprintf("Removed file: %s", path))
	return filepath.Base(path), data, nil
}
