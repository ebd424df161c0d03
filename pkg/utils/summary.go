// =============================================================================
// pipe2csv - Run Summary Utility
// =============================================================================
//
// Writes a short YAML report describing one conversion: which dialect was
// used, whether it was detected, and how many rows went through. The report
// is produced only when --summary is given.
//
// EXAMPLE:
//   run_id: 2f1d7c8e-3b4a-4f6e-9a51-0c7e2d9b8a11
//   input: export.txt
//   output: export.csv
//   delimiter: '|'
//   quote: '"'
//   detected: true
//   dry_run: false
//   rows: 1204
//   fields: 9
//   duration: 3.2ms
//   started_at: 2026-10-18T09:12:44Z
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunSummary is the content of the run report.
type RunSummary struct {
	RunID     string    `yaml:"run_id"`
	Input     string    `yaml:"input"`
	Output    string    `yaml:"output,omitempty"`
	Delimiter string    `yaml:"delimiter"`
	Quote     string    `yaml:"quote"`
	Detected  bool      `yaml:"detected"`
	DryRun    bool      `yaml:"dry_run"`
	Rows      int       `yaml:"rows"`
	Fields    int       `yaml:"fields"`
	Duration  string    `yaml:"duration"`
	StartedAt time.Time `yaml:"started_at"`
}

// WriteSummary writes summary as YAML to path, replacing any existing file.
func WriteSummary(path string, summary RunSummary) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close summary file: %w", closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}

	return nil
}
