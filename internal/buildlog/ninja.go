// Package buildlog parses free-text build-tool logs for failed actions.
//
// The delimiting syntax is the build tool's output contract and is not
// reinterpreted here: a failure block opens at a line starting with
// "FAILED: " and closes at the next progress line ("["), a
// "ninja: build stopped:" line, or the per-action size threshold.
package buildlog

import (
	"fmt"
	"os"
	"strings"

	"github.com/mrz1836/beacon/internal/constants"
)

const (
	failedPrefix  = "FAILED: "
	stoppedPrefix = "ninja: build stopped:"
)

// Failure is a single failed build action and its captured tool output.
type Failure struct {
	// Action is the build-tool target identifier from the FAILED: line.
	Action string
	// Output is the captured error output for the action.
	Output string
}

// Document is a build log split into lines, ready for failure extraction.
type Document struct {
	lines []string
}

// Parse splits raw log bytes into a Document. Lines are trimmed of
// surrounding whitespace, matching how the log is inspected downstream.
func Parse(data []byte) *Document {
	raw := strings.Split(string(data), "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimSpace(line)
	}
	return &Document{lines: lines}
}

// ParseFile reads and parses a build log file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // CI log paths come from the pipeline driver
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data), nil
}

// Failures extracts failed build actions in document order.
//
// A FAILED: line immediately preceded by "ninja: build stopped:" is a
// sub-ninja echo of a failure already reported and is skipped.
func (d *Document) Failures() []Failure {
	var failures []Failure
	index := 0

	for index < len(d.lines) {
		for index < len(d.lines) && !strings.HasPrefix(d.lines[index], failedPrefix) {
			index++
		}
		if index >= len(d.lines) {
			break
		}

		if index > 0 && strings.HasPrefix(d.lines[index-1], stoppedPrefix) {
			index++
			continue
		}

		action := strings.TrimPrefix(d.lines[index], failedPrefix)
		var output []string
		for index < len(d.lines) &&
			!strings.HasPrefix(d.lines[index], "[") &&
			!strings.HasPrefix(d.lines[index], stoppedPrefix) &&
			len(output) < constants.NinjaLogSizeThreshold {
			output = append(output, d.lines[index])
			index++
		}

		failures = append(failures, Failure{
			Action: action,
			Output: strings.Join(output, "\n"),
		})
	}

	return failures
}
