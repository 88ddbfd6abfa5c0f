package collect

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/beacon/internal/buildlog"
	"github.com/mrz1836/beacon/internal/junit"
)

// kind tags the resolved parser input variant.
type kind int

const (
	kindUnknown kind = iota
	kindJUnit
	kindBuildLog
)

// source is the tagged union of parser inputs. Exactly one of the document
// fields is set, matching the kind.
type source struct {
	path  string
	kind  kind
	junit *junit.Document
	build *buildlog.Document
}

// resolve probes a path and returns its parsed form. Resolution is a
// capability check on the content, with the file extension only breaking
// ties for free-text logs:
//
//   - content that looks like a JUnit document is parsed as one; if the
//     parse fails the file is treated as corrupt and skipped
//   - otherwise the file is a build log when its extension or content says
//     so, and unknown (skipped) when neither does
func resolve(path string, logger zerolog.Logger) source {
	data, err := os.ReadFile(path) //nolint:gosec // CI log paths come from the pipeline driver
	if err != nil {
		logger.Debug().Str("path", path).Err(err).Msg("log file absent, skipping")
		return source{path: path, kind: kindUnknown}
	}

	if junit.Looks(data) {
		doc, parseErr := junit.Parse(data)
		if parseErr != nil {
			logger.Debug().Str("path", path).Err(parseErr).Msg("malformed junit document, skipping")
			return source{path: path, kind: kindUnknown}
		}
		return source{path: path, kind: kindJUnit, junit: doc}
	}

	if isBuildLog(path, data) {
		return source{path: path, kind: kindBuildLog, build: buildlog.Parse(data)}
	}

	logger.Debug().Str("path", path).Msg("unrecognized log format, skipping")
	return source{path: path, kind: kindUnknown}
}

// isBuildLog accepts conventional .log files plus anything carrying the
// build tool's failure delimiters, so renamed logs still parse.
func isBuildLog(path string, data []byte) bool {
	if strings.HasSuffix(path, ".log") {
		return true
	}
	content := string(data)
	return strings.Contains(content, "FAILED: ") || strings.Contains(content, "ninja:")
}
