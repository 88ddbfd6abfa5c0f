// Package collect merges parsed CI log artifacts into a single prioritized
// failure list.
//
// The collection is a pure function of the file contents: no file is required
// to exist, unreadable or malformed files are skipped, and an empty input list
// flows through the rest of the pipeline as empty artifacts.
package collect

import (
	"github.com/rs/zerolog"

	"github.com/mrz1836/beacon/internal/buildlog"
	"github.com/mrz1836/beacon/internal/junit"
)

// Record is a single failure extracted from a log source. It represents
// either a failing test case (Name = classname/name) or a failing build
// action (Name = build-tool target). Immutable once created.
type Record struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Origin identifies which source family a failure set was derived from.
// A set is always entirely test-derived or entirely build-derived.
type Origin int

const (
	// OriginNone means no failures were found in any source.
	OriginNone Origin = iota
	// OriginTests means the set holds failing test cases.
	OriginTests
	// OriginBuild means the set holds failing build actions.
	OriginBuild
)

// String returns a string representation of the origin.
func (o Origin) String() string {
	switch o {
	case OriginTests:
		return "tests"
	case OriginBuild:
		return "build"
	default:
		return "none"
	}
}

// Set is the ordered failure list selected for reporting. Insertion order is
// discovery order within the originating files and is never reordered.
type Set struct {
	Records []Record
	Origin  Origin
}

// Empty reports whether the set holds no failures.
func (s Set) Empty() bool {
	return len(s.Records) == 0
}

// SuiteFailures groups failing test records under their originating suite,
// preserving file order across suites and document order within a suite.
type SuiteFailures struct {
	Suite   string
	Records []Record
}

// Artifacts holds the parsed log documents for one CI run.
type Artifacts struct {
	JUnit  []*junit.Document
	Builds []*buildlog.Document
}

// Load resolves and parses all candidate log paths. Unknown, missing and
// malformed files are silently skipped; only a debug notice is logged.
func Load(paths []string, logger zerolog.Logger) Artifacts {
	var artifacts Artifacts
	for _, path := range paths {
		source := resolve(path, logger)
		switch source.kind {
		case kindJUnit:
			artifacts.JUnit = append(artifacts.JUnit, source.junit)
		case kindBuildLog:
			artifacts.Builds = append(artifacts.Builds, source.build)
		case kindUnknown:
			// Skipped: absent failures are simply left out of the result.
		}
	}
	return artifacts
}

// TestFailures returns failing test cases grouped by suite. Suites appear in
// file order, records within a suite in document order. Suites without
// failures produce no group.
func (a Artifacts) TestFailures() []SuiteFailures {
	var groups []SuiteFailures
	index := map[string]int{}

	for _, doc := range a.JUnit {
		for _, suite := range doc.Suites {
			for _, c := range suite.Cases {
				if !c.Failed() {
					continue
				}
				record := Record{Name: c.ID(), Message: c.FailureText()}
				if i, ok := index[suite.Name]; ok {
					groups[i].Records = append(groups[i].Records, record)
					continue
				}
				index[suite.Name] = len(groups)
				groups = append(groups, SuiteFailures{Suite: suite.Name, Records: []Record{record}})
			}
		}
	}
	return groups
}

// BuildFailures returns failing build actions across all build logs in
// file order.
func (a Artifacts) BuildFailures() []Record {
	var records []Record
	for _, doc := range a.Builds {
		for _, f := range doc.Failures() {
			records = append(records, Record{Name: f.Action, Message: f.Output})
		}
	}
	return records
}

// Counts returns aggregate test counters across all JUnit documents.
func (a Artifacts) Counts() (run, skipped, failed int) {
	for _, doc := range a.JUnit {
		r, s, f := doc.Counts()
		run += r
		skipped += s
		failed += f
	}
	return run, skipped, failed
}

// Collect applies the fallback policy: test failures, when any exist, fully
// supersede build failures. A test-level failure is always more actionable
// than a generic compile error; build failures are only meaningful signal
// when no test even ran.
func (a Artifacts) Collect() Set {
	var records []Record
	for _, group := range a.TestFailures() {
		records = append(records, group.Records...)
	}
	if len(records) > 0 {
		return Set{Records: records, Origin: OriginTests}
	}

	build := a.BuildFailures()
	if len(build) > 0 {
		return Set{Records: build, Origin: OriginBuild}
	}
	return Set{}
}

// Collect is the failure collector entry point: parse all inputs, then apply
// the fallback policy to produce a single ordered failure set.
func Collect(paths []string, logger zerolog.Logger) Set {
	return Load(paths, logger).Collect()
}
