// Package report renders the prioritized failure list into the markdown
// status document published on the change request.
//
// Rendering is deterministic: two invocations with identical inputs produce
// byte-identical output.
package report

import (
	"fmt"
	"strings"

	"github.com/mrz1836/beacon/internal/advisor"
	"github.com/mrz1836/beacon/internal/collect"
	"github.com/mrz1836/beacon/internal/constants"
)

// Fixed report fragments. These are part of the published comment contract
// and must not drift between runs, or reconciled comments would churn.
const (
	// SuccessMessage is the fixed acknowledgment for a zero exit code.
	// No failure enumeration is ever rendered for a successful run.
	SuccessMessage = "The build succeeded and no failures were detected."

	// SeeBuildFileMessage points readers at the raw log artifact.
	SeeBuildFileMessage = "Download the build's log file to see the details."

	// UnrelatedFailuresMessage asks authors to triage pre-existing breakage.
	UnrelatedFailuresMessage = "If these failures are unrelated to your changes (for example " +
		"tests are broken or flaky at HEAD), please open an issue and add the " +
		"`infrastructure` label."

	// likelyFailingSuffix marks failures the advisor recognized as
	// pre-existing.
	likelyFailingSuffix = " (Likely Already Failing)"
)

// Generator renders status reports. A Generator is constructed once per run
// with the explanation list (possibly empty) returned by the advisor.
type Generator struct {
	explanations map[string]advisor.Explanation
	sizeLimit    int
}

// Option configures a Generator.
type Option func(*Generator)

// WithSizeLimit overrides the rendered-report size limit.
func WithSizeLimit(limit int) Option {
	return func(g *Generator) {
		g.sizeLimit = limit
	}
}

// New creates a Generator. Only explained entries participate in rendering;
// per-failure absence of an explanation is the normal case.
func New(explanations []advisor.Explanation, opts ...Option) *Generator {
	g := &Generator{
		explanations: make(map[string]advisor.Explanation, len(explanations)),
		sizeLimit:    constants.MaxReportBytes,
	}
	for _, e := range explanations {
		if e.Explained {
			g.explanations[e.Name] = e
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders the full report for one run.
//
// A zero exit code short-circuits to the fixed success acknowledgment; the
// driver never queries the advisor for successful runs, and no failure
// enumeration happens regardless of log contents.
func (g *Generator) Generate(title string, exitCode int, artifacts collect.Artifacts) string {
	if exitCode == 0 {
		return strings.Join([]string{"# " + title, "", SuccessMessage}, "\n")
	}

	body := g.render(title, artifacts, true)
	if len(body) > g.sizeLimit {
		// Too large to publish in full; re-render without the enumeration.
		body = g.render(title, artifacts, false)
	}
	return body
}

// render produces the failure report, optionally eliding the per-failure
// detail blocks when listFailures is false.
func (g *Generator) render(title string, artifacts collect.Artifacts, listFailures bool) string {
	lines := []string{"# " + title, ""}

	run, skipped, failed := artifacts.Counts()
	testFailures := artifacts.TestFailures()

	if run == 0 {
		lines = append(lines, g.buildOnlySection(artifacts,
			"The build failed before running any tests. Click on a failure below to see the details.",
			"The build failed before running any tests. Detailed information about the build failure could not be automatically obtained.")...)
		lines = append(lines, "", UnrelatedFailuresMessage)
		return strings.Join(lines, "\n")
	}

	lines = append(lines, summarySection(run, skipped, failed)...)

	switch {
	case !listFailures:
		lines = append(lines, "",
			"Failed tests and their output was too large to report. "+SeeBuildFileMessage)
	case len(testFailures) > 0:
		lines = append(lines, g.failedTestsSection(testFailures)...)
	default:
		// Non-zero exit with all tests passing: the failure is elsewhere in
		// the build.
		lines = append(lines, g.buildOnlySection(artifacts,
			"All tests passed but another part of the build **failed**. Click on a failure below to see the details.",
			"All tests passed but another part of the build **failed**. Information about the build failure could not be automatically obtained.")...)
	}

	lines = append(lines, "", UnrelatedFailuresMessage)
	return strings.Join(lines, "\n")
}

// summarySection renders the pass/skip/fail bullet counts.
func summarySection(run, skipped, failed int) []string {
	var lines []string
	passed := run - skipped - failed

	plural := func(count int) string {
		if count == 1 {
			return "test"
		}
		return "tests"
	}

	if passed > 0 {
		lines = append(lines, fmt.Sprintf("* %d %s passed", passed, plural(passed)))
	}
	if skipped > 0 {
		lines = append(lines, fmt.Sprintf("* %d %s skipped", skipped, plural(skipped)))
	}
	if failed > 0 {
		lines = append(lines, fmt.Sprintf("* %d %s failed", failed, plural(failed)))
	}
	return lines
}

// failedTestsSection renders the suite-grouped failing test blocks.
func (g *Generator) failedTestsSection(groups []collect.SuiteFailures) []string {
	lines := []string{"", "## Failed Tests", "(click on a test name to see its output)"}
	for _, group := range groups {
		lines = append(lines, "", "### "+group.Suite)
		for _, record := range group.Records {
			lines = append(lines, g.failureBlock(record)...)
		}
	}
	return lines
}

// buildOnlySection renders build failures, or the given fallback message
// when the build log yielded none.
func (g *Generator) buildOnlySection(artifacts collect.Artifacts, intro, fallback string) []string {
	failures := artifacts.BuildFailures()
	if len(failures) == 0 {
		return []string{fallback, "", SeeBuildFileMessage}
	}

	lines := []string{intro, ""}
	for _, record := range failures {
		lines = append(lines, g.failureBlock(record)...)
	}
	return lines
}

// failureBlock renders one failure as a collapsible details block, pairing
// it with its advisor explanation when one exists.
func (g *Generator) failureBlock(record collect.Record) []string {
	lines := []string{"<details>"}

	if explanation, ok := g.explanations[record.Name]; ok {
		lines = append(lines,
			"<summary>"+record.Name+likelyFailingSuffix+"</summary>",
			"",
			explanation.Reason,
			"",
		)
	} else {
		lines = append(lines, "<summary>"+record.Name+"</summary>", "")
	}

	lines = append(lines,
		"```",
		record.Message,
		"```",
		"</details>",
	)
	return lines
}
