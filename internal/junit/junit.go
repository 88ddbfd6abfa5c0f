// Package junit parses JUnit XML test result documents.
//
// Both <testsuites> wrapper documents and bare <testsuite> documents are
// accepted. Parsing is tolerant by policy: a malformed or truncated file is
// reported as an error to the caller, which skips it rather than aborting
// the run (partial-result-on-corruption).
package junit

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
)

// Document is a parsed JUnit result file holding its suites in document order.
type Document struct {
	Suites []Suite
}

// Suite is a single testsuite element with its aggregate counters.
type Suite struct {
	Name     string `xml:"name,attr"`
	Tests    int    `xml:"tests,attr"`
	Failures int    `xml:"failures,attr"`
	Errors   int    `xml:"errors,attr"`
	Skipped  int    `xml:"skipped,attr"`
	Cases    []Case `xml:"testcase"`
}

// Case is a single testcase element. Failure and Error are nil for passing
// cases; Skipped is non-nil for skipped cases.
type Case struct {
	Name      string  `xml:"name,attr"`
	ClassName string  `xml:"classname,attr"`
	Failure   *Result `xml:"failure"`
	Error     *Result `xml:"error"`
	Skipped   *Result `xml:"skipped"`
}

// Result carries the captured output of a failure, error or skip element.
type Result struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

// Failed reports whether the case ended in a failure or error.
func (c Case) Failed() bool {
	return c.Failure != nil || c.Error != nil
}

// FailureText returns the captured failure output for a failed case,
// preferring the element body over the message attribute.
func (c Case) FailureText() string {
	r := c.Failure
	if r == nil {
		r = c.Error
	}
	if r == nil {
		return ""
	}
	if r.Text != "" {
		return r.Text
	}
	return r.Message
}

// ID returns the test identifier in classname/name form.
func (c Case) ID() string {
	return c.ClassName + "/" + c.Name
}

// testsuitesDoc mirrors a <testsuites> wrapper document.
type testsuitesDoc struct {
	XMLName xml.Name `xml:"testsuites"`
	Suites  []Suite  `xml:"testsuite"`
}

// Parse decodes a JUnit XML document from raw bytes.
func Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty junit document")
	}

	var wrapper testsuitesDoc
	if err := xml.Unmarshal(trimmed, &wrapper); err == nil {
		return &Document{Suites: wrapper.Suites}, nil
	}

	var single Suite
	if err := xml.Unmarshal(trimmed, &single); err != nil {
		return nil, fmt.Errorf("failed to parse junit xml: %w", err)
	}
	return &Document{Suites: []Suite{single}}, nil
}

// ParseFile reads and decodes a JUnit XML file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // CI log paths come from the pipeline driver
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Looks reports whether the raw bytes plausibly form a JUnit document.
// Used by the failure collector's capability probe to resolve source kinds
// without relying on file extensions alone.
func Looks(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	return bytes.Contains(trimmed, []byte("<testsuite"))
}

// Counts returns the aggregate run/skip/fail counters across all suites.
// Failing counters include errored cases, matching the suite attributes.
func (d *Document) Counts() (run, skipped, failed int) {
	for _, suite := range d.Suites {
		run += suite.Tests
		skipped += suite.Skipped
		failed += suite.Failures + suite.Errors
	}
	return run, skipped, failed
}
