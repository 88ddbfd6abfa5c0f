package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const junitTwoFailures = `<?xml version="1.0" encoding="UTF-8"?>
<testsuites>
  <testsuite name="Flang" tests="3" failures="2">
    <testcase classname="Flang/Unit" name="testA">
      <failure>assert x == 1</failure>
    </testcase>
    <testcase classname="Flang/Unit" name="test_ok"/>
    <testcase classname="Flang/Unit" name="testB">
      <failure>timeout</failure>
    </testcase>
  </testsuite>
</testsuites>`

const junitSecondSuite = `<testsuite name="Clang" tests="1" failures="1">
  <testcase classname="Clang/Driver" name="testC">
    <failure>link error</failure>
  </testcase>
</testsuite>`

const buildFailureLog = `[1/2] CXX obj/a.o
FAILED: obj/a.o
a.cpp:1:1: error: nope
[2/2] CXX obj/b.o
FAILED: obj/b.o
b.cpp:2:2: error: also nope
`

func writeFiles(t *testing.T, files map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
		paths = append(paths, path)
	}
	return paths
}

func TestCollect_TestFailuresSupersedeBuildFailures(t *testing.T) {
	dir := t.TempDir()
	junitPath := filepath.Join(dir, "results.xml")
	buildPath := filepath.Join(dir, "build.log")
	require.NoError(t, os.WriteFile(junitPath, []byte(junitTwoFailures), 0o600))
	require.NoError(t, os.WriteFile(buildPath, []byte(buildFailureLog), 0o600))

	set := Collect([]string{junitPath, buildPath}, zerolog.Nop())
	assert.Equal(t, OriginTests, set.Origin)
	require.Len(t, set.Records, 2)
	assert.Equal(t, "Flang/Unit/testA", set.Records[0].Name)
	assert.Equal(t, "assert x == 1", set.Records[0].Message)
	assert.Equal(t, "Flang/Unit/testB", set.Records[1].Name)
}

func TestCollect_BuildFallback(t *testing.T) {
	dir := t.TempDir()
	buildPath := filepath.Join(dir, "build.log")
	require.NoError(t, os.WriteFile(buildPath, []byte(buildFailureLog), 0o600))

	set := Collect([]string{buildPath}, zerolog.Nop())
	assert.Equal(t, OriginBuild, set.Origin)
	require.Len(t, set.Records, 2)
	assert.Equal(t, "obj/a.o", set.Records[0].Name, "build order preserved")
	assert.Equal(t, "obj/b.o", set.Records[1].Name)
}

func TestCollect_PassingTestsStillSuppressBuildReporting(t *testing.T) {
	// Tests ran and passed while the build log carries failures. The fallback
	// still selects the build failures: suppression is by failure presence,
	// not by source presence.
	paths := writeFiles(t, map[string]string{
		"results.xml": `<testsuite name="Clean" tests="2" failures="0">
  <testcase classname="Clean/Unit" name="ok1"/>
  <testcase classname="Clean/Unit" name="ok2"/>
</testsuite>`,
		"build.log": buildFailureLog,
	})

	set := Collect(paths, zerolog.Nop())
	assert.Equal(t, OriginBuild, set.Origin)
	assert.Len(t, set.Records, 2)
}

func TestCollect_Empty(t *testing.T) {
	set := Collect(nil, zerolog.Nop())
	assert.True(t, set.Empty())
	assert.Equal(t, OriginNone, set.Origin)
}

func TestLoad_SkipsMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "corrupt.xml")
	require.NoError(t, os.WriteFile(badPath, []byte(`<testsuites><testsuite name="x"`), 0o600))
	goodPath := filepath.Join(dir, "results.xml")
	require.NoError(t, os.WriteFile(goodPath, []byte(junitTwoFailures), 0o600))

	artifacts := Load([]string{
		filepath.Join(dir, "does-not-exist.xml"),
		badPath,
		goodPath,
	}, zerolog.Nop())

	assert.Len(t, artifacts.JUnit, 1)
	assert.Empty(t, artifacts.Builds)
}

func TestLoad_UnknownFormatSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no delimiters"), 0o600))

	artifacts := Load([]string{path}, zerolog.Nop())
	assert.Empty(t, artifacts.JUnit)
	assert.Empty(t, artifacts.Builds)
}

func TestLoad_BuildLogByContent(t *testing.T) {
	// A renamed log still resolves by its failure delimiters.
	dir := t.TempDir()
	path := filepath.Join(dir, "stdout.txt")
	require.NoError(t, os.WriteFile(path, []byte(buildFailureLog), 0o600))

	artifacts := Load([]string{path}, zerolog.Nop())
	require.Len(t, artifacts.Builds, 1)
}

func TestTestFailures_GroupedBySuiteInFileOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.xml")
	second := filepath.Join(dir, "b.xml")
	require.NoError(t, os.WriteFile(first, []byte(junitTwoFailures), 0o600))
	require.NoError(t, os.WriteFile(second, []byte(junitSecondSuite), 0o600))

	groups := Load([]string{first, second}, zerolog.Nop()).TestFailures()
	require.Len(t, groups, 2)
	assert.Equal(t, "Flang", groups[0].Suite)
	assert.Len(t, groups[0].Records, 2)
	assert.Equal(t, "Clang", groups[1].Suite)
	assert.Equal(t, "Clang/Driver/testC", groups[1].Records[0].Name)
}

func TestCounts_AggregatesAcrossDocuments(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.xml")
	second := filepath.Join(dir, "b.xml")
	require.NoError(t, os.WriteFile(first, []byte(junitTwoFailures), 0o600))
	require.NoError(t, os.WriteFile(second, []byte(junitSecondSuite), 0o600))

	run, skipped, failed := Load([]string{first, second}, zerolog.Nop()).Counts()
	assert.Equal(t, 4, run)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 3, failed)
}

func TestOriginString(t *testing.T) {
	assert.Equal(t, "none", OriginNone.String())
	assert.Equal(t, "tests", OriginTests.String())
	assert.Equal(t, "build", OriginBuild.String())
}
