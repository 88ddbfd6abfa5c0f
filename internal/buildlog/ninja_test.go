package buildlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/beacon/internal/constants"
)

const sampleLog = `[1/5] CXX obj/ok.o
[2/5] CXX obj/broken.o
FAILED: obj/broken.o
clang++ -c broken.cpp
broken.cpp:4:10: error: use of undeclared identifier 'x'
[3/5] CXX obj/also_broken.o
FAILED: obj/also_broken.o
also_broken.cpp:1:1: error: expected unqualified-id
ninja: build stopped: subcommand failed.
`

func TestFailures_Extraction(t *testing.T) {
	failures := Parse([]byte(sampleLog)).Failures()
	require.Len(t, failures, 2)

	assert.Equal(t, "obj/broken.o", failures[0].Action)
	assert.Contains(t, failures[0].Output, "undeclared identifier 'x'")
	assert.NotContains(t, failures[0].Output, "[3/5]", "block ends at the next progress line")

	assert.Equal(t, "obj/also_broken.o", failures[1].Action)
	assert.NotContains(t, failures[1].Output, "ninja: build stopped")
}

func TestFailures_OrderPreserved(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, "FAILED: obj/target_%d.o\nerror %d\n[%d/4] next\n", i, i, i+1)
	}

	failures := Parse([]byte(b.String())).Failures()
	require.Len(t, failures, 4)
	for i, f := range failures {
		assert.Equal(t, fmt.Sprintf("obj/target_%d.o", i), f.Action)
	}
}

func TestFailures_SubNinjaEchoSkipped(t *testing.T) {
	log := `FAILED: obj/real.o
real error
ninja: build stopped: subcommand failed.
FAILED: obj/echoed.o
[10/10] done
`
	failures := Parse([]byte(log)).Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "obj/real.o", failures[0].Action)
}

func TestFailures_SizeThreshold(t *testing.T) {
	var b strings.Builder
	b.WriteString("FAILED: obj/huge.o\n")
	for i := 0; i < constants.NinjaLogSizeThreshold+100; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}

	failures := Parse([]byte(b.String())).Failures()
	require.Len(t, failures, 1)
	got := strings.Count(failures[0].Output, "\n") + 1
	assert.Equal(t, constants.NinjaLogSizeThreshold, got)
}

func TestFailures_NoFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"clean build", "[1/2] CXX ok.o\n[2/2] LINK ok\n"},
		{"stopped only", "ninja: build stopped: interrupted by user.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Parse([]byte(tt.data)).Failures())
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "build.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o600))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Failures(), 2)

	_, err = ParseFile(filepath.Join(dir, "missing.log"))
	assert.Error(t, err)
}

func TestParse_TrimsIndentedFailedLines(t *testing.T) {
	failures := Parse([]byte("  FAILED: obj/indented.o\n  error text\n")).Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "obj/indented.o", failures[0].Action)
}
