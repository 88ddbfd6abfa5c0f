// Package projects computes the set of projects affected by a change, so CI
// can build and test only what the modified files touch.
//
// The mapping is data-driven: path matchers resolve files to projects, a
// dependents table says what to test when a project changes, a dependency
// table is closed transitively to decide what to build, and per-OS exclusion
// lists drop projects that cannot run on the current platform. All outputs
// are sorted for deterministic CI job configuration.
package projects

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	beaconerrors "github.com/mrz1836/beacon/internal/errors"
)

// MetaPath maps a path matcher to a project. Matchers are slash-separated
// prefixes where "*" matches any single path element, e.g.
// "*/docs" or "third-party/benchmark".
type MetaPath struct {
	Path    string `yaml:"path"`
	Project string `yaml:"project"`
}

// Mapping is the project topology for a repository.
type Mapping struct {
	// Meta resolves special paths to projects before the default
	// first-path-component rule applies.
	Meta []MetaPath `yaml:"meta"`
	// Skip lists projects whose changes never trigger builds or tests
	// (documentation, CI config, and similar).
	Skip []string `yaml:"skip"`
	// Dependencies lists the projects a project needs built first.
	// Closed transitively when computing the build set.
	Dependencies map[string][]string `yaml:"dependencies"`
	// Dependents lists the projects to test when a project changes.
	Dependents map[string][]string `yaml:"dependents"`
	// CheckTargets maps a project to its test target name.
	CheckTargets map[string]string `yaml:"check_targets"`
	// Exclude lists projects to drop per operating system.
	Exclude map[string][]string `yaml:"exclude"`
}

// Result is the computed change scope.
type Result struct {
	// ToBuild is the sorted set of projects to build.
	ToBuild []string
	// ToTest is the sorted set of projects to test.
	ToTest []string
	// CheckTargets is the sorted set of test targets for ToTest.
	CheckTargets []string
}

// LoadMapping reads a mapping from a YAML file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path) //nolint:gosec // mapping path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, beaconerrors.ErrProjectMapInvalid)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate rejects mappings with empty matcher entries.
func (m *Mapping) Validate() error {
	for i, meta := range m.Meta {
		if meta.Path == "" || meta.Project == "" {
			return fmt.Errorf("meta entry %d missing path or project: %w", i, beaconerrors.ErrProjectMapInvalid)
		}
	}
	return nil
}

// ModifiedProjects resolves modified file paths to the set of directly
// touched projects. Files under a skipped meta project contribute nothing.
func (m *Mapping) ModifiedProjects(files []string) map[string]struct{} {
	modified := make(map[string]struct{})
	skip := make(map[string]struct{}, len(m.Skip))
	for _, s := range m.Skip {
		skip[s] = struct{}{}
	}

	for _, file := range files {
		parts := strings.Split(strings.Trim(file, "/"), "/")
		if len(parts) == 0 || parts[0] == "" {
			continue
		}

		skipped := false
		for _, meta := range m.Meta {
			if !matchPath(meta.Path, parts) {
				continue
			}
			if _, ok := skip[meta.Project]; ok {
				skipped = true
				break
			}
			modified[meta.Project] = struct{}{}
		}
		if skipped {
			continue
		}
		if _, ok := skip[parts[0]]; !ok {
			modified[parts[0]] = struct{}{}
		}
	}
	return modified
}

// matchPath reports whether the file path parts match the matcher prefix.
func matchPath(matcher string, parts []string) bool {
	matcherParts := strings.Split(strings.Trim(matcher, "/"), "/")
	if len(parts) < len(matcherParts) {
		return false
	}
	for i, mp := range matcherParts {
		if mp != "*" && mp != parts[i] {
			return false
		}
	}
	return true
}

// Affected computes the change scope for the given modified files on the
// given operating system.
func (m *Mapping) Affected(files []string, goos string) Result {
	modified := m.ModifiedProjects(files)
	excluded := make(map[string]struct{})
	for _, p := range m.Exclude[goos] {
		excluded[p] = struct{}{}
	}

	toTest := make(map[string]struct{})
	for project := range modified {
		if _, ok := m.CheckTargets[project]; ok {
			toTest[project] = struct{}{}
		}
		for _, dependent := range m.Dependents[project] {
			toTest[dependent] = struct{}{}
		}
	}
	for p := range excluded {
		delete(toTest, p)
	}

	toBuild := make(map[string]struct{}, len(toTest))
	for p := range toTest {
		toBuild[p] = struct{}{}
	}
	closeDependencies(toBuild, m.Dependencies)
	for p := range excluded {
		delete(toBuild, p)
	}

	targets := make(map[string]struct{})
	for p := range toTest {
		if target, ok := m.CheckTargets[p]; ok {
			targets[target] = struct{}{}
		}
	}

	return Result{
		ToBuild:      sortedKeys(toBuild),
		ToTest:       sortedKeys(toTest),
		CheckTargets: sortedKeys(targets),
	}
}

// closeDependencies expands the set in place until a fixed point.
func closeDependencies(set map[string]struct{}, deps map[string][]string) {
	for {
		before := len(set)
		for project := range set {
			for _, dep := range deps[project] {
				set[dep] = struct{}{}
			}
		}
		if len(set) == before {
			return
		}
	}
}

// sortedKeys returns the set's keys in sorted order.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
