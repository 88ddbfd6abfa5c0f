package cli

import (
	"bufio"
	"encoding/json"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/beacon/internal/config"
	"github.com/mrz1836/beacon/internal/projects"
)

// projectsFlags holds the projects command's flag values.
type projectsFlags struct {
	goos    string
	mapping string
}

// AddProjectsCommand registers the projects command on the root command.
func AddProjectsCommand(root *cobra.Command) {
	flags := &projectsFlags{}

	cmd := &cobra.Command{
		Use:   "projects [modified files...]",
		Short: "Compute the projects affected by a set of modified files",
		Long: `projects maps modified file paths to the set of projects CI must build and
test. File paths are taken from the arguments, or from stdin (one per line)
when no arguments are given. Output is sorted and deterministic so it can
feed CI job configuration directly.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjects(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.goos, "os", runtime.GOOS, "target operating system for exclusions")
	cmd.Flags().StringVar(&flags.mapping, "mapping", "", "project mapping YAML file (overrides config)")

	root.AddCommand(cmd)
}

// runProjects executes one change-scope computation.
func runProjects(cmd *cobra.Command, args []string, flags *projectsFlags) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	mappingFile := cfg.Projects.MappingFile
	if flags.mapping != "" {
		mappingFile = flags.mapping
	}

	mapping := &projects.Mapping{}
	if mappingFile != "" {
		mapping, err = projects.LoadMapping(mappingFile)
		if err != nil {
			return err
		}
	}

	files := args
	if len(files) == 0 {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				files = append(files, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}

	result := mapping.Affected(files, flags.goos)

	data, err := json.MarshalIndent(map[string][]string{
		"projects_to_build": result.ToBuild,
		"projects_to_test":  result.ToTest,
		"check_targets":     result.CheckTargets,
	}, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}
