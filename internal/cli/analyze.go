// Package cli provides the project analysis command.
package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

var analyzeContextFiles []string

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringArrayVar(&analyzeContextFiles, "context", nil, "extra context file (YAML or JSON); repeatable, later files win")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Show the facts detected about a project",
	Long: `Analyze a repository and print the context that templates render against:
project name and language, build commands, documentation paths, and VCS state.`,
	Example: `  # Analyze the current directory
  groundwork analyze

  # Merge a hand-maintained context file over the detected facts
  groundwork analyze --context .groundwork/context.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveProjectDir(args)
		if err != nil {
			return err
		}
		return runAnalyze(cmd.OutOrStdout(), dir)
	},
}

func runAnalyze(out io.Writer, dir string) error {
	_, merged, err := buildContext(dir, analyzeContextFiles)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(out, merged)
	}

	project := subMap(merged, "project")
	fmt.Fprintf(out, "%s\n", styled(titleStyle, "Project"))
	fmt.Fprintf(out, "  Name:     %s\n", orUnknown(scalarAt(project, "name")))
	fmt.Fprintf(out, "  Module:   %s\n", orUnknown(scalarAt(project, "module")))
	fmt.Fprintf(out, "  Language: %s\n", orUnknown(scalarAt(project, "language")))
	if branch := scalarAt(subMap(merged, "vcs"), "branch"); branch != "" {
		fmt.Fprintf(out, "  Branch:   %s\n", branch)
	}

	fmt.Fprintf(out, "\n%s\n", styled(titleStyle, "Commands"))
	printSection(out, scalarPairs(subMap(merged, "commands")))

	fmt.Fprintf(out, "\n%s\n", styled(titleStyle, "Paths"))
	printSection(out, scalarPairs(subMap(merged, "paths")))

	return nil
}

func subMap(m map[string]any, key string) map[string]any {
	sub, _ := m[key].(map[string]any)
	return sub
}

// scalarAt returns the value at key rendered as text, or "" when the key is
// absent, null, or holds a nested structure.
func scalarAt(m map[string]any, key string) string {
	value, ok := m[key]
	if !ok || value == nil {
		return ""
	}
	switch value.(type) {
	case map[string]any, []any:
		return ""
	}
	return fmt.Sprint(value)
}

func scalarPairs(m map[string]any) map[string]string {
	pairs := make(map[string]string, len(m))
	for key := range m {
		if text := scalarAt(m, key); text != "" {
			pairs[key] = text
		}
	}
	return pairs
}

func orUnknown(value string) string {
	if value == "" {
		return styled(mutedStyle, "(not detected)")
	}
	return value
}

func printSection(out io.Writer, pairs map[string]string) {
	if len(pairs) == 0 {
		fmt.Fprintf(out, "  %s\n", styled(mutedStyle, "(none detected)"))
		return
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "  %-8s %s\n", key+":", pairs[key])
	}
}
