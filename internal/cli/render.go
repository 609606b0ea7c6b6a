// Package cli provides the single-template render command.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/templates"
	"github.com/groundwork-cli/groundwork/internal/writer"
)

var (
	renderDir          string
	renderOutput       string
	renderFallback     string
	renderStrict       bool
	renderContextFiles []string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderDir, "dir", ".", "project directory to analyze")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "write to this file instead of stdout")
	renderCmd.Flags().StringVar(&renderFallback, "fallback", "", "replacement text for unresolved placeholders")
	renderCmd.Flags().BoolVar(&renderStrict, "strict", false, "treat resolution warnings as errors")
	renderCmd.Flags().StringArrayVar(&renderContextFiles, "context", nil, "extra context file (YAML or JSON); repeatable, later files win")
}

var renderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Render a single template to stdout or a file",
	Example: `  # Print the rendered AGENTS.md to stdout
  groundwork render agents-md

  # Render into a file, merging managed regions if it exists
  groundwork render agents-md -o AGENTS.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(renderDir)
		if err != nil {
			return fmt.Errorf("resolve project directory: %w", err)
		}

		value, _, err := buildContext(dir, renderContextFiles)
		if err != nil {
			return err
		}

		catalogue, err := loadCatalogue(dir)
		if err != nil {
			return err
		}
		tmpl, err := templates.ByName(catalogue, args[0])
		if err != nil {
			return err
		}

		result, err := templates.RenderTemplate(tmpl, value, renderOptions(renderFallback)...)
		if err != nil {
			return err
		}

		strict := renderStrict
		if cfg != nil && cfg.Render.Strict {
			strict = true
		}
		if strict && len(result.Warnings) > 0 {
			return fmt.Errorf("template %q produced %d warning(s): %s",
				tmpl.Name, len(result.Warnings), result.Warnings[0].String())
		}

		for _, warning := range result.Warnings {
			fmt.Fprintf(os.Stderr, "%s %s\n", styled(warningStyle, "warning:"), warning.String())
		}

		if renderOutput == "" {
			fmt.Print(result.Output)
			return nil
		}

		written, err := writer.Write(renderOutput, result.Output, writer.Options{Backup: true})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", formatAction(string(written.Action)), written.Path)
		return nil
	},
}
