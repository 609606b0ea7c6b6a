// Package cli provides template catalogue commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/templates"
)

var templatesDir string

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)

	templatesCmd.PersistentFlags().StringVar(&templatesDir, "dir", ".", "project directory whose template overrides apply")
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the template catalogue",
	Long: `Inspect the templates available for generation.

Templates are discovered from .groundwork/templates in the project, then the
user config directory, then the system directory, falling back to the
embedded builtins. The first template found under a given name wins.`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogue, err := loadCatalogue(templatesDir)
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return WriteOutput(os.Stdout, catalogue)
		}

		if len(catalogue) == 0 {
			fmt.Println("No templates found")
			return nil
		}

		rows := make([][]string, 0, len(catalogue))
		for _, tmpl := range catalogue {
			source := tmpl.Source
			if source != "builtin" {
				source = "file"
			}
			rows = append(rows, []string{tmpl.Name, tmpl.Output, source, tmpl.Description})
		}
		return writeTable(os.Stdout, []string{"NAME", "OUTPUT", "SOURCE", "DESCRIPTION"}, rows)
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a template's metadata and body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogue, err := loadCatalogue(templatesDir)
		if err != nil {
			return err
		}
		tmpl, err := templates.ByName(catalogue, args[0])
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return WriteOutput(os.Stdout, tmpl)
		}

		fmt.Printf("%s\n", styled(titleStyle, tmpl.Name))
		fmt.Printf("  Description: %s\n", tmpl.Description)
		fmt.Printf("  Output:      %s\n", tmpl.Output)
		fmt.Printf("  Source:      %s\n", tmpl.Source)
		if len(tmpl.Requires) > 0 {
			fmt.Printf("  Requires:    %s\n", strings.Join(tmpl.Requires, ", "))
		}
		if len(tmpl.Tags) > 0 {
			fmt.Printf("  Tags:        %s\n", strings.Join(tmpl.Tags, ", "))
		}
		fmt.Printf("\n%s\n", tmpl.Body)
		return nil
	},
}
