// Package cli provides the project bootstrap command.
package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/logging"
	"github.com/groundwork-cli/groundwork/internal/manifest"
	"github.com/groundwork-cli/groundwork/internal/models"
	"github.com/groundwork-cli/groundwork/internal/resolve"
	"github.com/groundwork-cli/groundwork/internal/templates"
	"github.com/groundwork-cli/groundwork/internal/writer"
)

var (
	initDryRun       bool
	initForce        bool
	initNoBackup     bool
	initStrict       bool
	initAll          bool
	initFallback     string
	initTemplates    []string
	initContextFiles []string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "show what would be written without touching disk")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite files wholesale instead of merging managed regions")
	initCmd.Flags().BoolVar(&initNoBackup, "no-backup", false, "skip .bak copies when overwriting files")
	initCmd.Flags().BoolVar(&initStrict, "strict", false, "treat resolution warnings as errors")
	initCmd.Flags().BoolVar(&initAll, "all", false, "generate every applicable template without prompting")
	initCmd.Flags().StringVar(&initFallback, "fallback", "", "replacement text for unresolved placeholders")
	initCmd.Flags().StringArrayVar(&initTemplates, "template", nil, "template to generate; repeatable (default: prompt or all)")
	initCmd.Flags().StringArrayVar(&initContextFiles, "context", nil, "extra context file (YAML or JSON); repeatable, later files win")
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Generate agent-ready documentation for a project",
	Long: `Analyze a repository and generate its working documentation from templates:
AGENTS.md, development guides, and ADR scaffolding.

Existing files are merged, not clobbered: content inside managed regions
(<!-- NAME_START --> … <!-- NAME_END -->) survives regeneration, and the
previous version is kept as a .bak copy.`,
	Example: `  # Bootstrap the current directory
  groundwork init

  # Preview without writing anything
  groundwork init --dry-run

  # Generate only AGENTS.md, with explicit facts layered on top
  groundwork init --template agents-md --context .groundwork/context.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveProjectDir(args)
		if err != nil {
			return err
		}
		return runInit(cmd.Context(), dir)
	},
}

// artifactSummary is the per-file outcome reported to the user.
type artifactSummary struct {
	Template string   `json:"template"`
	Path     string   `json:"path"`
	Action   string   `json:"action"`
	Warnings []string `json:"warnings,omitempty"`
}

func runInit(ctx context.Context, dir string) error {
	logger := logging.Component("init")

	step := startProgress("Analyzing project")
	value, _, err := buildContext(dir, initContextFiles)
	if err != nil {
		step.Fail(err)
		return err
	}
	step.Done()

	if name, ok := value.Lookup("project.name"); !ok || !name.Truthy() {
		return &PreflightError{
			Message:  "could not detect a project name",
			Hint:     "run inside a project directory, or supply one via --context",
			NextStep: "groundwork analyze",
		}
	}

	catalogue, err := loadCatalogue(dir)
	if err != nil {
		return err
	}

	selected, err := selectTemplates(catalogue)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		fmt.Println("Nothing selected; no files generated.")
		return nil
	}

	database, err := openManifest()
	if err != nil {
		return err
	}
	defer database.Close()

	runRepo := manifest.NewRunRepository(database)
	artifactRepo := manifest.NewArtifactRepository(database)

	run := &models.Run{ProjectPath: dir}
	if err := runRepo.Create(ctx, run); err != nil {
		return err
	}

	opts := renderOptions(initFallback)
	backup := !initNoBackup
	if cfg != nil && !cfg.Render.Backup {
		backup = false
	}
	strict := initStrict
	if cfg != nil && cfg.Render.Strict {
		strict = true
	}

	summaries := make([]artifactSummary, 0, len(selected))
	totalWarnings := 0

	for _, tmpl := range selected {
		summary, warnings, err := generateArtifact(ctx, generateInput{
			dir:       dir,
			tmpl:      tmpl,
			value:     value,
			opts:      opts,
			backup:    backup,
			dryRun:    initDryRun,
			overwrite: initForce,
			runID:     run.ID,
			artifact:  artifactRepo,
		})
		if err != nil {
			if recordErr := runRepo.Complete(ctx, run.ID, models.RunStatusFailed, len(summaries), totalWarnings); recordErr != nil {
				logger.Warn().Err(recordErr).Msg("record failed run")
			}
			return err
		}

		totalWarnings += warnings
		if strict && warnings > 0 {
			if recordErr := runRepo.Complete(ctx, run.ID, models.RunStatusFailed, len(summaries)+1, totalWarnings); recordErr != nil {
				logger.Warn().Err(recordErr).Msg("record failed run")
			}
			return fmt.Errorf("template %q produced %d warning(s) in strict mode: %s",
				tmpl.Name, warnings, summary.Warnings[0])
		}
		summaries = append(summaries, summary)
	}

	status := models.RunStatusCompleted
	if initDryRun {
		status = models.RunStatusDryRun
	}
	if err := runRepo.Complete(ctx, run.ID, status, len(summaries), totalWarnings); err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(os.Stdout, struct {
			RunID     string            `json:"run_id"`
			Status    string            `json:"status"`
			Artifacts []artifactSummary `json:"artifacts"`
		}{run.ID, string(status), summaries})
	}

	printInitSummary(summaries, totalWarnings)
	return nil
}

type generateInput struct {
	dir       string
	tmpl      *templates.Template
	value     resolve.Value
	opts      []resolve.Option
	backup    bool
	dryRun    bool
	overwrite bool
	runID     string
	artifact  *manifest.ArtifactRepository
}

func generateArtifact(ctx context.Context, in generateInput) (artifactSummary, int, error) {
	summary := artifactSummary{Template: in.tmpl.Name, Path: in.tmpl.Output}

	result, err := templates.RenderTemplate(in.tmpl, in.value, in.opts...)
	if err != nil {
		if errors.Is(err, templates.ErrRequirementNotMet) {
			summary.Action = string(models.ArtifactActionSkipped)
			summary.Warnings = []string{err.Error()}
			return summary, 0, nil
		}
		return summary, 0, err
	}

	for _, warning := range result.Warnings {
		summary.Warnings = append(summary.Warnings, warning.String())
	}

	target := filepath.Join(in.dir, filepath.FromSlash(in.tmpl.Output))
	written, err := writer.Write(target, result.Output, writer.Options{
		Backup:    in.backup,
		DryRun:    in.dryRun,
		Overwrite: in.overwrite,
	})
	if err != nil {
		return summary, len(result.Warnings), err
	}
	summary.Action = string(written.Action)

	checksum := sha256.Sum256([]byte(written.Content))
	artifact := &models.Artifact{
		RunID:    in.runID,
		Path:     in.tmpl.Output,
		Template: in.tmpl.Name,
		Checksum: hex.EncodeToString(checksum[:]),
		Action:   models.ArtifactAction(written.Action),
		Warnings: len(result.Warnings),
	}
	if err := in.artifact.Create(ctx, artifact); err != nil {
		return summary, len(result.Warnings), err
	}

	return summary, len(result.Warnings), nil
}

func selectTemplates(catalogue []*templates.Template) ([]*templates.Template, error) {
	if len(initTemplates) > 0 {
		selected := make([]*templates.Template, 0, len(initTemplates))
		for _, name := range initTemplates {
			tmpl, err := templates.ByName(catalogue, name)
			if err != nil {
				return nil, err
			}
			selected = append(selected, tmpl)
		}
		return selected, nil
	}

	if initAll || IsNonInteractive() {
		return catalogue, nil
	}

	options := make([]string, 0, len(catalogue))
	byName := make(map[string]*templates.Template, len(catalogue))
	for _, tmpl := range catalogue {
		options = append(options, tmpl.Name)
		byName[tmpl.Name] = tmpl
	}

	var chosen []string
	prompt := &survey.MultiSelect{
		Message: "Select templates to generate:",
		Options: options,
		Default: options,
	}
	if err := survey.AskOne(prompt, &chosen); err != nil {
		return nil, fmt.Errorf("template selection: %w", err)
	}

	selected := make([]*templates.Template, 0, len(chosen))
	for _, name := range chosen {
		selected = append(selected, byName[name])
	}
	return selected, nil
}

func printInitSummary(summaries []artifactSummary, totalWarnings int) {
	changed := 0
	for _, summary := range summaries {
		fmt.Printf("  %-10s %s", formatAction(summary.Action), summary.Path)
		if len(summary.Warnings) > 0 {
			fmt.Printf("  %s", styled(warningStyle, fmt.Sprintf("(%d warning(s))", len(summary.Warnings))))
		}
		fmt.Println()
		for _, warning := range summary.Warnings {
			fmt.Printf("      %s\n", styled(mutedStyle, warning))
		}
		if summary.Action == string(models.ArtifactActionCreated) || summary.Action == string(models.ArtifactActionUpdated) {
			changed++
		}
	}

	label := fmt.Sprintf("\n%d file(s) processed, %d changed", len(summaries), changed)
	if totalWarnings > 0 {
		label += fmt.Sprintf(", %d warning(s)", totalWarnings)
	}
	if initDryRun {
		label += " (dry run)"
	}
	fmt.Println(styled(titleStyle, label))
}
