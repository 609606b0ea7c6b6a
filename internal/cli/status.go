// Package cli provides run history commands.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/manifest"
	"github.com/groundwork-cli/groundwork/internal/models"
)

var (
	statusLimit int
	statusRunID string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "maximum number of runs to show")
	statusCmd.Flags().StringVar(&statusRunID, "run", "", "show the artifacts of one run instead of the history")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent generation runs",
	Long: `Show the history of groundwork runs recorded in the manifest database,
or the artifacts of a single run with --run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openManifest()
		if err != nil {
			return err
		}
		defer database.Close()

		if statusRunID != "" {
			return showRun(cmd, database, statusRunID)
		}
		return showHistory(cmd, database)
	},
}

func showHistory(cmd *cobra.Command, database *manifest.DB) error {
	runs, err := manifest.NewRunRepository(database).List(cmd.Context(), statusLimit)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(os.Stdout, runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			formatRunStatus(run.Status),
			strconv.Itoa(run.ArtifactCount),
			strconv.Itoa(run.WarningCount),
			run.StartedAt.Local().Format(time.DateTime),
			run.ProjectPath,
		})
	}
	return writeTable(os.Stdout, []string{"RUN", "STATUS", "FILES", "WARNINGS", "STARTED", "PROJECT"}, rows)
}

func showRun(cmd *cobra.Command, database *manifest.DB, id string) error {
	run, err := manifest.NewRunRepository(database).GetByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	artifacts, err := manifest.NewArtifactRepository(database).ListByRun(cmd.Context(), run.ID)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(os.Stdout, struct {
			Run       *models.Run        `json:"run"`
			Artifacts []*models.Artifact `json:"artifacts"`
		}{run, artifacts})
	}

	fmt.Printf("%s %s\n", styled(titleStyle, "Run"), run.ID)
	fmt.Printf("  Project:  %s\n", run.ProjectPath)
	fmt.Printf("  Status:   %s\n", formatRunStatus(run.Status))
	fmt.Printf("  Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.CompletedAt != nil {
		fmt.Printf("  Finished: %s\n", run.CompletedAt.Local().Format(time.DateTime))
	}

	if len(artifacts) == 0 {
		fmt.Println("\nNo artifacts recorded")
		return nil
	}

	rows := make([][]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		rows = append(rows, []string{
			artifact.Path,
			formatAction(string(artifact.Action)),
			artifact.Template,
			strconv.Itoa(artifact.Warnings),
			shortID(artifact.Checksum),
		})
	}
	fmt.Println()
	return writeTable(os.Stdout, []string{"PATH", "ACTION", "TEMPLATE", "WARNINGS", "CHECKSUM"}, rows)
}

func formatRunStatus(status models.RunStatus) string {
	switch status {
	case models.RunStatusCompleted:
		return styled(successStyle, string(status))
	case models.RunStatusFailed:
		return styled(errorStyle, string(status))
	case models.RunStatusDryRun:
		return styled(mutedStyle, string(status))
	default:
		return string(status)
	}
}
