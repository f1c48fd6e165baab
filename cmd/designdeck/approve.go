package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmorrow/designdeck/internal/approval"
	"github.com/jmorrow/designdeck/internal/db"
	"github.com/jmorrow/designdeck/internal/observability"
	"github.com/jmorrow/designdeck/internal/types"
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve an artifact and every unapproved phase before it",
	Long: `Approve the given artifact together with all earlier unapproved phases in
the project's pipeline order, in one batched write against the database.`,
	RunE: runApprove,
}

var (
	approveArtifactID  string
	approveApprover    string
	approveMode        string
	approveDatabaseURL string
)

func init() {
	approveCmd.Flags().StringVar(&approveArtifactID, "artifact-id", "", "ID of the artifact to approve (required)")
	approveCmd.Flags().StringVar(&approveApprover, "approver", "design-lead", "Name recorded as the approver")
	approveCmd.Flags().StringVar(&approveMode, "mode", "", "Pipeline mode for the cascade order (defaults to the project's stored mode)")
	approveCmd.Flags().StringVar(&approveDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(approveCmd)
}

func runApprove(_ *cobra.Command, _ []string) error {
	if approveArtifactID == "" {
		return fmt.Errorf("--artifact-id is required")
	}
	if types.IsPreviewID(approveArtifactID) {
		return fmt.Errorf("preview artifacts cannot be approved: %s", approveArtifactID)
	}
	if approveMode != "" && !types.ValidMode(approveMode) {
		return fmt.Errorf("invalid mode %q (expected STANDARD or QUICK)", approveMode)
	}

	if approveDatabaseURL == "" {
		approveDatabaseURL = os.Getenv("DATABASE_URL")
	}
	if approveDatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, approveDatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	target, err := database.GetArtifact(ctx, approveArtifactID)
	if err != nil {
		return fmt.Errorf("failed to get artifact: %w", err)
	}
	if target == nil {
		return fmt.Errorf("artifact not found: %s", approveArtifactID)
	}

	existing, err := database.ListArtifacts(ctx, target.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}

	// Without an explicit mode the cascade follows the project's stored mode.
	mode := approveMode
	if mode == "" {
		state, err := database.GetPipelineState(ctx, target.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to get pipeline state: %w", err)
		}
		if state != nil {
			mode = state.Mode
		}
	}

	set := approval.NewSet(existing)
	approver := approval.NewApprover(database, nil)
	ids, err := approver.Approve(ctx, set, approveArtifactID, approveApprover, mode)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintApproval(ids)
	return nil
}
