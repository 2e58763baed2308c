package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/planner"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <request text>",
		Short: "Classify, plan, and execute a request end to end",
		Long: `Run the full pipeline for a free-text request: classify it, build the
costed plan, and execute the stages, printing progress as they complete.

Plans that require confirmation (low classification confidence, or any
billable stage) are shown and abandoned unless --yes is given.

Execution state is persisted in the data directory after every stage, so an
interrupted run can be resumed by a later serve process.

Examples:
  maestro run --yes "Write a blog post about sustainable energy"
  maestro run --yes --quality high "article on zero-downtime deploys"
  maestro run "tweet about the launch"   # prints the plan and asks for --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommand,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("quality", "", "Override quality preference: draft, balanced, high")
	cmd.Flags().Bool("yes", false, "Confirm the plan without prompting")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	input := strings.Join(args, " ")
	intent, err := p.classifier.Classify(input)
	if err != nil {
		return err
	}

	if pref, _ := cmd.Flags().GetString("quality"); pref != "" {
		if !models.QualityPreference(pref).Valid() {
			return fmt.Errorf("invalid quality preference %q, must be draft, balanced, or high", pref)
		}
		if intent.Parameters == nil {
			intent.Parameters = make(map[string]string)
		}
		intent.Parameters["quality_preference"] = pref
	}

	plan, err := p.planner.Plan(intent, planner.LiveMetrics{})
	if err != nil {
		return err
	}
	summary := p.planner.Summarize(intent, plan)

	printSummary(cmd.OutOrStdout(), intent, plan, summary)

	if cfg.Budget > 0 && plan.TotalCost > cfg.Budget {
		return fmt.Errorf("plan cost $%.2f exceeds the configured $%.2f budget", plan.TotalCost, cfg.Budget)
	}

	confirmed, _ := cmd.Flags().GetBool("yes")
	if !confirmed {
		fmt.Fprintf(cmd.OutOrStdout(), "\nRe-run with --yes to execute this plan.\n")
		return nil
	}
	plan.UserConfirmed = true

	task := &models.Task{
		ID:         uuid.NewString(),
		Name:       summary.Title,
		Topic:      intent.Topic(),
		TaskType:   intent.TaskType,
		Status:     models.TaskPending,
		Parameters: intent.Parameters,
		Plan:       *plan,
	}
	if err := p.store.Create(cmd.Context(), task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nExecuting task %s...\n\n", task.ID)
	if err := p.orch.Run(cmd.Context(), task.ID); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	final, err := p.store.Get(cmd.Context(), task.ID)
	if err != nil {
		return err
	}
	printOutcome(cmd, final)
	return nil
}

// printOutcome renders the finished task: its resting state, per-stage
// results, and the formatted document if one was produced.
func printOutcome(cmd *cobra.Command, task *models.Task) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\nTask %s: %s\n", task.ID, task.Status)
	for _, stage := range task.Plan.Stages {
		r, ok := task.Result(stage.Kind)
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %-16s %s (%d attempt(s))", r.Kind, r.Status, r.AttemptCount)
		if r.QualityScore != nil {
			line += fmt.Sprintf(", score %.1f/10", *r.QualityScore)
		}
		fmt.Fprintln(w, line)
	}
	for _, note := range task.Notes {
		fmt.Fprintf(w, "  Note: %s\n", note)
	}

	if r, ok := task.Result(models.StageFormat); ok && r.Output != nil && r.Output.Format != nil {
		fmt.Fprintf(w, "\n%s\n", r.Output.Format.Markdown)
	}
	if task.Status == models.TaskAwaitingApproval {
		fmt.Fprintf(w, "\nTask is awaiting approval; approve it via the API to publish.\n")
	}
}
