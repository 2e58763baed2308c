package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/planner"
	"github.com/harrison/maestro/internal/router"
)

// NewClassifyCommand creates the classify command
func NewClassifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <request text>",
		Short: "Classify a request and show the costed plan without running it",
		Long: `Classify free text into a structured intent and print the execution plan
maestro would run for it, with estimated duration, cost, quality score, and
success probability. Nothing is executed or persisted.

Examples:
  maestro classify "Write a blog post about sustainable energy"
  maestro classify --quality draft "tweet about our product launch"
  maestro classify --json "write an article on edge computing"`,
		Args: cobra.MinimumNArgs(1),
		RunE: classifyCommand,
	}

	cmd.Flags().String("quality", "", "Override quality preference: draft, balanced, high")
	cmd.Flags().Bool("json", false, "Emit the intent, plan, and summary as JSON")

	return cmd
}

// classifyCommand implements the classify command logic
func classifyCommand(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")

	classifier := router.NewRuleClassifier()
	intent, err := classifier.Classify(input)
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

	p := planner.New()
	plan, err := p.Plan(intent, planner.LiveMetrics{})
	if err != nil {
		return err
	}
	summary := p.Summarize(intent, plan)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"intent":  intent,
			"plan":    plan,
			"summary": summary,
		})
	}

	printSummary(cmd.OutOrStdout(), intent, plan, summary)
	return nil
}

func printSummary(w io.Writer, intent *models.Intent, plan *models.ExecutionPlan, summary *models.PlanSummary) {
	fmt.Fprintf(w, "%s\n\n", summary.Title)
	fmt.Fprintf(w, "  Intent:      %s (%s), confidence %.2f (%s)\n",
		intent.IntentType, intent.TaskType, intent.Confidence, summary.Confidence)
	fmt.Fprintf(w, "  Strategy:    %s\n", plan.Strategy)
	fmt.Fprintf(w, "  Estimated:   %s, %s, ~%d tokens\n",
		summary.EstimatedTime, summary.EstimatedCost, plan.TotalTokens)
	fmt.Fprintf(w, "  Quality:     %.0f/100 estimated, %.0f%% success probability\n",
		plan.EstimatedQualityScore, plan.SuccessProbability*100)

	fmt.Fprintf(w, "\n  Stages:\n")
	for _, stage := range plan.Stages {
		deps := ""
		if len(stage.DependsOn) > 0 {
			parts := make([]string, len(stage.DependsOn))
			for i, d := range stage.DependsOn {
				parts[i] = string(d)
			}
			deps = " (after " + strings.Join(parts, ", ") + ")"
		}
		fmt.Fprintf(w, "    - %-16s %6s  $%.2f%s\n",
			stage.Kind, stage.EstimatedDuration, stage.EstimatedCost, deps)
	}

	for _, warning := range summary.Warnings {
		fmt.Fprintf(w, "\n  Warning: %s", warning)
	}
	for _, opp := range summary.Opportunities {
		fmt.Fprintf(w, "\n  Tip: %s", opp)
	}
	if len(summary.Warnings)+len(summary.Opportunities) > 0 {
		fmt.Fprintln(w)
	}

	if intent.RequiresConfirmation {
		fmt.Fprintf(w, "\n  This plan requires confirmation before execution.\n")
	}
}
