package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harrison/maestro/internal/models"
)

// stageDisplayNames are the human-facing stage labels used in summaries.
var stageDisplayNames = map[models.StageKind]string{
	models.StageResearch:       "Research",
	models.StageCreative:       "Creative draft",
	models.StageQualityReview:  "Quality review",
	models.StageAssetSelection: "Asset selection",
	models.StageFormat:         "Formatting",
}

// Summarize renders the human-readable plan summary shown before
// confirmation, including warnings and improvement opportunities.
func (p *Planner) Summarize(intent *models.Intent, plan *models.ExecutionPlan) *models.PlanSummary {
	topic := intent.Topic()
	if topic == "" {
		topic = "your request"
	}

	s := &models.PlanSummary{
		Title:         summaryTitle(intent.TaskType, topic),
		EstimatedTime: humanDuration(plan.TotalDuration),
		EstimatedCost: fmt.Sprintf("$%.2f", plan.TotalCost),
		Confidence:    confidenceLabel(intent.Confidence),
	}

	for _, stage := range plan.Stages {
		s.KeyStages = append(s.KeyStages, stageDisplayNames[stage.Kind])
	}

	s.Description = fmt.Sprintf(
		"%d-stage %s pipeline on %q with an estimated quality score of %.0f/100 and a %.0f%% success likelihood.",
		len(plan.Stages), strings.ReplaceAll(intent.TaskType, "_", " "), topic,
		plan.EstimatedQualityScore, plan.SuccessProbability*100,
	)

	if intent.Confidence < 0.5 {
		s.Warnings = append(s.Warnings, "Classification confidence is low; review the planned stages before confirming.")
	}
	if plan.SuccessProbability < 0.8 {
		s.Warnings = append(s.Warnings, fmt.Sprintf("Estimated success probability is %.0f%%; consider a simpler plan.", plan.SuccessProbability*100))
	}
	if budget := intent.Parameter("budget_ceiling"); budget != "" {
		if ceiling, err := strconv.ParseFloat(budget, 64); err == nil && plan.TotalCost > ceiling {
			s.Warnings = append(s.Warnings, fmt.Sprintf("Estimated cost $%.2f exceeds the requested $%.2f ceiling.", plan.TotalCost, ceiling))
		}
	}

	if intent.QualityPreference() == models.QualityHigh {
		if !plan.HasStage(models.StageQualityReview) {
			s.Opportunities = append(s.Opportunities, "Add a quality review stage to match the high quality preference.")
		}
		if !plan.HasStage(models.StageAssetSelection) {
			s.Opportunities = append(s.Opportunities, "Add asset selection for richer output.")
		}
	}
	if intent.QualityPreference() == models.QualityDraft {
		s.Opportunities = append(s.Opportunities, "Draft preference keeps cost low; rerun with a higher preference for publishable output.")
	}

	return s
}

func summaryTitle(taskType, topic string) string {
	switch taskType {
	case models.TaskTypeBlogPost:
		return fmt.Sprintf("Blog post: %s", topic)
	case models.TaskTypeSocialMedia:
		return fmt.Sprintf("Social media content: %s", topic)
	default:
		return fmt.Sprintf("Content task: %s", topic)
	}
}

func confidenceLabel(confidence float64) string {
	switch {
	case confidence >= 0.75:
		return "high"
	case confidence >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

// humanDuration renders a duration as a compact "1m40s" style string,
// rounding away sub-second noise.
func humanDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
