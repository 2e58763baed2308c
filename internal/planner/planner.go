// Package planner turns a classified intent into a concrete, costed
// execution plan. Planning is pure estimation: it never executes anything,
// and actual stage costs recorded after execution may diverge from the
// estimates without triggering re-planning.
package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/harrison/maestro/internal/models"
)

// StageCost holds the base per-stage estimates before the quality multiplier
// is applied.
type StageCost struct {
	Duration time.Duration
	Cost     float64
	Tokens   int
}

// baseCosts is the static stage cost table.
var baseCosts = map[models.StageKind]StageCost{
	models.StageResearch:       {Duration: 40 * time.Second, Cost: 0.08, Tokens: 3000},
	models.StageCreative:       {Duration: 60 * time.Second, Cost: 0.15, Tokens: 5000},
	models.StageQualityReview:  {Duration: 30 * time.Second, Cost: 0.05, Tokens: 2000},
	models.StageAssetSelection: {Duration: 20 * time.Second, Cost: 0.04, Tokens: 800},
	models.StageFormat:         {Duration: 10 * time.Second, Cost: 0.01, Tokens: 300},
}

// stageDeps is the static dependency table. A stage's effective depends_on is
// the intersection of this set with the stages actually in the plan.
var stageDeps = map[models.StageKind][]models.StageKind{
	models.StageResearch:       nil,
	models.StageCreative:       {models.StageResearch},
	models.StageQualityReview:  {models.StageCreative},
	models.StageAssetSelection: {models.StageCreative},
	models.StageFormat: {
		models.StageResearch,
		models.StageCreative,
		models.StageQualityReview,
		models.StageAssetSelection,
	},
}

// successBaseRates are the per-task-type base success probabilities.
var successBaseRates = map[string]float64{
	models.TaskTypeBlogPost:    0.92,
	models.TaskTypeSocialMedia: 0.90,
	models.TaskTypeGeneric:     0.85,
}

// Quality estimate constants.
const (
	baseQualityScore     = 70.0
	qualityReviewBonus   = 15.0
	assetSelectionBonus  = 5.0
	perStageSuccessDecay = 0.02
	freeStageCount       = 2
)

// LiveMetrics carries observed per-stage averages from prior executions.
// Zero values fall back to the static cost table.
type LiveMetrics struct {
	StageDurations map[models.StageKind]time.Duration
	StageCosts     map[models.StageKind]float64
}

// MetricsFromTasks derives live metrics from the durable records of finished
// tasks, averaging observed stage durations per kind.
func MetricsFromTasks(tasks []*models.Task) LiveMetrics {
	sums := make(map[models.StageKind]time.Duration)
	counts := make(map[models.StageKind]int)
	for _, t := range tasks {
		for kind, r := range t.StageResults {
			if r.Duration > 0 && r.Succeeded() {
				sums[kind] += r.Duration
				counts[kind]++
			}
		}
	}
	durations := make(map[models.StageKind]time.Duration, len(sums))
	for kind, sum := range sums {
		durations[kind] = sum / time.Duration(counts[kind])
	}
	return LiveMetrics{StageDurations: durations}
}

// Planner synthesizes execution plans from intents.
type Planner struct{}

// New returns a Planner.
func New() *Planner {
	return &Planner{}
}

// Plan builds the costed plan for an intent. The returned plan is
// unconfirmed; confirmation freezes the stage list.
func (p *Planner) Plan(intent *models.Intent, metrics LiveMetrics) (*models.ExecutionPlan, error) {
	if err := intent.Validate(); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	multiplier := intent.QualityPreference().Multiplier()

	present := make(map[models.StageKind]bool, len(intent.SuggestedSubtasks))
	for _, k := range intent.SuggestedSubtasks {
		present[k] = true
	}

	ordered := orderStages(intent.SuggestedSubtasks)

	plan := &models.ExecutionPlan{
		Strategy: intent.ExecutionStrategy,
	}
	if plan.Strategy == "" {
		plan.Strategy = models.StrategySequential
	}

	for _, kind := range ordered {
		base, ok := baseCosts[kind]
		if !ok {
			return nil, fmt.Errorf("plan: no cost entry for stage %q", kind)
		}
		duration := base.Duration
		if d := metrics.StageDurations[kind]; d > 0 {
			duration = d
		}
		cost := base.Cost
		if c := metrics.StageCosts[kind]; c > 0 {
			cost = c
		}

		stage := models.PlanStage{
			Kind:              kind,
			EstimatedDuration: time.Duration(float64(duration) * multiplier),
			EstimatedCost:     round4(cost * multiplier),
			EstimatedTokens:   base.Tokens,
			DependsOn:         intersectDeps(kind, present),
		}
		plan.Stages = append(plan.Stages, stage)
		plan.TotalDuration += stage.EstimatedDuration
		plan.TotalCost = round4(plan.TotalCost + stage.EstimatedCost)
		plan.TotalTokens += stage.EstimatedTokens
	}

	plan.EstimatedQualityScore = estimateQuality(present, multiplier)
	plan.SuccessProbability = estimateSuccess(intent.TaskType, len(plan.Stages), intent.QualityPreference())

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan: synthesized invalid plan: %w", err)
	}
	return plan, nil
}

// orderStages returns the suggested stages in canonical pipeline order, which
// topologically satisfies the static dependency table.
func orderStages(suggested []models.StageKind) []models.StageKind {
	present := make(map[models.StageKind]bool, len(suggested))
	for _, k := range suggested {
		present[k] = true
	}
	var ordered []models.StageKind
	for _, k := range models.AllStageKinds {
		if present[k] {
			ordered = append(ordered, k)
		}
	}
	return ordered
}

func intersectDeps(kind models.StageKind, present map[models.StageKind]bool) []models.StageKind {
	var deps []models.StageKind
	for _, dep := range stageDeps[kind] {
		if present[dep] {
			deps = append(deps, dep)
		}
	}
	return deps
}

// estimateQuality applies the fixed quality formula: base 70, +15 when the
// plan includes quality review, +5 when it includes asset selection, scaled
// by the preference multiplier and clamped to [0,100].
func estimateQuality(present map[models.StageKind]bool, multiplier float64) float64 {
	score := baseQualityScore
	if present[models.StageQualityReview] {
		score += qualityReviewBonus
	}
	if present[models.StageAssetSelection] {
		score += assetSelectionBonus
	}
	score *= multiplier
	return math.Min(math.Max(score, 0), 100)
}

// estimateSuccess starts from the task type's base rate, decays by 0.02 per
// stage beyond two, and scales for the quality preference (high quality work
// is slightly riskier, drafts slightly safer).
func estimateSuccess(taskType string, stageCount int, pref models.QualityPreference) float64 {
	base, ok := successBaseRates[taskType]
	if !ok {
		base = successBaseRates[models.TaskTypeGeneric]
	}
	extra := stageCount - freeStageCount
	if extra > 0 {
		base -= perStageSuccessDecay * float64(extra)
	}
	switch pref {
	case models.QualityHigh:
		base *= 0.95
	case models.QualityDraft:
		base *= 1.05
	}
	return math.Min(math.Max(base, 0), 1)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
