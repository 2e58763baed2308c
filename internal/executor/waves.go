package executor

import (
	"fmt"

	"github.com/harrison/maestro/internal/models"
)

// computeWaves groups the plan's stages into execution waves. Sequential
// strategy yields one stage per wave in plan order; parallel strategy groups
// stages by topological level so stages with no mutual dependency share a
// wave.
//
// QualityReview never appears in a wave: it is driven by the refinement loop
// attached to the creative stage, not scheduled independently.
func computeWaves(plan *models.ExecutionPlan) ([][]models.StageKind, error) {
	if plan.Strategy != models.StrategyParallel {
		var waves [][]models.StageKind
		for _, s := range plan.Stages {
			if s.Kind == models.StageQualityReview {
				continue
			}
			waves = append(waves, []models.StageKind{s.Kind})
		}
		return waves, nil
	}

	levels, err := stageLevels(plan)
	if err != nil {
		return nil, err
	}

	maxLevel := 0
	for _, lv := range levels {
		if lv > maxLevel {
			maxLevel = lv
		}
	}

	waves := make([][]models.StageKind, 0, maxLevel+1)
	for lv := 0; lv <= maxLevel; lv++ {
		var wave []models.StageKind
		// Iterate plan order so wave contents are deterministic.
		for _, s := range plan.Stages {
			if s.Kind == models.StageQualityReview {
				continue
			}
			if levels[s.Kind] == lv {
				wave = append(wave, s.Kind)
			}
		}
		if len(wave) > 0 {
			waves = append(waves, wave)
		}
	}
	return waves, nil
}

// stageLevels assigns each stage its topological level: 0 for stages with no
// dependencies, otherwise 1 + the maximum level among its dependencies.
func stageLevels(plan *models.ExecutionPlan) (map[models.StageKind]int, error) {
	if models.HasCyclicDependencies(plan.Stages) {
		return nil, fmt.Errorf("plan has cyclic stage dependencies")
	}

	deps := make(map[models.StageKind][]models.StageKind, len(plan.Stages))
	for _, s := range plan.Stages {
		deps[s.Kind] = s.DependsOn
	}

	levels := make(map[models.StageKind]int, len(plan.Stages))
	var level func(models.StageKind) int
	level = func(kind models.StageKind) int {
		if lv, ok := levels[kind]; ok {
			return lv
		}
		lv := 0
		for _, dep := range deps[kind] {
			if d := level(dep) + 1; d > lv {
				lv = d
			}
		}
		levels[kind] = lv
		return lv
	}

	for _, s := range plan.Stages {
		level(s.Kind)
	}
	return levels, nil
}
