package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// PlanStage is a single costed stage within an execution plan.
type PlanStage struct {
	Kind              StageKind     `json:"kind"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
	EstimatedCost     float64       `json:"estimated_cost"`
	EstimatedTokens   int           `json:"estimated_tokens"`
	DependsOn         []StageKind   `json:"depends_on,omitempty"`
}

// ExecutionPlan is the costed, ordered stage sequence produced by the planner.
// After confirmation the stage list is frozen; estimates are advisory only and
// never gate execution.
type ExecutionPlan struct {
	Stages                []PlanStage       `json:"stages"`
	TotalDuration         time.Duration     `json:"total_duration"`
	TotalCost             float64           `json:"total_cost"`
	TotalTokens           int               `json:"total_tokens"`
	Strategy              ExecutionStrategy `json:"parallelization_strategy"`
	EstimatedQualityScore float64           `json:"estimated_quality_score"`
	SuccessProbability    float64           `json:"success_probability"`
	UserConfirmed         bool              `json:"user_confirmed"`
}

// HasStage reports whether the plan contains a stage of the given kind.
func (p *ExecutionPlan) HasStage(kind StageKind) bool {
	for _, s := range p.Stages {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// Stage returns the plan stage of the given kind, if present.
func (p *ExecutionPlan) Stage(kind StageKind) (PlanStage, bool) {
	for _, s := range p.Stages {
		if s.Kind == kind {
			return s, true
		}
	}
	return PlanStage{}, false
}

// StageKinds returns the plan's stage kinds in declared order.
func (p *ExecutionPlan) StageKinds() []StageKind {
	kinds := make([]StageKind, len(p.Stages))
	for i, s := range p.Stages {
		kinds[i] = s.Kind
	}
	return kinds
}

// Validate checks structural plan invariants: known, unique stage kinds,
// totals matching per-stage sums, dependency closure within the plan, and a
// stage ordering that respects every depends_on edge.
func (p *ExecutionPlan) Validate() error {
	if len(p.Stages) == 0 {
		return errors.New("plan has no stages")
	}

	seen := make(map[StageKind]int, len(p.Stages))
	var cost float64
	var duration time.Duration
	var tokens int
	for i, s := range p.Stages {
		if !s.Kind.Valid() {
			return fmt.Errorf("stage %d: unknown kind %q", i, s.Kind)
		}
		if _, dup := seen[s.Kind]; dup {
			return fmt.Errorf("duplicate stage %q", s.Kind)
		}
		seen[s.Kind] = i
		cost += s.EstimatedCost
		duration += s.EstimatedDuration
		tokens += s.EstimatedTokens
	}

	if math.Abs(cost-p.TotalCost) > 1e-9 {
		return fmt.Errorf("total cost %.4f does not match stage sum %.4f", p.TotalCost, cost)
	}
	if tokens != p.TotalTokens {
		return fmt.Errorf("total tokens %d does not match stage sum %d", p.TotalTokens, tokens)
	}

	// Every dependency must exist in the plan and precede its dependent.
	for i, s := range p.Stages {
		for _, dep := range s.DependsOn {
			j, ok := seen[dep]
			if !ok {
				return fmt.Errorf("stage %q depends on %q which is not in the plan", s.Kind, dep)
			}
			if j >= i {
				return fmt.Errorf("stage %q ordered before its dependency %q", s.Kind, dep)
			}
		}
	}

	if HasCyclicDependencies(p.Stages) {
		return errors.New("plan has cyclic stage dependencies")
	}

	if p.EstimatedQualityScore < 0 || p.EstimatedQualityScore > 100 {
		return fmt.Errorf("estimated quality score %.1f out of range [0,100]", p.EstimatedQualityScore)
	}
	if p.SuccessProbability < 0 || p.SuccessProbability > 1 {
		return fmt.Errorf("success probability %.2f out of range [0,1]", p.SuccessProbability)
	}

	return nil
}

// HasCyclicDependencies detects circular dependencies between plan stages
// using DFS with color marking (white=unvisited, gray=visiting, black=visited).
func HasCyclicDependencies(stages []PlanStage) bool {
	graph := make(map[StageKind][]StageKind)
	known := make(map[StageKind]bool)

	for _, s := range stages {
		known[s.Kind] = true
		graph[s.Kind] = []StageKind{}
	}

	// If stage A depends on B, edge B -> A.
	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if dep == s.Kind {
				return true
			}
			if known[dep] {
				graph[dep] = append(graph[dep], s.Kind)
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)

	colors := make(map[StageKind]int, len(known))
	for k := range known {
		colors[k] = white
	}

	var dfs func(StageKind) bool
	dfs = func(node StageKind) bool {
		colors[node] = gray
		for _, neighbor := range graph[node] {
			if colors[neighbor] == gray {
				return true
			}
			if colors[neighbor] == white && dfs(neighbor) {
				return true
			}
		}
		colors[node] = black
		return false
	}

	for k := range known {
		if colors[k] == white && dfs(k) {
			return true
		}
	}

	return false
}

// PlanSummary is the human-readable rendering of a plan shown to the user
// before confirmation.
type PlanSummary struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EstimatedTime string   `json:"estimated_time"`
	EstimatedCost string   `json:"estimated_cost"`
	Confidence    string   `json:"confidence"`
	KeyStages     []string `json:"key_stages"`
	Warnings      []string `json:"warnings,omitempty"`
	Opportunities []string `json:"opportunities,omitempty"`
}
