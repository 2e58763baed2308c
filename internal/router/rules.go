package router

import (
	"regexp"
	"strings"

	"github.com/harrison/maestro/internal/models"
)

// RuleClassifier is the shipped keyword/pattern classifier. It is a pure
// function over the input text and static tables, so classification has no
// side effects and is trivially testable.
type RuleClassifier struct {
	// ConfidenceThreshold below which requires_confirmation is forced.
	ConfidenceThreshold float64
}

// NewRuleClassifier returns a RuleClassifier with the default threshold.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{ConfidenceThreshold: DefaultConfidenceThreshold}
}

var (
	blogKeywords   = []string{"blog", "article", "write a post", "blog post", "write up", "essay"}
	socialKeywords = []string{"tweet", "social media", "thread", "linkedin post", "instagram", "caption"}

	urgencyKeywords = []string{"asap", "quickly", "fast", "urgent", "right away"}

	highQualityKeywords  = []string{"high quality", "high-quality", "polished", "publication ready", "best quality", "thorough"}
	draftQualityKeywords = []string{"rough draft", "quick draft", "draft quality", "quick and dirty", "just a draft"}

	topicPattern    = regexp.MustCompile(`(?i)(?:about|on|regarding|covering|explaining)\s+(.+?)(?:\s+(?:with|for|in|by|under)\b|[,.!?]|$)`)
	budgetPattern   = regexp.MustCompile(`(?i)(?:under|budget(?:\s+of)?|max(?:imum)?|up to)\s*\$\s*(\d+(?:\.\d+)?)`)
	deadlinePattern = regexp.MustCompile(`(?i)\bby\s+(today|tomorrow|tonight|monday|tuesday|wednesday|thursday|friday|saturday|sunday|next week|end of (?:day|week|month))\b`)
	tonePattern     = regexp.MustCompile(`(?i)\b(formal|casual|friendly|professional|playful|authoritative)\s+tone\b`)
	stylePattern    = regexp.MustCompile(`(?i)\bin\s+an?\s+(technical|conversational|academic|narrative|listicle)\s+style\b`)
)

var platformKeywords = map[string]string{
	"twitter":   "twitter",
	"x.com":     "twitter",
	"linkedin":  "linkedin",
	"facebook":  "facebook",
	"instagram": "instagram",
	"medium":    "medium",
}

// Classify implements Classifier. Unmatched input yields a low-confidence
// generic intent, never an error; only empty input is rejected.
func (c *RuleClassifier) Classify(text string) (*models.Intent, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}

	lower := strings.ToLower(trimmed)
	params := make(map[string]string)
	confidence := 0.35

	taskType := models.TaskTypeGeneric
	intentType := models.IntentGenericRequest
	if containsAny(lower, blogKeywords) {
		taskType = models.TaskTypeBlogPost
		intentType = models.IntentCreateContent
		confidence += 0.25
	} else if containsAny(lower, socialKeywords) {
		taskType = models.TaskTypeSocialMedia
		intentType = models.IntentCreateContent
		confidence += 0.25
	}

	if m := topicPattern.FindStringSubmatch(trimmed); len(m) > 1 {
		params["topic"] = strings.TrimSpace(m[1])
		confidence += 0.15
	}
	if m := budgetPattern.FindStringSubmatch(trimmed); len(m) > 1 {
		params["budget_ceiling"] = m[1]
		confidence += 0.05
	}
	if m := deadlinePattern.FindStringSubmatch(trimmed); len(m) > 1 {
		params["deadline"] = strings.ToLower(m[1])
		confidence += 0.05
	}
	if m := tonePattern.FindStringSubmatch(trimmed); len(m) > 1 {
		params["tone"] = strings.ToLower(m[1])
		confidence += 0.05
	}
	if m := stylePattern.FindStringSubmatch(trimmed); len(m) > 1 {
		params["style"] = strings.ToLower(m[1])
		confidence += 0.05
	}

	var platforms []string
	for keyword, platform := range platformKeywords {
		if strings.Contains(lower, keyword) {
			platforms = append(platforms, platform)
		}
	}
	if len(platforms) > 0 {
		params["platforms"] = strings.Join(dedupeSorted(platforms), ",")
		confidence += 0.05
	}

	switch {
	case containsAny(lower, highQualityKeywords):
		params["quality_preference"] = string(models.QualityHigh)
		confidence += 0.05
	case containsAny(lower, draftQualityKeywords):
		params["quality_preference"] = string(models.QualityDraft)
		confidence += 0.05
	}

	if strings.Contains(lower, "no image") || strings.Contains(lower, "without images") {
		params["require_images"] = "false"
	}
	if strings.Contains(lower, "with images") || strings.Contains(lower, "with pictures") {
		params["require_images"] = "true"
	}

	if confidence > 0.95 {
		confidence = 0.95
	}

	subtasks := DefaultSubtasks(taskType)
	if params["require_images"] == "false" {
		subtasks = removeKind(subtasks, models.StageAssetSelection)
	}

	strategy := models.StrategySequential
	if containsAny(lower, urgencyKeywords) {
		strategy = models.StrategyParallel
	}

	threshold := c.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	// Confirmation is required whenever the stage set incurs provider cost,
	// and unconditionally below the confidence threshold.
	requiresConfirmation := confidence < threshold || costIncurring(subtasks)

	return &models.Intent{
		IntentType:           intentType,
		TaskType:             taskType,
		Confidence:           confidence,
		Parameters:           params,
		SuggestedSubtasks:    subtasks,
		RequiresConfirmation: requiresConfirmation,
		ExecutionStrategy:    strategy,
	}, nil
}

// costIncurring reports whether any stage in the set calls a paid provider.
func costIncurring(kinds []models.StageKind) bool {
	for _, k := range kinds {
		switch k {
		case models.StageResearch, models.StageCreative, models.StageQualityReview, models.StageAssetSelection:
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func removeKind(kinds []models.StageKind, kind models.StageKind) []models.StageKind {
	out := kinds[:0]
	for _, k := range kinds {
		if k != kind {
			out = append(out, k)
		}
	}
	return out
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	// Stable order for deterministic parameter values.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
