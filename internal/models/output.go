package models

// Criterion is one of the fixed quality-review scoring dimensions.
type Criterion string

const (
	CriterionClarity             Criterion = "clarity"
	CriterionAccuracy            Criterion = "accuracy"
	CriterionCompleteness        Criterion = "completeness"
	CriterionRelevance           Criterion = "relevance"
	CriterionOptimizationQuality Criterion = "optimization_quality"
	CriterionReadability         Criterion = "readability"
	CriterionEngagement          Criterion = "engagement"
)

// AllCriteria lists the fixed criterion set used by quality review.
var AllCriteria = []Criterion{
	CriterionClarity,
	CriterionAccuracy,
	CriterionCompleteness,
	CriterionRelevance,
	CriterionOptimizationQuality,
	CriterionReadability,
	CriterionEngagement,
}

// Source is a single research citation.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// Asset is a selected visual asset (image) for the content.
type Asset struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Attribution string `json:"attribution,omitempty"`
}

// ResearchOutput is the result of the research stage.
type ResearchOutput struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points,omitempty"`
	Sources   []Source `json:"sources,omitempty"`
}

// CreativeOutput is the drafted content produced by the creative stage.
// Revision counts how many drafts were produced for the task, starting at 1.
type CreativeOutput struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	WordCount int    `json:"word_count"`
	Revision  int    `json:"revision"`
}

// QualityReviewOutput is the evaluator verdict for a draft.
type QualityReviewOutput struct {
	Composite float64               `json:"composite"`
	Criteria  map[Criterion]float64 `json:"criteria"`
	Feedback  map[Criterion]string  `json:"feedback,omitempty"`
	Passed    bool                  `json:"passed"`
}

// AssetSelectionOutput is the set of assets chosen for the content.
type AssetSelectionOutput struct {
	Query  string  `json:"query"`
	Assets []Asset `json:"assets"`
}

// FormatOutput is the publish-ready rendering of the final draft.
// PublishedRef is set on approval once the publisher accepted the document.
type FormatOutput struct {
	Platform     string `json:"platform,omitempty"`
	Markdown     string `json:"markdown"`
	HTML         string `json:"html"`
	PublishedRef string `json:"published_ref,omitempty"`
}

// StageOutput is a tagged variant holding exactly one per-kind payload.
// The Kind field selects which pointer is populated.
type StageOutput struct {
	Kind           StageKind             `json:"kind"`
	Research       *ResearchOutput       `json:"research,omitempty"`
	Creative       *CreativeOutput       `json:"creative,omitempty"`
	QualityReview  *QualityReviewOutput  `json:"quality_review,omitempty"`
	AssetSelection *AssetSelectionOutput `json:"asset_selection,omitempty"`
	Format         *FormatOutput         `json:"format,omitempty"`
}
