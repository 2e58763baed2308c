package stages

import (
	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/provider"
	"github.com/harrison/maestro/internal/quality"
)

// NewRegistry wires the full executor set over the given capabilities.
func NewRegistry(gen provider.TextGenerator, images provider.ImageSearcher, eval *quality.Evaluator) Registry {
	return Registry{
		models.StageResearch:       &ResearchExecutor{Generator: gen},
		models.StageCreative:       &CreativeExecutor{Generator: gen},
		models.StageQualityReview:  &ReviewExecutor{Evaluator: eval},
		models.StageAssetSelection: &AssetExecutor{Searcher: images},
		models.StageFormat:         NewFormatExecutor(),
	}
}
