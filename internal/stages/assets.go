package stages

import (
	"context"
	"fmt"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/provider"
)

// Default number of assets requested from the searcher.
const defaultAssetLimit = 3

// AssetExecutor selects visual assets for the drafted content.
type AssetExecutor struct {
	Searcher provider.ImageSearcher
	Limit    int
}

// Kind implements Executor.
func (e *AssetExecutor) Kind() models.StageKind {
	return models.StageAssetSelection
}

// Execute implements Executor. When the searcher returns nothing the executor
// reports ErrNoAssets alongside an empty (but valid) output, leaving the
// proceed-or-fail decision to the caller's policy.
func (e *AssetExecutor) Execute(ctx context.Context, in Input) (models.StageOutput, error) {
	query := in.Topic
	if draft, ok := in.Outputs[models.StageCreative]; ok && draft.Creative != nil && draft.Creative.Title != "" {
		query = draft.Creative.Title
	}
	if query == "" {
		return models.StageOutput{}, fmt.Errorf("asset selection: no query available")
	}

	limit := e.Limit
	if limit <= 0 {
		limit = defaultAssetLimit
	}

	assets, err := e.Searcher.Search(ctx, query, limit)
	if err != nil {
		return models.StageOutput{}, fmt.Errorf("asset search: %w", err)
	}

	out := models.StageOutput{
		Kind:           models.StageAssetSelection,
		AssetSelection: &models.AssetSelectionOutput{Query: query, Assets: assets},
	}
	if len(assets) == 0 {
		return out, ErrNoAssets
	}
	return out, nil
}
