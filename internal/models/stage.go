package models

import "fmt"

// StageKind identifies one of the fixed pipeline stages.
type StageKind string

const (
	StageResearch       StageKind = "research"
	StageCreative       StageKind = "creative"
	StageQualityReview  StageKind = "quality_review"
	StageAssetSelection StageKind = "asset_selection"
	StageFormat         StageKind = "format"
)

// AllStageKinds lists every known stage kind in canonical pipeline order.
var AllStageKinds = []StageKind{
	StageResearch,
	StageCreative,
	StageQualityReview,
	StageAssetSelection,
	StageFormat,
}

// Valid reports whether the stage kind is one of the known kinds.
func (k StageKind) Valid() bool {
	switch k {
	case StageResearch, StageCreative, StageQualityReview, StageAssetSelection, StageFormat:
		return true
	}
	return false
}

// String returns the wire representation of the stage kind.
func (k StageKind) String() string {
	return string(k)
}

// ParseStageKind converts a wire string into a StageKind.
func ParseStageKind(s string) (StageKind, error) {
	k := StageKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown stage kind %q", s)
	}
	return k, nil
}
