package models

import "testing"

func validIntent() Intent {
	return Intent{
		IntentType: IntentCreateContent,
		TaskType:   TaskTypeBlogPost,
		Confidence: 0.85,
		Parameters: map[string]string{"topic": "solar panels"},
		SuggestedSubtasks: []StageKind{
			StageResearch, StageCreative, StageQualityReview, StageFormat,
		},
		ExecutionStrategy: StrategySequential,
	}
}

func TestIntentValidate(t *testing.T) {
	intent := validIntent()
	if err := intent.Validate(); err != nil {
		t.Fatalf("valid intent rejected: %v", err)
	}
}

func TestIntentValidateReviewRequiresCreative(t *testing.T) {
	intent := validIntent()
	intent.SuggestedSubtasks = []StageKind{
		StageResearch, StageQualityReview, StageFormat,
	}
	if err := intent.Validate(); err == nil {
		t.Error("expected error for quality_review without creative")
	}
}

func TestIntentValidateReviewWithCreative(t *testing.T) {
	intent := validIntent()
	intent.SuggestedSubtasks = []StageKind{StageCreative, StageQualityReview}
	if err := intent.Validate(); err != nil {
		t.Errorf("quality_review alongside creative rejected: %v", err)
	}
}

func TestIntentValidateUnknownQualityPreference(t *testing.T) {
	intent := validIntent()
	intent.Parameters["quality_preference"] = "bogus"
	if err := intent.Validate(); err == nil {
		t.Error("expected error for unknown quality preference")
	}
}

func TestIntentValidateKnownQualityPreferences(t *testing.T) {
	for _, pref := range []string{"draft", "balanced", "high"} {
		intent := validIntent()
		intent.Parameters["quality_preference"] = pref
		if err := intent.Validate(); err != nil {
			t.Errorf("preference %q rejected: %v", pref, err)
		}
	}
}

func TestIntentValidateConfidenceRange(t *testing.T) {
	intent := validIntent()
	intent.Confidence = 1.2
	if err := intent.Validate(); err == nil {
		t.Error("expected error for confidence out of range")
	}
}

func TestIntentValidateDuplicateSubtask(t *testing.T) {
	intent := validIntent()
	intent.SuggestedSubtasks = append(intent.SuggestedSubtasks, StageResearch)
	if err := intent.Validate(); err == nil {
		t.Error("expected error for duplicate subtask")
	}
}
