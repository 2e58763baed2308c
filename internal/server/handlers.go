package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/harrison/maestro/internal/executor"
	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/planner"
	"github.com/harrison/maestro/internal/router"
	"github.com/harrison/maestro/internal/stages"
	"github.com/harrison/maestro/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type intentRequest struct {
	Input string `json:"input"`

	// QualityPreference overrides the preference inferred from the text.
	QualityPreference string `json:"quality_preference,omitempty"`
}

type intentResponse struct {
	Intent               *models.Intent        `json:"intent"`
	Plan                 *models.ExecutionPlan `json:"plan"`
	Summary              *models.PlanSummary   `json:"summary"`
	RequiresConfirmation bool                  `json:"requires_confirmation"`
}

// handleIntent classifies free text and returns the costed plan for review.
// Nothing is persisted; confirmation happens on /api/confirm-intent.
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	intent, err := s.deps.Classifier.Classify(req.Input)
	if err != nil {
		if errors.Is(err, router.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := applyQualityOverride(intent, req.QualityPreference); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := s.deps.Planner.Plan(intent, s.liveMetrics(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, intentResponse{
		Intent:               intent,
		Plan:                 plan,
		Summary:              s.deps.Planner.Summarize(intent, plan),
		RequiresConfirmation: intent.RequiresConfirmation,
	})
}

type confirmRequest struct {
	// Intent is the classified intent returned by /api/intent, passed back
	// after the user reviewed the plan. The plan is re-derived server-side
	// so a tampered client plan cannot change the costed stages.
	Intent *models.Intent `json:"intent"`

	// Name optionally overrides the generated task name.
	Name string `json:"name,omitempty"`
}

type taskResponse struct {
	Task *models.Task `json:"task"`
}

// handleConfirmIntent freezes the plan, creates the task, and starts
// execution in the background.
func (s *Server) handleConfirmIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Intent == nil {
		writeError(w, http.StatusBadRequest, "intent is required")
		return
	}
	if err := req.Intent.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := s.deps.Planner.Plan(req.Intent, s.liveMetrics(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.deps.Budget > 0 && plan.TotalCost > s.deps.Budget {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("plan cost $%.2f exceeds the configured $%.2f budget", plan.TotalCost, s.deps.Budget))
		return
	}
	plan.UserConfirmed = true

	name := req.Name
	if name == "" {
		name = s.deps.Planner.Summarize(req.Intent, plan).Title
	}

	task := &models.Task{
		ID:         uuid.NewString(),
		Name:       name,
		Topic:      req.Intent.Topic(),
		TaskType:   req.Intent.TaskType,
		Status:     models.TaskPending,
		Parameters: req.Intent.Parameters,
		Plan:       *plan,
	}
	if err := s.deps.Store.Create(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.StartTask(task.ID)
	writeJSON(w, http.StatusAccepted, taskResponse{Task: task})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	task, err := s.deps.Store.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{Task: task})
}

type listResponse struct {
	Tasks []*models.Task `json:"tasks"`
	Count int            `json:"count"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := store.Filter{
		Status: models.TaskStatus(r.URL.Query().Get("status")),
	}

	var err error
	if v := r.URL.Query().Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil || filter.Offset < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
	}

	tasks, err := s.deps.Store.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, listResponse{Tasks: tasks, Count: len(tasks)})
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	task, err := s.deps.Orchestrator.RequestCancel(r.Context(), ps.ByName("id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, executor.ErrTaskTerminal):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{Task: task})
}

func (s *Server) handleApproveTask(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	task, err := s.deps.Orchestrator.Approve(r.Context(), ps.ByName("id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, executor.ErrNotAwaitingApproval):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{Task: task})
}

type stageRequest struct {
	Topic      string            `json:"topic"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// handleStage runs a single stage outside any plan and returns its
// StageResult. The stage gets the same timeout and retry treatment as plan
// execution; a failed result is reported as 422 with the result as the body.
// Stages that normally consume upstream outputs read their inputs from
// parameters instead (the quality review stage reviews the "content"
// parameter, for example).
func (s *Server) handleStage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	kind, err := models.ParseStageKind(ps.ByName("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.deps.Orchestrator.ExecuteStage(r.Context(), kind, stages.Input{
		Topic:      req.Topic,
		Parameters: req.Parameters,
		Revision:   1,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if result.Status == models.StageStatusFailed {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// liveMetrics folds completed task history into per-stage duration and cost
// estimates so plans track observed behavior.
func (s *Server) liveMetrics(r *http.Request) planner.LiveMetrics {
	tasks, err := s.deps.Store.List(r.Context(), store.Filter{
		Status: models.TaskCompleted,
		Limit:  50,
	})
	if err != nil {
		return planner.LiveMetrics{}
	}
	return planner.MetricsFromTasks(tasks)
}

func applyQualityOverride(intent *models.Intent, pref string) error {
	if pref == "" {
		return nil
	}
	if !models.QualityPreference(pref).Valid() {
		return fmt.Errorf("invalid quality preference %q, must be draft, balanced, or high", pref)
	}
	if intent.Parameters == nil {
		intent.Parameters = make(map[string]string)
	}
	intent.Parameters["quality_preference"] = pref
	return nil
}
