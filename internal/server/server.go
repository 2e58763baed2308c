// Package server provides the HTTP interface to the routing, planning, and
// orchestration pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/harrison/maestro/internal/executor"
	"github.com/harrison/maestro/internal/logger"
	"github.com/harrison/maestro/internal/planner"
	"github.com/harrison/maestro/internal/router"
	"github.com/harrison/maestro/internal/store"
)

// Deps holds everything the HTTP handlers delegate to.
type Deps struct {
	Store        store.Store
	Classifier   router.Classifier
	Planner      *planner.Planner
	Orchestrator *executor.Orchestrator
	Logger       *logger.ConsoleLogger

	// Budget is the per-task cost ceiling in dollars; confirmation rejects
	// plans that exceed it. Zero disables the ceiling.
	Budget float64
}

// Server provides the HTTP interface for maestro.
type Server struct {
	deps   Deps
	addr   string
	server *http.Server
	router *httprouter.Router

	// runCtx is the lifetime of background task runs; Stop cancels it and
	// waits for in-flight runs to persist their state.
	runCtx    context.Context
	runCancel context.CancelFunc
	runs      sync.WaitGroup
}

// NewServer creates a new maestro API server.
func NewServer(addr string, deps Deps) *Server {
	runCtx, runCancel := context.WithCancel(context.Background())
	s := &Server{
		deps:      deps,
		addr:      addr,
		router:    httprouter.New(),
		runCtx:    runCtx,
		runCancel: runCancel,
	}

	s.setupRoutes()
	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	s.logInfo("listening on " + s.addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the HTTP server and waits for in-flight task runs to reach a
// durable state.
func (s *Server) Stop() error {
	s.runCancel()
	s.runs.Wait()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Handler exposes the route table, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	// Intent classification and plan confirmation
	s.router.POST("/api/intent", s.handleIntent)
	s.router.POST("/api/confirm-intent", s.handleConfirmIntent)

	// Task lifecycle
	s.router.GET("/api/tasks", s.handleListTasks)
	s.router.GET("/api/tasks/:id", s.handleGetTask)
	s.router.POST("/api/tasks/:id/cancel", s.handleCancelTask)
	s.router.POST("/api/tasks/:id/approve", s.handleApproveTask)

	// Standalone stage execution
	s.router.POST("/api/stages/:kind", s.handleStage)
}

// StartTask launches the task's pipeline execution in the background. Run
// persists every transition, so a crash mid-run leaves a resumable task.
// Already-completed stages are skipped, which also makes this the resume
// entry point for tasks a previous process left in progress.
func (s *Server) StartTask(taskID string) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if err := s.deps.Orchestrator.Run(s.runCtx, taskID); err != nil {
			s.logError("task " + taskID + ": " + err.Error())
		}
	}()
}

func (s *Server) logInfo(msg string) {
	if s.deps.Logger != nil {
		s.deps.Logger.LogInfo(msg)
	}
}

func (s *Server) logError(msg string) {
	if s.deps.Logger != nil {
		s.deps.Logger.LogError(msg)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
