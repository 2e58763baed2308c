package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/server"
	"github.com/harrison/maestro/internal/store"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the maestro HTTP API",
		Long: `Start the HTTP API that classifies intents, plans pipelines, and runs
confirmed tasks in the background.

The data directory is locked for exclusive use: two servers sharing a task
database would double-execute stages.

Endpoints:
  POST /api/intent             classify text and return the costed plan
  POST /api/confirm-intent     freeze the plan, create the task, start it
  GET  /api/tasks              list tasks (status, limit, offset filters)
  GET  /api/tasks/:id          fetch one task with its stage results
  POST /api/tasks/:id/cancel   request cooperative cancellation
  POST /api/tasks/:id/approve  publish a task held for approval
  POST /api/stages/:kind       run a single stage standalone
  GET  /health                 liveness probe

Examples:
  maestro serve
  maestro serve --addr :9000 --data-dir /var/lib/maestro
  maestro serve --config custom.yaml --log-level debug`,
		Args: cobra.NoArgs,
		RunE: serveCommand,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("addr", "", "Listen address (overrides config listen_addr)")

	return cmd
}

// serveCommand implements the serve command logic
func serveCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.ListenAddr, _ = cmd.Flags().GetString("addr")
	}

	p, err := buildPipeline(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	srv := server.NewServer(cfg.ListenAddr, server.Deps{
		Store:        p.store,
		Classifier:   p.classifier,
		Planner:      p.planner,
		Orchestrator: p.orch,
		Logger:       p.log,
		Budget:       cfg.Budget,
	})

	// Resume tasks the previous process left mid-run.
	resumed, err := resumeInterrupted(cmd, p, srv)
	if err != nil {
		return err
	}
	if resumed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Resuming %d interrupted task(s)\n", resumed)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		return srv.Stop()
	}
}

// resumeInterrupted restarts tasks left in_progress by a previous process.
// Completed stages were persisted, so each task resumes at its next stage.
func resumeInterrupted(cmd *cobra.Command, p *pipeline, srv *server.Server) (int, error) {
	tasks, err := p.store.List(cmd.Context(), store.Filter{Status: models.TaskInProgress})
	if err != nil {
		return 0, fmt.Errorf("failed to list interrupted tasks: %w", err)
	}
	for _, t := range tasks {
		srv.StartTask(t.ID)
	}
	return len(tasks), nil
}
