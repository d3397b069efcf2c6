package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/resection-analyzer/pkg/logging"
	"github.com/ritzau/resection-analyzer/pkg/pubsub"
	"github.com/ritzau/resection-analyzer/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve classification and centrality over HTTP",
	Long: `Starts an HTTP API:

  GET  /api/health
  GET  /api/patients
  GET  /api/patients/{id}/resected?dilate=N
  POST /api/centrality   {"adjacency": [[...]], "nodes": [...], "perNode": false}
  GET  /api/events       report progress as Server-Sent Events (with --watch)

With --watch the server also keeps reports current as in the watch command.`,
	Example: `  resection-analyzer serve --port 9090
  resection-analyzer serve --watch --radii 0,1,2`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP port")
	serveCmd.Flags().Bool("watch", false, "keep reports current and stream progress")
	addWatchFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	patients, err := loadPatients()
	if err != nil {
		return err
	}
	logging.Info("patient data loaded", "path", cfg.Data, "patients", len(patients.IDs()))

	server := web.NewServer(patients)
	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return server.Start(cmd.Context(), cfg.Port)
	}

	runner, err := newRunner(patients)
	if err != nil {
		return err
	}
	broker := pubsub.NewBroker()
	runner.PublishTo(broker)
	server.StreamEvents(broker)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return server.Start(ctx, cfg.Port) })
	g.Go(func() error { return watchLoop(ctx, cmd, patients, runner) })
	g.Go(func() error {
		// Ends open event streams so shutdown does not wait on them
		<-ctx.Done()
		return broker.Close()
	})
	return g.Wait()
}
