package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/all-black-493/supportly/internal/adapters/driving/httpapi"
	"github.com/all-black-493/supportly/internal/logger"
)

var (
	serveAddr      string
	serveEphemeral bool
	serveNoWatch   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API.

Clients authenticate with "Authorization: Bearer <token>"; each token maps to
one organisation (see "supportly settings apikey"). The config file is watched
and reloaded, so keys can be added or revoked without a restart.

Routes:
  POST   /api/entries        upload a file (multipart field "file")
  GET    /api/entries        list entries
  GET    /api/entries/{id}   show an entry
  DELETE /api/entries/{id}   delete an entry
  POST   /api/query          {"query": "...", "top_k": 5}
  GET    /files/{storageId}  download an uploaded file
  GET    /healthz            liveness`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")
	serveCmd.Flags().BoolVar(&serveEphemeral, "ephemeral", false, "keep all data in memory")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload the config file on change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, serveEphemeral)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	if len(a.cfg.Auth.Keys) == 0 {
		logger.Warn("no API keys configured; every request will be rejected")
	}

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	if !serveNoWatch {
		go func() {
			err := a.config.Watch(ctx, func() {
				if err := a.settings.Validate(); err != nil {
					logger.Warn("reloaded config is invalid: %v", err)
					return
				}
				logger.Info("config reloaded from %s", a.config.Path())
			})
			if err != nil && ctx.Err() == nil {
				logger.Warn("config watch stopped: %v", err)
			}
		}()
	}

	server := httpapi.New(httpapi.Config{
		Addr:            addr,
		AllowAllOrigins: a.cfg.Server.AllowAllOrigins,
		MaxUploadBytes:  a.cfg.Ingest.MaxBytes,
	}, httpapi.Ports{
		Ingestion: a.ingestion,
		Retrieval: a.retrieval,
		Lifecycle: a.lifecycle,
		Blobs:     a.blobs,
		Keys:      a.settings,
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "supportly API listening on %s\n", addr)
	return server.Run(ctx)
}

// cmdContext returns the command's context, or Background when run
// without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
