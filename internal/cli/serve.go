package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: "Serve exposes projects, certificates, comments and stats over HTTP, accepts\n" +
			"multipart comment posts, and publishes Prometheus metrics on /metrics.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.settings.Server.Addr
			}
			gin.SetMode(gin.ReleaseMode)
			router, err := server.New(server.Deps{
				Fetcher:      a.fetcher,
				Submitter:    a.submitter,
				Gatherer:     a.registry,
				StartYear:    a.settings.Stats.StartYear,
				CommentRate:  a.settings.Server.CommentRate,
				CommentBurst: a.settings.Server.CommentBurst,
				Logger:       a.log,

				TrustedProxies: a.settings.Server.Proxies(),
			})
			if err != nil {
				return &sysError{err}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, addr, router, a.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}
