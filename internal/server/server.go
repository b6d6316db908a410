// Package server exposes the showcase collections and the guestbook over a
// JSON HTTP API built on gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/showcase/internal/logger"
	"github.com/mesh-intelligence/showcase/internal/showcase"
)

// maxMultipartMemory bounds the form bytes gin buffers in memory; larger
// uploads spill to temporary files.
const maxMultipartMemory = 8 << 20

// Deps are the collaborators the router serves from.
type Deps struct {
	Fetcher   *showcase.Fetcher
	Submitter *showcase.Submitter
	// Gatherer backs /metrics. Nil leaves the route unregistered.
	Gatherer  prometheus.Gatherer
	StartYear int
	// CommentRate is comment submissions per minute per client; 0 disables
	// the limit.
	CommentRate  float64
	CommentBurst int
	// TrustedProxies lists the proxy addresses or CIDRs whose
	// X-Forwarded-For header is believed. Empty means the peer address is
	// the client.
	TrustedProxies []string
	Logger         *slog.Logger
}

// New builds the router.
func New(d Deps) (*gin.Engine, error) {
	log := logger.OrDefault(d.Logger)

	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), requestLogger(log))

	h := &handlers{deps: d, log: log}

	api := r.Group("/api")
	api.GET("/projects", h.listProjects)
	api.GET("/projects/:id", h.getProject)
	api.GET("/certificates", h.listCertificates)
	api.GET("/comments", h.listComments)
	api.GET("/stats", h.stats)

	post := []gin.HandlerFunc{}
	if d.CommentRate > 0 {
		post = append(post, rateLimit(d.CommentRate, d.CommentBurst))
	}
	post = append(post, h.postComment)
	api.POST("/comments", post...)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not found")
	})
	return r, nil
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	log = logger.OrDefault(log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
