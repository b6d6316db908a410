package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/blob"
	"github.com/mesh-intelligence/showcase/internal/config"
	"github.com/mesh-intelligence/showcase/internal/jsonl"
	"github.com/mesh-intelligence/showcase/internal/logger"
	"github.com/mesh-intelligence/showcase/internal/memory"
	"github.com/mesh-intelligence/showcase/internal/metrics"
	"github.com/mesh-intelligence/showcase/internal/paths"
	"github.com/mesh-intelligence/showcase/internal/remote"
	"github.com/mesh-intelligence/showcase/internal/showcase"
	"github.com/mesh-intelligence/showcase/internal/sqlite"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// snapshotStore is a SnapshotStore that must be detached when done.
type snapshotStore interface {
	types.SnapshotStore
	Detach() error
}

// app is the wiring shared by commands that read or post content.
type app struct {
	settings  *config.Settings
	log       *slog.Logger
	snapshots snapshotStore
	registry  *prometheus.Registry
	fetcher   *showcase.Fetcher
	submitter *showcase.Submitter
}

// openApp loads configuration and connects the remote service, blob
// storage and snapshot store. The caller must defer app.Close().
func openApp(cmd *cobra.Command) (*app, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, &sysError{fmt.Errorf("resolve config dir: %w", err)}
	}
	settings, err := config.Load(configDir)
	if err != nil {
		return nil, &sysError{err}
	}

	log := logger.Init(logger.Config{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
	}, cmd.ErrOrStderr())

	cfg, err := snapshotConfig(settings)
	if err != nil {
		return nil, &sysError{err}
	}
	snapshots, err := openSnapshots(cfg)
	if err != nil {
		return nil, &sysError{fmt.Errorf("attach snapshot store: %w", err)}
	}

	rc, err := remote.NewClient(remote.Config{
		URL:     settings.Remote.URL,
		APIKey:  settings.Remote.APIKey,
		Bucket:  settings.Storage.Bucket,
		Timeout: time.Duration(settings.Remote.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		_ = snapshots.Detach()
		return nil, &sysError{err}
	}
	if !rc.Enabled() {
		log.Warn("remote.url is not set, reading snapshots only")
	}

	blobs, err := newBlobStore(cmd.Context(), settings, rc, log)
	if err != nil {
		_ = snapshots.Detach()
		return nil, &sysError{err}
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	opts := []showcase.Option{
		showcase.WithLogger(log),
		showcase.WithMetrics(m),
		showcase.WithPhotoPrefix(settings.Storage.Prefix),
	}
	fetcher := showcase.NewFetcher(rc, snapshots, opts...)

	return &app{
		settings:  settings,
		log:       log,
		snapshots: snapshots,
		registry:  registry,
		fetcher:   fetcher,
		submitter: showcase.NewSubmitter(rc, blobs, fetcher, opts...),
	}, nil
}

// Close detaches the snapshot store.
func (a *app) Close() error {
	return a.snapshots.Detach()
}

// snapshotConfig resolves the snapshot backend and data directory.
func snapshotConfig(settings *config.Settings) (types.Config, error) {
	cfg := types.Config{Backend: settings.Snapshot.Backend}
	if cfg.Backend != types.BackendMemory {
		dataDir, err := paths.ResolveDataDir(flags.dataDir, settings.Snapshot.DataDir)
		if err != nil {
			return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("snapshot config: %w", err)
	}
	return cfg, nil
}

// openSnapshots creates and attaches the configured snapshot store.
func openSnapshots(cfg types.Config) (snapshotStore, error) {
	switch cfg.Backend {
	case types.BackendMemory:
		return memory.NewStore(), nil
	case types.BackendJSONL:
		s := jsonl.NewStore()
		if err := s.Attach(cfg); err != nil {
			return nil, err
		}
		return s, nil
	default:
		b := sqlite.NewBackend()
		if err := b.Attach(cfg); err != nil {
			return nil, err
		}
		return b, nil
	}
}

// newBlobStore picks the photo store. A nil result means photos are
// dropped.
func newBlobStore(ctx context.Context, settings *config.Settings, rc *remote.Client, log *slog.Logger) (types.BlobStore, error) {
	if settings.Storage.Backend != config.StorageMinIO {
		if !rc.Enabled() {
			return nil, nil
		}
		return rc, nil
	}

	bc, err := blob.NewClient(blob.Config{
		Endpoint:        settings.MinIO.Endpoint,
		AccessKeyID:     settings.MinIO.AccessKey,
		SecretAccessKey: settings.MinIO.SecretKey,
		UseSSL:          settings.MinIO.UseSSL,
		Bucket:          settings.Storage.Bucket,
		PublicURL:       settings.MinIO.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	if !bc.Enabled() {
		log.Warn("minio.endpoint is not set, comment photos are disabled")
		return nil, nil
	}
	if err := bc.EnsureBucket(ctx); err != nil {
		// Uploads will fail and degrade to photo-less comments.
		log.Warn("minio bucket check failed", "bucket", settings.Storage.Bucket, "error", err)
	}
	return bc, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printTable writes rows under header as aligned columns, trimming trailing
// padding from each line.
func printTable(w io.Writer, header []string, rows [][]string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// truncate shortens s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
