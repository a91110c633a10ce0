package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/courtsync/courtsync/pkg/client"
	"github.com/courtsync/courtsync/pkg/config"
	"github.com/courtsync/courtsync/pkg/logging"
	"github.com/courtsync/courtsync/pkg/paginate"
	"github.com/courtsync/courtsync/pkg/store"
	"github.com/courtsync/courtsync/pkg/watermark"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// fetchOptions carries the per-run settings from flags.
type fetchOptions struct {
	User      string
	Limit     int
	DateMin   string
	Court     string
	Fields    string
	SinceFile string
}

// fetchResult summarizes a finished run. StreamErr holds a mid-stream
// fetch failure; records collected before it are already persisted.
type fetchResult struct {
	Records   int
	Pages     int
	Output    string
	Watermark string
	First     map[string]any
	StreamErr error
}

func runFetch(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override file and environment values
	if token != "" {
		cfg.Token = token
	}
	if userAgent != "" {
		cfg.UserAgent = userAgent
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}

	logCfg := logging.DefaultConfig()
	logCfg.Pretty = true
	if debugMode {
		logCfg.Level = logging.LevelDebug
	}
	logging.Setup(logCfg)

	runID := uuid.New().String()
	logger := logging.NewLogger("fetch").With().Str("run_id", runID).Logger()

	if metricsAddr != "" {
		go serveMetrics(metricsAddr, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := fetchOnce(ctx, cfg, fetchOptions{
		User:      user,
		Limit:     limit,
		DateMin:   dateMin,
		Court:     court,
		Fields:    fields,
		SinceFile: sinceFile,
	}, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Run failed")
		os.Exit(1)
	}

	if result.StreamErr != nil {
		if result.Records == 0 {
			logger.Error().Err(result.StreamErr).Msg("Fetch failed before any records arrived")
			os.Exit(1)
		}
		logger.Warn().
			Err(result.StreamErr).
			Int("records", result.Records).
			Msg("Fetch ended early - collected records were kept")
	}

	logger.Info().
		Int("records", result.Records).
		Int("pages", result.Pages).
		Str("output", result.Output).
		Dur("duration", time.Since(start)).
		Msg("Run finished")

	printSummary(os.Stdout, Summary{
		Records:   result.Records,
		Pages:     result.Pages,
		Duration:  time.Since(start),
		Output:    result.Output,
		Watermark: result.Watermark,
		First:     result.First,
	})
}

// fetchOnce runs one fetch: stream opinion pages, write projected records,
// track the watermark, then update the user index and since-file. A
// mid-stream failure is reported in the result, not as an error, so
// callers can apply the partial success policy.
func fetchOnce(ctx context.Context, cfg config.Config, opts fetchOptions, logger zerolog.Logger) (*fetchResult, error) {
	params := url.Values{}

	dateMin := opts.DateMin
	if dateMin == "" && opts.SinceFile != "" {
		stored, err := watermark.ReadFile(opts.SinceFile)
		if err != nil {
			logger.Warn().Err(err).Msg("Could not read since-file")
		} else if stored != "" {
			dateMin = stored
			logger.Info().
				Str("since_file", opts.SinceFile).
				Str("date_filed_min", dateMin).
				Msg("Using stored watermark as date filter")
		}
	}
	if dateMin != "" {
		params.Set("date_filed_min", dateMin)
	}
	if opts.Court != "" {
		params.Set("court", opts.Court)
	}

	redisClient, err := cfg.RedisClient()
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable - running without cache and cool-off")
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Redis = redisClient
	apiClient, err := client.New(clientCfg)
	if err != nil {
		return nil, err
	}
	defer apiClient.Close()

	projection := store.ParseProjection(opts.Fields)
	if len(projection) > 0 {
		logger.Info().Strs("fields", projection).Msg("Saving only projected fields")
	}

	tracker := watermark.NewTracker("date_filed")
	output := store.OpinionsFile(cfg.DataDir, opts.User)
	result := &fetchResult{Output: output}

	logger.Info().
		Int("limit", opts.Limit).
		Str("endpoint", client.EndpointOpinions).
		Msg("Fetching opinions")

	// The output file is created when the first record arrives, so a run
	// that fails outright leaves a previous run's output untouched.
	var writer *store.Writer
	it := paginate.New(apiClient, client.EndpointOpinions, params)
	for (writer == nil || writer.Records() < opts.Limit) && it.Next(ctx) {
		rec := it.Record()
		tracker.Observe(rec)

		projected := projection.Apply(rec)
		if result.First == nil {
			result.First = projected
		}

		if writer == nil {
			w, err := store.NewWriter(output)
			if err != nil {
				return nil, err
			}
			writer = w
		}
		if err := writer.Write(projected); err != nil {
			writer.Close()
			return nil, err
		}
	}

	result.Pages = it.Pages()
	result.StreamErr = it.Err()

	if writer == nil && result.StreamErr != nil {
		return result, nil
	}

	if writer == nil {
		// A clean empty result set still produces an empty output file.
		w, err := store.NewWriter(output)
		if err != nil {
			return nil, err
		}
		writer = w
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	result.Records = writer.Records()

	indexPath := filepath.Join(cfg.DataDir, store.IndexFile)
	if err := store.RecordSave(indexPath, opts.User, output); err != nil {
		return nil, err
	}
	logger.Info().Str("index", indexPath).Msg("User index updated")

	if wm, ok := tracker.Current(); ok {
		result.Watermark = wm
		if opts.SinceFile != "" {
			updateSinceFile(opts.SinceFile, wm, logger)
		}
	}

	return result, nil
}

// updateSinceFile stores the watermark for the next run. The stored value
// never regresses: an older watermark (from a filtered or partial run) is
// left in place.
func updateSinceFile(path, wm string, logger zerolog.Logger) {
	stored, err := watermark.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("since_file", path).Msg("Could not read since-file before update")
		return
	}
	if wm <= stored {
		logger.Debug().
			Str("since_file", path).
			Str("stored", stored).
			Str("observed", wm).
			Msg("Keeping newer stored watermark")
		return
	}

	if err := watermark.WriteFile(path, wm); err != nil {
		logger.Warn().Err(err).Str("since_file", path).Msg("Failed to write since-file")
		return
	}
	logger.Info().
		Str("since_file", path).
		Str("watermark", wm).
		Msg("Watermark stored for next run")
}

// serveMetrics exposes Prometheus metrics for scrape-based monitoring of
// long runs.
func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}
