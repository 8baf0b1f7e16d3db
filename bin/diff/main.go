package main

import (
	"context"
	"encoding/json"
	"flag"
	"image-diff/internal/config"
	"image-diff/internal/engine"
	"image-diff/internal/report"
	"image-diff/internal/retry"
	"image-diff/internal/storage"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

var Debug = false

const (
	modeSave  = "save"
	modeBytes = "bytes"
)

type options struct {
	engineName     string
	mode           string
	policy         string
	diffColor      string
	alphaSource    string
	windowRadius   int
	storageBackend string
	directory      string
	bucket         string
	callbackURL    string
	batch          string
	concurrency    int
}

func main() {
	var o options
	flag.StringVar(&o.engineName, "engine", config.EnvOrDefault("ENGINE", engine.ExactName), "Diff engine (exact or similarity)")
	flag.StringVar(&o.mode, "mode", config.EnvOrDefault("MODE", modeSave), "Output mode (save or bytes)")
	flag.StringVar(&o.policy, "policy", config.EnvOrDefault("DIMENSION_POLICY", "strict"), "Dimension policy of the exact engine (strict or padding)")
	flag.StringVar(&o.diffColor, "diff-color", config.EnvOrDefault("DIFF_COLOR", "#ff0000"), "Color of differing pixels")
	flag.StringVar(&o.alphaSource, "alpha-source", config.EnvOrDefault("ALPHA_SOURCE", "before"), "Image the output alpha is taken from (before or after)")
	flag.IntVar(&o.windowRadius, "window-radius", config.EnvOrDefault("WINDOW_RADIUS", engine.DefaultWindowRadius), "Similarity window radius in pixels")
	flag.StringVar(&o.storageBackend, "storage-backend", config.EnvOrDefault("STORAGE_BACKEND", storage.BackendNone), "Where differing artifacts are published (none, file or s3)")
	flag.StringVar(&o.directory, "directory", config.EnvOrDefault("DIRECTORY", "/tmp"), "Directory of the file storage backend")
	flag.StringVar(&o.bucket, "bucket", config.EnvOrDefault("S3_BUCKET", ""), "Bucket of the s3 storage backend")
	flag.StringVar(&o.callbackURL, "callback-url", config.EnvOrDefault("CALLBACK_URL", ""), "URL every outcome is posted to")
	flag.StringVar(&o.batch, "batch", config.EnvOrDefault("BATCH", ""), "File with one \"before after [output]\" comparison per line")
	flag.IntVar(&o.concurrency, "concurrency", config.EnvOrDefault("CONCURRENCY", 4), "Comparisons run at once in batch mode")

	flag.Parse()

	logger, err := config.NewLogger(os.Stderr, Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	code, err := run(context.Background(), logger, o, flag.Args(), os.Stdout)
	if err != nil {
		logger.Error("failed to diff", "error", err)
		os.Exit(2)
	}
	os.Exit(code)
}

// run compares every requested pair and prints one outcome per line in input
// order. The exit code is the highest of all outcomes.
func run(ctx context.Context, logger *slog.Logger, o options, args []string, stdout io.Writer) (int, error) {
	e, err := newEngine(o)
	if err != nil {
		return 2, err
	}

	pairs, err := readPairs(o, args)
	if err != nil {
		return 2, err
	}

	var compare func(before string, after string, output string) engine.Outcome
	destination := func(p pair) string { return p.Output }
	switch o.mode {
	case modeSave:
		for _, p := range pairs {
			if p.Output == "" {
				return 2, xerrors.Errorf("output is required in %s mode: %s %s", modeSave, p.Before, p.After)
			}
		}
		compare = e.DiffAndSave
	case modeBytes:
		compare = e.Diff
		destination = func(p pair) string { return "" }
		if s, ok := e.(interface{ HeatMapPath(string, string) string }); ok {
			destination = func(p pair) string { return s.HeatMapPath(p.After, p.Output) }
		}
	default:
		return 2, xerrors.Errorf("unknown mode %q, expected %s or %s", o.mode, modeSave, modeBytes)
	}
	if err := checkDestinations(pairs, destination); err != nil {
		return 2, xerrors.Errorf("invalid batch: %w", err)
	}

	store, err := storage.New(ctx, storage.Config{
		Backend: o.storageBackend,
		File:    storage.FileConfig{Directory: o.directory},
		S3:      storage.S3Config{Bucket: o.bucket},
	})
	if err != nil {
		return 2, xerrors.Errorf("failed to create storage backend: %w", err)
	}

	var client *http.Client
	if o.callbackURL != "" {
		client = retry.NewClient(10*time.Second, retry.NewExponentialBackOff(100*time.Millisecond, 2*time.Second, 3, nil), retry.NewDefaultRetryOn())
	}

	outcomes := make([]engine.Outcome, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.concurrency, 1))
	for i, p := range pairs {
		g.Go(func() error {
			outcome := compare(p.Before, p.After, p.Output)
			logger.Debug("compared", "before", p.Before, "after", p.After, "result", outcome.Kind.String())

			outcome, err := report.Publish(ctx, store, o.engineName, outcome)
			if err != nil {
				return xerrors.Errorf("failed to publish diff of %s: %w", p.After, err)
			}
			if client != nil {
				if err := report.Notify(ctx, client, o.callbackURL, outcome); err != nil {
					return xerrors.Errorf("failed to notify: %w", err)
				}
			}

			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 2, err
	}

	encoder := json.NewEncoder(stdout)
	code := 0
	for i, outcome := range outcomes {
		if outcome.Failed() {
			logger.Warn("comparison failed", "before", pairs[i].Before, "after", pairs[i].After, "result", outcome.Kind.String(), "error", outcome.Err)
		}
		if err := encoder.Encode(outcome); err != nil {
			return 2, xerrors.Errorf("failed to encode outcome: %w", err)
		}
		code = max(code, outcome.ExitCode())
	}

	return code, nil
}

func newEngine(o options) (engine.Engine, error) {
	cfg := engine.DefaultConfig()

	diffColor, err := config.ParseHexColor(o.diffColor)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse diff color: %w", err)
	}
	cfg.DiffColor = diffColor

	alphaSource, err := engine.ParseAlphaSource(o.alphaSource)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse alpha source: %w", err)
	}
	cfg.AlphaSource = alphaSource

	policy, err := engine.ParseDimensionPolicy(o.policy)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse dimension policy: %w", err)
	}
	cfg.DimensionPolicy = policy
	cfg.WindowRadius = o.windowRadius

	e, err := engine.New(o.engineName, cfg)
	if err != nil {
		return nil, xerrors.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}

func readPairs(o options, args []string) ([]pair, error) {
	if o.batch != "" {
		f, err := os.Open(o.batch)
		if err != nil {
			return nil, xerrors.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()

		return readBatch(f)
	}

	switch len(args) {
	case 2:
		return []pair{{Before: args[0], After: args[1]}}, nil
	case 3:
		return []pair{{Before: args[0], After: args[1], Output: args[2]}}, nil
	default:
		return nil, xerrors.New("usage: diff [flags] <before> <after> [output]")
	}
}
