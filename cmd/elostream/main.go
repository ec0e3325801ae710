package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/mbeaumont/elostream/internal/config"
	"github.com/mbeaumont/elostream/internal/features"
	"github.com/mbeaumont/elostream/internal/hubfast"
	"github.com/mbeaumont/elostream/internal/obslog"
	"github.com/mbeaumont/elostream/internal/pgn"
	"github.com/mbeaumont/elostream/internal/sample"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("log init error: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	if err := run(cfg); err != nil {
		obslog.L().Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *appcfg.AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := hubfast.NewClient(cfg.HubBaseURL, cfg.Dataset,
		hubfast.WithTimeout(time.Duration(cfg.HTTPTimeout)*time.Second),
		hubfast.WithRetry(cfg.RetryMax),
		hubfast.WithToken(cfg.HubToken),
	)

	var src sample.RowSource = client
	if cfg.RedisURL != "" {
		cached, err := hubfast.NewCachedClient(client, cfg.RedisURL, cfg.Dataset,
			time.Duration(cfg.CacheTTLSec)*time.Second)
		if err != nil {
			return err
		}
		defer func() { _ = cached.Close() }()
		src = cached
	}

	policy, err := sample.ParseSkipPolicy(cfg.SkipPolicy)
	if err != nil {
		return err
	}
	loader, err := sample.NewLoader(src, sample.Config{
		Dataset:  cfg.Dataset,
		Year:     cfg.Year,
		Month:    cfg.Month,
		Count:    cfg.SampleCount,
		PageSize: cfg.PageSize,
		Policy:   policy,
	})
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	var featCSV *features.CSVWriter
	if cfg.FeaturesPath != "" {
		f, err := os.Create(cfg.FeaturesPath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		featCSV = features.NewCSVWriter(f)
	}

	var repo *sample.Repository
	if cfg.DatabaseURL != "" {
		repo, err = sample.NewRepository(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = repo.Close() }()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	it, err := loader.Records(ctx)
	if err != nil {
		return err
	}
	rep := it.Report()
	obslog.L().Info("sampling partition",
		zap.String("run_id", rep.RunID),
		zap.String("dataset", cfg.Dataset),
		zap.Int("year", cfg.Year),
		zap.Int("month", cfg.Month),
		zap.Int("requested", cfg.SampleCount),
		zap.Int("shards", rep.Shards),
	)

	noMoves := 0
	var runErr error
	for {
		rec, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			runErr = err
			break
		}

		doc, err := pgn.Format(rec)
		if err != nil {
			// Decode guarantees the required tags, so this is a bug,
			// not bad data. Stop rather than emit malformed PGN.
			runErr = err
			break
		}
		if _, err := io.WriteString(out, doc); err != nil {
			runErr = err
			break
		}

		if featCSV != nil {
			row, err := features.Extract(rec, cfg.OpeningMaxPly)
			switch {
			case errors.Is(err, features.ErrNoMoves):
				noMoves++
			case err != nil:
				obslog.L().Warn("feature extraction failed",
					zap.String("run_id", rep.RunID),
					zap.String("site", strDeref(rec.Site)),
					zap.Error(err))
			default:
				if err := featCSV.Write(row); err != nil {
					runErr = err
				}
			}
			if runErr != nil {
				break
			}
		}

		if repo != nil {
			if err := repo.SaveGame(ctx, rep.RunID, rec, doc); err != nil {
				runErr = err
				break
			}
		}
	}

	if featCSV != nil {
		if err := featCSV.Flush(); err != nil && runErr == nil {
			runErr = err
		}
	}

	obslog.L().Info("batch finished",
		zap.String("run_id", rep.RunID),
		zap.Int("produced", rep.Produced),
		zap.Int("skipped_schema", rep.SkippedSchema),
		zap.Int("no_move_games", noMoves),
	)

	if err := writeReport(cfg.ReportPath, rep); err != nil && runErr == nil {
		runErr = err
	}
	if repo != nil {
		if err := repo.SaveReport(ctx, rep); err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func writeReport(path string, rep *sample.Report) error {
	if path == "" {
		return rep.WriteYAML(os.Stderr)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return rep.WriteYAML(f)
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
