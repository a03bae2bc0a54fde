package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/On-Jun9/HeicPipe/internal/codec"
	"github.com/On-Jun9/HeicPipe/internal/config"
	"github.com/On-Jun9/HeicPipe/internal/log"
	"github.com/On-Jun9/HeicPipe/internal/metadata"
	"github.com/On-Jun9/HeicPipe/internal/pipeline"
	"github.com/On-Jun9/HeicPipe/internal/scanner"
	"github.com/On-Jun9/HeicPipe/internal/writer"
	"github.com/On-Jun9/HeicPipe/pkg/types"
)

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	if recipient != "" {
		cfg.Recipient = recipient
	}
	if qualityPercent != 0 {
		cfg.QualityPercent = qualityPercent
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if conflictPolicy != "" {
		cfg.ConflictPolicy = types.ConflictPolicy(conflictPolicy)
	}
	if vipsPath != "" {
		cfg.VipsPath = vipsPath
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logJSON {
		cfg.LogJSON = true
	}
	if dryRun {
		cfg.DryRun = true
	}
	if verifyOutputs {
		cfg.Verify = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	quality, err := cfg.Quality()
	if err != nil {
		return err
	}

	files, err := scanner.New(true).Scan(args...)
	if err != nil {
		return err
	}

	logger, err := log.New(cfg.LogFile, cfg.LogJSON, !cfg.LogJSON)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Close()
	logger.SetConsole(io.Discard)

	out := cmd.OutOrStdout()
	bar := newProgressBar(out, len(files))

	decoder := codec.NewVipsDecoder(cfg.VipsPath, cfg.CodecTimeout)
	p := pipeline.New(metadata.New(), codec.NewConverter(decoder), logger,
		pipeline.WithProgressCallback(func(u pipeline.ProgressUpdate) {
			if u.Type == pipeline.UpdateFile {
				bar.Describe(u.Filename)
				bar.Add(1)
			}
		}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, runErr := p.Run(ctx, files, quality, cfg.Recipient)
	bar.Finish()
	fmt.Fprintln(out)

	if result == nil {
		return runErr
	}

	tasks := writer.New(cfg.OutputDir, cfg.ConflictPolicy, cfg.DryRun, cfg.Verify).WriteAll(result.Outcomes)
	for _, task := range tasks {
		if task.Action == types.WriteActionFailed {
			logger.Error("Failed to write "+task.DestPath, errors.New(task.Error))
		}
	}

	fmt.Fprint(out, renderReport(result, tasks, cfg.DryRun))

	if runErr != nil {
		if errors.Is(runErr, codec.ErrUnavailable) {
			fmt.Fprintln(cmd.ErrOrStderr(), codec.InstallHint())
		}
		return runErr
	}
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}
