package main

import (
	"flag"
	stdlog "log"

	"github.com/On-Jun9/HeicPipe/internal/codec"
	"github.com/On-Jun9/HeicPipe/internal/config"
	"github.com/On-Jun9/HeicPipe/internal/log"
	"github.com/On-Jun9/HeicPipe/internal/metadata"
	"github.com/On-Jun9/HeicPipe/internal/web"
)

var (
	version = "dev" // set by ldflags during build
)

func main() {
	addr := flag.String("addr", "", "HTTP server address (default from config)")
	cfgFile := flag.String("config", "", "config file path")
	envFile := flag.String("env-file", ".env", "dotenv file with HEICPIPE_* variables")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *cfgFile != "" {
		loaded, err := config.LoadFromFile(*cfgFile)
		if err != nil {
			stdlog.Fatal(err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(*envFile); err != nil {
		stdlog.Fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatal(err)
	}

	logger, err := log.New(cfg.LogFile, cfg.LogJSON, !cfg.LogJSON)
	if err != nil {
		stdlog.Fatal(err)
	}
	defer logger.Close()

	decoder := codec.NewVipsDecoder(cfg.VipsPath, cfg.CodecTimeout)
	if !decoder.Available() {
		logger.Warn("vips not found; HEIC conversion will fail. " + codec.InstallHint())
	}

	server := web.NewServer(cfg, metadata.New(), codec.NewConverter(decoder), logger)
	server.SetVersion(version)

	if err := server.Start(cfg.Addr); err != nil {
		logger.Error("Server stopped", err)
		stdlog.Fatal(err)
	}
}
