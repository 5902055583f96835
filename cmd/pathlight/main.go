// Package main is the entry point for the Pathlight renderer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/pathlight/internal/app/host"
	"github.com/Faultbox/pathlight/internal/config"
	"github.com/Faultbox/pathlight/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Pathlight ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			logger.Error("failed to save config", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("path", path))
		return
	}

	run := host.RunSDL
	if cfg.Graphics.Editor {
		run = host.RunEditor
	}
	if err := run(cfg); err != nil {
		logger.Error("renderer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("renderer closed normally")
}
