// Package main is the microlearn CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/auth"
	"github.com/microlearning/microlearn/internal/config"
	"github.com/microlearning/microlearn/internal/events"
	"github.com/microlearning/microlearn/internal/extract"
	"github.com/microlearning/microlearn/internal/search"
	"github.com/microlearning/microlearn/internal/server"
	"github.com/microlearning/microlearn/internal/storage"
	"github.com/microlearning/microlearn/internal/transform"
	"github.com/microlearning/microlearn/internal/users"
	"github.com/microlearning/microlearn/internal/watcher"
	"github.com/microlearning/microlearn/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/microlearn/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so running from the project dir picks up the project's config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "content":
		runContent()
	case "user":
		runUser()
	case "transform":
		runTransform()
	case "version", "--version", "-v":
		fmt.Printf("microlearn version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// checkAuthConfig rejects a config with no JWT secret; an empty secret would
// let anyone forge tokens.
func checkAuthConfig(cfg *config.Config) error {
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must be set in the config")
	}
	return nil
}

func setupLogger(cfg *config.Config, debugFlag bool) *zap.Logger {
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func runContent() {
	fs := flag.NewFlagSet("content", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg, *debug)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("storage_driver", cfg.Storage.Driver),
	)
	if err := checkAuthConfig(cfg); err != nil {
		logger.Fatal("Invalid config", zap.Error(err))
	}

	store, err := storage.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	index, err := search.NewLessonIndex(cfg.Search.IndexPath)
	if err != nil {
		logger.Fatal("Failed to open lesson index", zap.Error(err))
	}
	defer index.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		publisher = events.NewDaprPublisher(cfg.Events.DaprURL, cfg.Events.PubSubName)
		logger.Info("event publishing enabled",
			zap.String("dapr_url", cfg.Events.DaprURL),
			zap.String("pubsub", cfg.Events.PubSubName))
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	srv := server.NewServer(store, index, publisher, issuer, cfg, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watchSvc = watcher.New(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			func(path string) {
				if err := srv.IngestFile(context.Background(), path); err != nil {
					logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			logger,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start ingest watcher", zap.Error(err))
		}
		watchSvc.IngestExisting()
	}

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runUser() {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg, *debug)
	defer logger.Sync()

	logger.Info("config loaded", zap.String("config_path", resolvedConfigPath))
	if err := checkAuthConfig(cfg); err != nil {
		logger.Fatal("Invalid config", zap.Error(err))
	}

	var store users.Store
	if cfg.Storage.Driver == "memory" {
		store = users.NewMemoryStore()
	} else {
		store, err = users.NewSQLiteStore(cfg.Storage.UserDatabasePath)
		if err != nil {
			logger.Fatal("Failed to open user store", zap.Error(err))
		}
	}
	defer store.Close()

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	srv := users.NewServer(store, issuer, &cfg.UserServer, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runTransform() {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	duration := fs.Int("duration", 0, "target lesson duration in minutes (default from config)")
	quiz := fs.Bool("quiz", false, "also generate quiz questions")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: microlearn transform [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	targetDuration := *duration
	numQuestions := transform.DefaultQuizQuestions
	if cfg, _, err := loadConfig(*configPath); err == nil {
		if targetDuration == 0 {
			targetDuration = cfg.Transform.DefaultDurationMinutes
		}
		numQuestions = cfg.Transform.DefaultQuizQuestions
	}
	if targetDuration == 0 {
		targetDuration = 5
	}

	text, err := extract.NewExtractor().Extract(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	result, err := transform.Segment(text, targetDuration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Transformation failed: %v\n", err)
		os.Exit(1)
	}

	out := map[string]interface{}{
		"source":   path,
		"result":   result,
		"keywords": transform.ExtractKeywords(text, transform.DocumentKeywordCount),
		"summary":  transform.Summarize(text, transform.DefaultSummarySentences),
	}
	if *quiz {
		out["quiz"] = transform.GenerateQuiz(text, numQuestions)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`microlearn - micro-learning content platform

Usage:
  microlearn content [flags]          Start the content service (courses, lessons, quizzes, search)
  microlearn user [flags]             Start the user service (register, login, tokens)
  microlearn transform [flags] <file> Transform a document into micro-lessons (JSON to stdout)
  microlearn version                  Show version
  microlearn help                     Show this help

Content/User Flags:
  --config string    Config file path (default: /usr/local/etc/microlearn/config.yaml)
  --debug            Enable debug logging

Transform Flags:
  --config string    Config file path
  --duration int     Target lesson duration in minutes (default from config, or 5)
  --quiz             Also generate quiz questions from the document

Examples:
  microlearn content
  microlearn user --debug
  microlearn transform --duration 3 lecture.pdf
  microlearn transform --quiz notes.md`)
}
