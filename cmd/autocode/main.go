// Copyright 2026 The Autocode Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the AI code completion sidecar and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

Autocode provides inline code suggestions backed by a remote inference
service. It extracts structural context around the editor cursor, caches
ranked suggestion sets by context fingerprint, and talks to the backend
over HTTP/JSON. It can operate as a MessagePack IPC server for
integration with text editors, or as a CLI application for testing and
debugging.

The sidecar keeps one completion in flight at a time per pipeline;
triggers arriving while a request is outstanding are dropped rather
than queued, and an explicit cancel action aborts the outstanding
network call.

# Usage

Start the sidecar with default settings:

	autocode

Use a custom service endpoint and enable debug mode:

	autocode -url http://localhost:8000 -d

Run in CLI mode for interactive testing:

	autocode -c -lang python

# Configuration

Runtime configuration is managed through a TOML file that supports
global generation defaults, service parameters and per-language
overrides:

	[completion]
	max_suggestions = 3
	temperature = 0.7
	model = "auto"

	[service]
	api_url = "http://localhost:8000"
	timeout_ms = 5000

	[languages.python]
	temperature = 0.6
	indent_style = "spaces"
	indent_size = 4

The config file is automatically created with defaults if it doesn't
exist. Values outside the documented bounds are reported at startup and
replaced with defaults.

# IPC Protocol

The sidecar communicates via MessagePack over stdin/stdout. Completion
requests carry the buffer text, cursor position and language:

	{"id": "req1", "action": "complete", "b": "def fib(n):\n    return ", "ln": 1, "col": 11, "lang": "python"}

Responses contain ranked suggestions with confidence and timing info:

	{"id": "req1", "s": [{"t": "fib(n-1) + fib(n-2)", "c": 0.92, "k": "single-line"}], "n": 1, "status": "success", "ms": 145}

Management actions adjust runtime state without restart:

	{"id": "ctl1", "action": "clear_cache", "lang": "python"}
	{"id": "ctl2", "action": "toggle", "on": false}

# Server Mode

The default mode starts a MessagePack IPC server that processes
completion requests from stdin and writes responses to stdout. This
design enables integration with text editors through process
communication.

	srv := server.NewServer(pipeline, resolver, store, recorder, dispatcher)
	err := srv.Start()

Logging goes to stderr so the stdout IPC stream stays clean.

# CLI Mode

CLI mode provides an interactive interface for testing and debugging
completion functionality. It builds a scratch buffer from typed lines
and displays ranked suggestions with confidence information.

	inputHandler := cli.NewInputHandler(pipeline, resolver, store, recorder, language)
	err := inputHandler.Start()

This mode is primarily intended for development and testing new
features before deploying to server mode.

# Command Line Flags

The following flags control application behavior:

	-url string
	    Inference service base URL (default from config)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-lang string
	    Initial language for CLI mode (default "python")
	-config string
	    Path to a custom config.toml
	-version
	    Show current version

The application resolves its config and identity files under the
platform user config directory, falling back to the executable
directory when that is not writable.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bims2021/AI-Autocode-Completion/internal/cli"
	"github.com/bims2021/AI-Autocode-Completion/pkg/cache"
	"github.com/bims2021/AI-Autocode-Completion/pkg/completion"
	"github.com/bims2021/AI-Autocode-Completion/pkg/config"
	"github.com/bims2021/AI-Autocode-Completion/pkg/dispatch"
	"github.com/bims2021/AI-Autocode-Completion/pkg/extractor"
	"github.com/bims2021/AI-Autocode-Completion/pkg/server"
	"github.com/bims2021/AI-Autocode-Completion/pkg/stats"
)

const (
	Version = "0.3.0-beta"
	AppName = "autocode"
	gh      = "https://github.com/bims2021/AI-Autocode-Completion"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler(recorder *stats.Recorder) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		if recorder != nil {
			if err := recorder.Close(); err != nil {
				log.Warnf("Failed to save statistics on exit: %v", err)
			}
		}
		os.Exit(0)
	}()
}

// main wires the pipeline collaborators and hands off to the server or
// CLI loop. main() does not implement logic for them and only manages
// the flow.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	serviceURL := flag.String("url", "", "Inference service base URL (overrides config)")
	cliLang := flag.String("lang", "python", "Initial language for CLI mode")
	configPath := flag.String("config", "", "Path to a custom config.toml")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *serviceURL != "" {
		appConfig.Service.APIURL = *serviceURL
	}

	if result := appConfig.Validate(); !result.Valid {
		for _, msg := range result.Errors {
			log.Warnf("Config: %s", msg)
		}
		log.Warn("Invalid values replaced with builtin defaults")
		appConfig = config.DefaultConfig()
		if *serviceURL != "" {
			appConfig.Service.APIURL = *serviceURL
		}
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	configDir, err := config.GetConfigDir()
	if err != nil {
		log.Warnf("No writable config directory, identity will not persist: %v", err)
		configDir = os.TempDir()
	}

	statsPath := appConfig.Stats.FilePath
	if statsPath == "" {
		statsPath = filepath.Join(configDir, "stats.json")
	}

	resolver := config.NewResolver(appConfig)
	store := cache.New(appConfig.Cache.MaxEntries)
	recorder := stats.NewRecorder(statsPath, time.Duration(appConfig.Stats.AutosaveSeconds)*time.Second)
	identity := dispatch.LoadIdentity(configDir)
	dispatcher := dispatch.New(appConfig.Service.APIURL, time.Duration(appConfig.Service.TimeoutMs)*time.Millisecond, identity)
	pipeline := completion.NewPipeline(extractor.New(), resolver, store, dispatcher, recorder)

	sigHandler(recorder)

	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "language", *cliLang, "service", appConfig.Service.APIURL)

		inputHandler := cli.NewInputHandler(pipeline, resolver, store, recorder, *cliLang)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	showStartupInfo(appConfig.Service.APIURL)

	srv := server.NewServer(pipeline, resolver, store, recorder, dispatcher)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	if err := recorder.Close(); err != nil {
		log.Warnf("Failed to save statistics: %v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["version"] = lipgloss.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ Autocode ] AI code completions, right in your editor!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(serviceURL string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("==========")
	println(" Autocode ")
	println("==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("service: ( %s )", serviceURL)
	log.Info("status: ready")
	println("==========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
