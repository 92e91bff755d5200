// Command plat4rs opens a window and draws the 2D scene: one triangle model moved by the arrow
// keys (or WASD), optionally steering the camera instead.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xlab/closer"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/Carmen-Shannon/plat4rs-go/engine/config"
)

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	common.SetLogger(logger)

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
	}

	a, err := setup(cfg)
	if err != nil {
		logger.Error("startup failed", "error", err)
		a.release()
		closer.Fatalln(err)
	}
	// closer runs its hooks on its own goroutine, so the hook only stops the loop and the
	// release below stays on the main thread
	closer.Bind(a.interrupt)

	runErr := a.run()
	a.release()
	if runErr != nil {
		logger.Error("render loop stopped", "error", runErr)
		closer.Fatalln(runErr)
	}
	closer.Close()
}
