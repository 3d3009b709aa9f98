package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tphakala/retinascan/cmd"
	"github.com/tphakala/retinascan/internal/buildinfo"
	"github.com/tphakala/retinascan/internal/conf"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=... -X main.commit=..."
var (
	version   = "dev"
	buildDate string
	commit    string
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings, buildinfo.New(version, buildDate, commit))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
