package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/edubd/internal/buildinfo"
	"github.com/dmitrijs2005/edubd/internal/client/cli"
	"github.com/dmitrijs2005/edubd/internal/client/config"
	"github.com/dmitrijs2005/edubd/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogFormat, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
