// Command admin runs maintenance tasks against the image store.
//
//	admin seed   replace all images with the sample set
//	admin reset  delete all images
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jo-hoe/gallery/internal/core"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] seed|reset\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *configPath); err != nil {
		slog.Error("admin command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(command string, configPath string) error {
	if err := core.LoadEnvFile(".env"); err != nil {
		return err
	}
	config, err := core.LoadConfigOrDefault(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	coreService, err := core.NewCoreService(ctx, config)
	if err != nil {
		return err
	}
	defer func() {
		if err := coreService.Close(); err != nil {
			slog.Error("core service close error", "error", err)
		}
	}()

	switch command {
	case "seed":
		images, err := coreService.Seed(ctx)
		if err != nil {
			return err
		}
		slog.Info("seeded images", "count", len(images))
	case "reset":
		deleted, err := coreService.Reset(ctx)
		if err != nil {
			return err
		}
		slog.Info("deleted images", "count", deleted)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}
