package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-settingsform/internal/config"
	"github.com/goliatone/go-settingsform/internal/logging"
	"github.com/goliatone/go-settingsform/pkg/appearance"
	"github.com/goliatone/go-settingsform/pkg/configclient"
	"github.com/goliatone/go-settingsform/pkg/configstore"
	"github.com/goliatone/go-settingsform/pkg/server"
)

func runServe(ctx context.Context, args []string, _, stderr io.Writer) error {
	fs := newFlagSet("serve", stderr)
	configFile := fs.String("config", "", "YAML configuration file")
	envFile := fs.String("env", ".env", "dotenv file loaded before the environment")
	listen := fs.String("listen", "", "listen address (overrides http.listen_addr)")
	schemaPath := fs.String("schema", "", "schema file or URL (overrides schema.source)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Options{File: *configFile, EnvFile: *envFile})
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.HTTP.ListenAddr = *listen
	}
	if *schemaPath != "" {
		cfg.Schema.Source = *schemaPath
	}

	logger, err := logging.New(logging.Options{
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
		Console: stderr,
		Tee:     logging.IsTerminal(os.Stderr),
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sch, err := loadSchema(ctx, cfg.Schema.Source)
	if err != nil {
		return err
	}

	store, err := configstore.Open(ctx, configstore.Driver(cfg.Store.Driver), cfg.Store.Path)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("close store", zap.Error(err))
			}
		}()
	}

	options := []server.Option{
		server.WithLogger(logger),
		server.WithStore(store),
		server.WithConfigPath(cfg.HTTP.ConfigPath),
	}
	if cfg.Appearance.Path != "" {
		options = append(options, server.WithAppearanceStore(appearance.NewFileStore(cfg.Appearance.Path)))
	}
	if cfg.Actions.BaseURL != "" {
		client, err := configclient.New(cfg.Actions.BaseURL, configclient.WithLogger(logger))
		if err != nil {
			return err
		}
		options = append(options, server.WithActionClient(client))
	}

	srv, err := server.New(sch, options...)
	if err != nil {
		return err
	}

	logger.Info("serving settings",
		zap.String("title", sch.DisplayTitle()),
		zap.String("store", cfg.Store.Driver),
		zap.String("addr", cfg.HTTP.ListenAddr),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTP.ListenAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Error(context.Cause(gctx)))
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
