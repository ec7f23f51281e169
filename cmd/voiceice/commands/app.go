package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mohualzy/VoiceIce/dsp/temperature"
	"github.com/mohualzy/VoiceIce/internal/codec"
	"github.com/mohualzy/VoiceIce/internal/config"
	"github.com/mohualzy/VoiceIce/internal/decodecache"
	"github.com/mohualzy/VoiceIce/internal/logging"
	"github.com/mohualzy/VoiceIce/internal/printer"
	"github.com/mohualzy/VoiceIce/internal/studio"
	"github.com/mohualzy/VoiceIce/internal/vault"
)

const redisDialTimeout = 3 * time.Second

// app is everything one command invocation needs, built from config.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	printer *printer.Printer
	vault   *vault.Vault
	cache   *decodecache.Cache
	session *studio.Session
	closers []io.Closer
}

func newApp(cmd *cobra.Command, o *rootOptions) (*app, error) {
	cfg, err := config.Load(o.viper, o.configFile)
	if err != nil {
		return nil, o.printer.Error("invalid configuration", err.Error(),
			"check voiceice.yaml and VOICEICE_* variables")
	}

	logEnv, err := logging.FromEnv()
	if err != nil {
		return nil, o.printer.Error("invalid logging environment", err.Error())
	}

	logger, logCloser, err := logging.New(o.errOut, logging.Options{
		Level:     cfg.LogLevel,
		File:      cfg.LogFile,
		Timestamp: logEnv.Timestamp,
	})
	if err != nil {
		return nil, o.printer.Error("invalid logging configuration", err.Error())
	}

	a := &app{cfg: cfg, logger: logger, printer: o.printer, closers: []io.Closer{logCloser}}

	if cfg.File != "" {
		logger.Debug("configuration loaded", "file", cfg.File)
	}

	store, err := a.openStore(cmd.Context())
	if err != nil {
		a.Close()
		return nil, o.printer.Error("vault store unavailable", err.Error(),
			"use --store none to keep the vault in memory")
	}

	vopts := []vault.Option{vault.WithLogger(logger)}
	if store != nil {
		vopts = append(vopts, vault.WithStore(store))
	}

	a.vault = vault.New(vopts...)
	if err := a.vault.Rehydrate(cmd.Context()); err != nil {
		a.Close()
		return nil, o.printer.Error("could not load the vault", err.Error())
	}

	copts := decodecache.Options{
		BudgetBytes: cfg.CacheBudget,
		ScratchDir:  cfg.ScratchDir,
		Logger:      logger,
	}

	if cfg.DiskCache {
		disk, err := decodecache.NewDiskTier(cfg.CacheDir, cfg.DiskLevel)
		if err != nil {
			a.Close()
			return nil, o.printer.Error("decode cache unavailable", err.Error(),
				"drop --disk-cache or point cache.dir somewhere writable")
		}

		copts.Disk = disk
		a.closers = append(a.closers, disk)
	}

	a.cache = decodecache.New(copts)
	a.session = studio.NewSession(a.vault, a.cache,
		temperature.NewPipeline(temperature.WithLogger(logger)),
		studio.WithLogger(logger),
		studio.WithTemperature(cfg.Temperature))

	logger.Debug("session ready", "id", a.session.ID(), "store", cfg.Store, "blobs", a.vault.Len())

	return a, nil
}

func (a *app) openStore(ctx context.Context) (vault.Store, error) {
	switch a.cfg.Store {
	case config.StoreDir:
		return vault.NewDirStore(a.cfg.VaultDir)
	case config.StoreRedis:
		s, err := vault.NewRedisStore(&redis.Options{
			Addr:        a.cfg.RedisAddr,
			DialTimeout: redisDialTimeout,
		}, a.cfg.RedisNamespace)
		if err != nil {
			return nil, err
		}

		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, err
		}

		a.closers = append(a.closers, s)

		return s, nil
	default:
		return nil, nil
	}
}

// Close releases stores, the disk tier and the log file.
func (a *app) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}

	a.closers = nil

	return errors.Join(errs...)
}

// applyTemperature sets the session temperature from -t when given.
func (a *app) applyTemperature(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("temperature") {
		return nil
	}

	t, err := cmd.Flags().GetFloat64("temperature")
	if err != nil {
		return err
	}

	if err := a.session.SetTemperature(t); err != nil {
		return a.printer.Error("invalid temperature", err.Error(),
			"pick a value between 0.5 (coolest) and 2 (hottest)")
	}

	return nil
}

// transformed runs the session and turns decode failures into a user
// message.
func (a *app) transformed(ctx context.Context) (studio.Result, error) {
	res, err := a.session.Transformed(ctx)
	if err == nil {
		return res, nil
	}

	if errors.Is(err, codec.ErrDecode) {
		return studio.Result{}, a.printer.Error("could not decode "+a.session.Current(), err.Error(),
			"supply a PCM WAV file", "supply an MP3 file")
	}

	return studio.Result{}, err
}

// outputName returns <stem>-t<temperature>.wav next to dir.
func outputName(dir, name string, t temperature.Temperature) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return filepath.Join(dir, fmt.Sprintf("%s-t%s.wav", stem, strconv.FormatFloat(float64(t), 'f', -1, 64)))
}
