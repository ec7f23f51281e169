// Package config loads VoiceIce settings from defaults, an optional
// voiceice.yaml, VOICEICE_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

const (
	appName = "voiceice"

	StoreNone  = "none"
	StoreDir   = "dir"
	StoreRedis = "redis"
)

// Keys shared by viper, flags and the YAML file.
const (
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyTemperature    = "temperature"
	KeyStore          = "vault.store"
	KeyVaultDir       = "vault.dir"
	KeyRedisAddr      = "vault.redis.addr"
	KeyRedisNamespace = "vault.redis.namespace"
	KeyCacheBudget    = "cache.budget"
	KeyCacheDir       = "cache.dir"
	KeyCacheDisk      = "cache.disk"
	KeyCacheLevel     = "cache.level"
	KeyScratchDir     = "cache.scratch"
)

// Config is the resolved configuration.
type Config struct {
	LogLevel string
	LogFile  string

	Temperature float64

	Store          string
	VaultDir       string
	RedisAddr      string
	RedisNamespace string

	// CacheBudget is the decode cache limit in bytes, 0 for unbounded.
	CacheBudget int64
	CacheDir    string
	DiskCache   bool
	DiskLevel   int
	ScratchDir  string

	// File is the configuration file that was read, if any.
	File string
}

// Dirs returns the user-scoped directories searched for voiceice.yaml,
// honoring VOICEICE_CONFIG_HOME and XDG_CONFIG_HOME first.
func Dirs() ([]string, error) {
	scope := gap.NewScope(gap.User, appName)

	dirs, err := scope.ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("could not find configuration directory: %w", err)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("VOICEICE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	return dirs, nil
}

// SetDefaults registers every key's default on v. Directory defaults come
// from the platform data and cache locations.
func SetDefaults(v *viper.Viper) {
	scope := gap.NewScope(gap.User, appName)

	vaultDir, err := scope.DataPath("vault")
	if err != nil {
		vaultDir = filepath.Join(os.TempDir(), appName, "vault")
	}

	cacheDir, err := scope.CacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.TempDir(), appName, "cache")
	}

	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTemperature, 1.0)
	v.SetDefault(KeyStore, StoreDir)
	v.SetDefault(KeyVaultDir, vaultDir)
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisNamespace, "default")
	v.SetDefault(KeyCacheBudget, "0")
	v.SetDefault(KeyCacheDir, filepath.Join(cacheDir, "decoded"))
	v.SetDefault(KeyCacheDisk, false)
	v.SetDefault(KeyCacheLevel, 3)
	v.SetDefault(KeyScratchDir, "")
}

// Load reads file (or voiceice.yaml from Dirs when file is empty) into v
// and resolves the result. A missing default file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dirs, err := Dirs()
		if err != nil {
			return Config{}, err
		}

		for _, d := range dirs {
			v.AddConfigPath(d)
		}

		v.SetConfigName(appName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("could not parse configuration file: %w", err)
		}
	}

	return Resolve(v)
}

// Resolve converts v into a validated Config.
func Resolve(v *viper.Viper) (Config, error) {
	budget, err := parseBudget(v.GetString(KeyCacheBudget))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogLevel:       v.GetString(KeyLogLevel),
		LogFile:        v.GetString(KeyLogFile),
		Temperature:    v.GetFloat64(KeyTemperature),
		Store:          strings.ToLower(v.GetString(KeyStore)),
		VaultDir:       v.GetString(KeyVaultDir),
		RedisAddr:      v.GetString(KeyRedisAddr),
		RedisNamespace: v.GetString(KeyRedisNamespace),
		CacheBudget:    budget,
		CacheDir:       v.GetString(KeyCacheDir),
		DiskCache:      v.GetBool(KeyCacheDisk),
		DiskLevel:      v.GetInt(KeyCacheLevel),
		ScratchDir:     v.GetString(KeyScratchDir),
		File:           v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Temperature < 0.5 || c.Temperature > 2 {
		return fmt.Errorf("%s must be in [0.5, 2]: %v", KeyTemperature, c.Temperature)
	}

	switch c.Store {
	case StoreNone, StoreDir, StoreRedis:
	default:
		return fmt.Errorf("%s must be one of none, dir, redis: %q", KeyStore, c.Store)
	}

	if c.Store == StoreDir && c.VaultDir == "" {
		return fmt.Errorf("%s is required for the dir store", KeyVaultDir)
	}

	if c.Store == StoreRedis && c.RedisNamespace == "" {
		return fmt.Errorf("%s is required for the redis store", KeyRedisNamespace)
	}

	if c.DiskLevel < 1 || c.DiskLevel > 22 {
		return fmt.Errorf("%s must be in [1, 22]: %d", KeyCacheLevel, c.DiskLevel)
	}

	return nil
}

// parseBudget accepts plain byte counts and humanized sizes like "256MB".
func parseBudget(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", KeyCacheBudget, err)
	}

	return int64(n), nil
}
