package config

import (
	"flag"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	DataRoot string `yaml:"data_root"`
	BasePath string `yaml:"base_path"`
	PidFile  string `yaml:"pid_file"`
	LogFile  string `yaml:"log_file"`

	// Parsed from command line (not YAML)
	ConfigPath string `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:     "127.0.0.1:9910",
		DataRoot:   "Master_Data_Sets",
		BasePath:   "/",
		PidFile:    "vizlab.pid",
		LogFile:    "vizlab.log",
		ConfigPath: "config.yaml",
	}
}

// Load reads configuration with priority: defaults < config.yaml < env vars < flags.
// It expects os.Args to already have the subcommand stripped (if any).
func Load() *Config {
	cfg := DefaultConfig()

	// 1) Pre-scan for -config flag before parsing (so we know which file to read)
	configPath := cfg.ConfigPath
	for i, arg := range os.Args[1:] {
		if arg == "-config" || arg == "--config" {
			if i+1 < len(os.Args)-1 {
				configPath = os.Args[i+2]
			}
		} else if strings.HasPrefix(arg, "-config=") || strings.HasPrefix(arg, "--config=") {
			configPath = strings.SplitN(arg, "=", 2)[1]
		}
	}

	// 2) Load YAML config file
	loadFile(cfg, configPath)
	cfg.ConfigPath = configPath

	// 3) Environment variables override YAML
	applyEnv(cfg)

	// 4) Flags override everything
	flag.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to config.yaml")
	flag.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address (host:port)")
	flag.StringVar(&cfg.DataRoot, "data-root", cfg.DataRoot, "Root directory of device data sets")
	flag.StringVar(&cfg.BasePath, "base-path", cfg.BasePath, "Base URL path for reverse proxy")
	flag.StringVar(&cfg.PidFile, "pid-file", cfg.PidFile, "PID file path")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path")
	flag.Parse()

	// Normalize base_path
	cfg.BasePath = normalizeBasePath(cfg.BasePath)

	return cfg
}

// loadFile applies a YAML config file over cfg, if the file exists.
func loadFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] warning: failed to parse %s: %v", path, err)
		return
	}
	log.Printf("[config] loaded %s", path)
}

// applyEnv applies VIZLAB_* environment overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("VIZLAB_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("VIZLAB_DATA_ROOT"); v != "" {
		cfg.DataRoot = v
	}
	if v := os.Getenv("VIZLAB_BASE_PATH"); v != "" {
		cfg.BasePath = v
	}
}

// normalizeBasePath ensures the base path starts with "/" and has no trailing "/".
// Returns "/" for empty or root paths.
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimRight(p, "/")
	return p
}
