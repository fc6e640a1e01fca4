// Package config loads taskboard settings from YAML or TOML files and
// TASKBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the full taskboard configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	Template TemplateConfig `yaml:"template" toml:"template"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Drag     DragConfig     `yaml:"drag" toml:"drag"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Notify   NotifyConfig   `yaml:"notify" toml:"notify"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" toml:"backend"`
	Root    string `yaml:"root" toml:"root"`
	DSN     string `yaml:"dsn" toml:"dsn"`
}

type TemplateConfig struct {
	URL      string        `yaml:"url" toml:"url"`
	Path     string        `yaml:"path" toml:"path"`
	Timeout  time.Duration `yaml:"timeout" toml:"timeout"`
	Attempts int           `yaml:"attempts" toml:"attempts"`
	Watch    bool          `yaml:"watch" toml:"watch"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr" toml:"addr"`
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`
}

type DragConfig struct {
	Family     string        `yaml:"family" toml:"family"`
	TouchDelay time.Duration `yaml:"touch_delay" toml:"touch_delay"`
	Transition time.Duration `yaml:"transition" toml:"transition"`
	RowHeight  float64       `yaml:"row_height" toml:"row_height"`
}

// NotifyConfig lists outgoing webhooks that receive task list events.
type NotifyConfig struct {
	Webhooks []WebhookConfig `yaml:"webhooks" toml:"webhooks"`
}

type WebhookConfig struct {
	Name       string        `yaml:"name" toml:"name"`
	URL        string        `yaml:"url" toml:"url"`
	Secret     string        `yaml:"secret,omitempty" toml:"secret"`
	Events     []string      `yaml:"events,omitempty" toml:"events"`
	MaxRetries int           `yaml:"max_retries,omitempty" toml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay,omitempty" toml:"retry_delay"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Storage:  StorageConfig{Backend: "file", Root: "."},
		Template: TemplateConfig{Timeout: 10 * time.Second, Attempts: 3},
		Server:   ServerConfig{Addr: ":8080", CORSOrigins: []string{"*"}},
		Drag: DragConfig{
			Family:     "pointer",
			TouchDelay: 200 * time.Millisecond,
			Transition: 150 * time.Millisecond,
			RowHeight:  40,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Candidate file names searched in the workspace root, in order.
var searchNames = []string{
	"taskboard.yaml",
	"taskboard.yml",
	"taskboard.toml",
	filepath.Join(".taskboard", "config.yaml"),
	filepath.Join(".taskboard", "config.toml"),
}

// Load builds a Config from defaults, then the file at path (or the first
// file found under root when path is empty), then the environment. A
// non-empty root always wins over the file's storage.root.
// A missing file is not an error.
func Load(path, root string) (Config, error) {
	cfg := Default()
	if root != "" {
		cfg.Storage.Root = root
	}

	if path == "" {
		path = find(cfg.Storage.Root)
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if root != "" {
		cfg.Storage.Root = root
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func find(root string) string {
	for _, name := range searchNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func loadFile(cfg *Config, path string) error {
	// #nosec G304 -- path is chosen by the operator
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Drag.Family {
	case "pointer", "touch":
	default:
		return fmt.Errorf("unknown drag family %q", c.Drag.Family)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Template.Timeout < 0 || c.Drag.TouchDelay < 0 || c.Drag.Transition < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.Drag.RowHeight <= 0 {
		return fmt.Errorf("drag.row_height must be positive")
	}
	for i, w := range c.Notify.Webhooks {
		if w.URL == "" {
			return fmt.Errorf("notify.webhooks[%d]: url is required", i)
		}
		if w.MaxRetries < 0 || w.RetryDelay < 0 {
			return fmt.Errorf("notify.webhooks[%d]: retries must not be negative", i)
		}
	}
	return nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup("TASKBOARD_" + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		if v, ok := lookup("TASKBOARD_" + name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("TASKBOARD_%s: %w", name, err)
			}
			*dst = d
		}
		return nil
	}

	str("STORAGE_BACKEND", &cfg.Storage.Backend)
	str("STORAGE_ROOT", &cfg.Storage.Root)
	str("STORAGE_DSN", &cfg.Storage.DSN)
	str("TEMPLATE_URL", &cfg.Template.URL)
	str("TEMPLATE_PATH", &cfg.Template.Path)
	str("SERVER_ADDR", &cfg.Server.Addr)
	str("DRAG_FAMILY", &cfg.Drag.Family)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if err := dur("TEMPLATE_TIMEOUT", &cfg.Template.Timeout); err != nil {
		return err
	}
	if err := dur("DRAG_TOUCH_DELAY", &cfg.Drag.TouchDelay); err != nil {
		return err
	}
	if err := dur("DRAG_TRANSITION", &cfg.Drag.Transition); err != nil {
		return err
	}
	if v, ok := lookup("TASKBOARD_TEMPLATE_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TASKBOARD_TEMPLATE_ATTEMPTS: %w", err)
		}
		cfg.Template.Attempts = n
	}
	if v, ok := lookup("TASKBOARD_TEMPLATE_WATCH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TASKBOARD_TEMPLATE_WATCH: %w", err)
		}
		cfg.Template.Watch = b
	}
	if v, ok := lookup("TASKBOARD_SERVER_CORS_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	return nil
}
