package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileName = ".stellarforge.yaml"

type OpenAIConfig struct {
	Model             string        `yaml:"model"`
	BaseURL           string        `yaml:"base_url"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

type Config struct {
	DataDir         string        `yaml:"data_dir"`
	Store           string        `yaml:"store"`
	Variant         string        `yaml:"variant"`
	DarkModeDefault bool          `yaml:"dark_mode_default"`
	Confirmations   bool          `yaml:"confirmations"`
	DragThreshold   float64       `yaml:"drag_threshold"`
	MergeOverlap    float64       `yaml:"merge_overlap_threshold"`
	SidebarWidth    int           `yaml:"sidebar_width"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	ExportDirectory string        `yaml:"export_directory"`
	Debug           bool          `yaml:"debug"`
	OpenAI          OpenAIConfig  `yaml:"openai"`

	// APIKey comes from OPENAI_API_KEY, never from the file.
	APIKey string `yaml:"-"`
	path   string
}

const (
	StoreBadger = "badger"
	StoreDir    = "dir"
)

func defaultConfig() *Config {
	dataDir := ".stellarforge"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "stellarforge")
	}
	return &Config{
		DataDir:         dataDir,
		Store:           StoreBadger,
		Variant:         VariantStatic,
		Confirmations:   true,
		DragThreshold:   defaultDragThreshold,
		MergeOverlap:    defaultMergeOverlap,
		SidebarWidth:    defaultSidebarWidth,
		NotificationTTL: notificationTTL,
		OpenAI: OpenAIConfig{
			Model:             "gpt-4o-mini",
			RequestsPerMinute: 30,
			Timeout:           20 * time.Second,
		},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, configFileName)
}

// loadConfig reads path, or ~/.stellarforge.yaml when path is empty. A
// missing file gives the defaults; a broken one gives the defaults and an
// error the caller may log.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath()
	}
	config := defaultConfig()
	config.path = path
	config.APIKey = os.Getenv("OPENAI_API_KEY")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("read config %s: %w", path, err)
	}

	fromFile := defaultConfig()
	if err := yaml.Unmarshal(data, fromFile); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}
	fromFile.path = path
	fromFile.APIKey = config.APIKey
	fromFile.normalize()
	return fromFile, nil
}

func (c *Config) normalize() {
	def := defaultConfig()
	c.DataDir = expandHome(c.DataDir)
	c.ExportDirectory = expandHome(c.ExportDirectory)

	switch strings.ToLower(c.Store) {
	case StoreDir, "files":
		c.Store = StoreDir
	default:
		c.Store = StoreBadger
	}
	switch strings.ToLower(c.Variant) {
	case VariantAugmented, "ai":
		c.Variant = VariantAugmented
	default:
		c.Variant = VariantStatic
	}
	if c.DragThreshold <= 0 {
		c.DragThreshold = def.DragThreshold
	}
	if c.MergeOverlap <= 0 {
		c.MergeOverlap = def.MergeOverlap
	}
	if c.SidebarWidth < 16 {
		c.SidebarWidth = def.SidebarWidth
	}
	if c.NotificationTTL <= 0 {
		c.NotificationTTL = def.NotificationTTL
	}
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) Gesture() GestureConfig {
	g := DefaultGestureConfig()
	g.DragThreshold = c.DragThreshold
	g.MergeOverlap = c.MergeOverlap
	return g
}

// GetSavePath places an export file in the export directory, when one is set.
func (c *Config) GetSavePath(filename string) string {
	if c.ExportDirectory == "" {
		return filename
	}
	os.MkdirAll(c.ExportDirectory, 0755)
	return filepath.Join(c.ExportDirectory, filename)
}

func (c *Config) StorePath() string {
	if c.Store == StoreDir {
		return filepath.Join(c.DataDir, "state")
	}
	return filepath.Join(c.DataDir, "db")
}

func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "stellarforge.log")
}
