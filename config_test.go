package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, StoreBadger, cfg.Store)
	assert.Equal(t, VariantStatic, cfg.Variant)
	assert.True(t, cfg.Confirmations)
	assert.Equal(t, defaultDragThreshold, cfg.DragThreshold)
	assert.Equal(t, defaultMergeOverlap, cfg.MergeOverlap)
	assert.Equal(t, defaultSidebarWidth, cfg.SidebarWidth)
}

func TestLoadConfig_ReadsYAML(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	dataDir := t.TempDir()
	path := writeConfig(t, `
data_dir: `+dataDir+`
store: files
variant: AI
dark_mode_default: true
confirmations: false
drag_threshold: 8
merge_overlap_threshold: 3000
sidebar_width: 36
notification_ttl: 3s
openai:
  model: gpt-4o
  requests_per_minute: 5
  timeout: 45s
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, StoreDir, cfg.Store)
	assert.Equal(t, VariantAugmented, cfg.Variant)
	assert.True(t, cfg.DarkModeDefault)
	assert.False(t, cfg.Confirmations)
	assert.Equal(t, 8.0, cfg.DragThreshold)
	assert.Equal(t, 3000.0, cfg.MergeOverlap)
	assert.Equal(t, 36, cfg.SidebarWidth)
	assert.Equal(t, 3*time.Second, cfg.NotificationTTL)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 5, cfg.OpenAI.RequestsPerMinute)
	assert.Equal(t, 45*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "sk-test", cfg.APIKey)

	assert.Equal(t, filepath.Join(dataDir, "state"), cfg.StorePath())
	assert.Equal(t, filepath.Join(dataDir, "stellarforge.log"), cfg.LogPath())

	g := cfg.Gesture()
	assert.Equal(t, 8.0, g.DragThreshold)
	assert.Equal(t, 3000.0, g.MergeOverlap)
	assert.Equal(t, doubleClickWindow, g.DoubleClick)
}

func TestLoadConfig_BrokenFileFallsBack(t *testing.T) {
	path := writeConfig(t, "drag_threshold: [not a number\n")
	cfg, err := loadConfig(path)
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, defaultDragThreshold, cfg.DragThreshold)
}

func TestConfig_NormalizeClamps(t *testing.T) {
	cfg := &Config{
		Store:         "sqlite",
		Variant:       "",
		DragThreshold: -1,
		MergeOverlap:  0,
		SidebarWidth:  4,
	}
	cfg.normalize()
	assert.Equal(t, StoreBadger, cfg.Store)
	assert.Equal(t, VariantStatic, cfg.Variant)
	assert.Equal(t, defaultDragThreshold, cfg.DragThreshold)
	assert.Equal(t, defaultMergeOverlap, cfg.MergeOverlap)
	assert.Equal(t, defaultSidebarWidth, cfg.SidebarWidth)
	assert.Equal(t, notificationTTL, cfg.NotificationTTL)
	assert.Equal(t, "db", filepath.Base(cfg.StorePath()))
}

func TestConfig_GetSavePath(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "out.png", cfg.GetSavePath("out.png"))

	cfg.ExportDirectory = filepath.Join(t.TempDir(), "exports")
	path := cfg.GetSavePath("out.png")
	assert.Equal(t, filepath.Join(cfg.ExportDirectory, "out.png"), path)
	assert.DirExists(t, cfg.ExportDirectory)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "forge"), expandHome("~/forge"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
}
