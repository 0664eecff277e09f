// Package config loads runtime settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/bg-eraser-mcp/internal/history"
	"github.com/ironsheep/bg-eraser-mcp/internal/viewport"
)

// Environment variable names.
const (
	EnvLogLevel         = "BG_ERASER_LOG_LEVEL"
	EnvHistoryMaxStates = "BG_ERASER_HISTORY_MAX_STATES"
	EnvHistoryMaxMemory = "BG_ERASER_HISTORY_MAX_MEMORY_MB"
	EnvLargeImagePixels = "BG_ERASER_LARGE_IMAGE_PIXELS"
	EnvRenderMargin     = "BG_ERASER_RENDER_MARGIN"
	EnvCanvasWidth      = "BG_ERASER_CANVAS_WIDTH"
	EnvCanvasHeight     = "BG_ERASER_CANVAS_HEIGHT"
)

// Canvas defaults match a typical desktop editing window.
const (
	DefaultCanvasWidth  = 1400
	DefaultCanvasHeight = 900
)

// Config holds the server settings.
type Config struct {
	LogLevel         logrus.Level
	HistoryMaxStates int
	HistoryMaxMemMB  int
	LargeImagePixels int
	RenderMargin     int
	CanvasWidth      int
	CanvasHeight     int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:         logrus.InfoLevel,
		HistoryMaxStates: history.DefaultMaxStates,
		HistoryMaxMemMB:  history.DefaultMaxMemoryMB,
		LargeImagePixels: viewport.DefaultLargeImagePixels,
		RenderMargin:     viewport.DefaultMargin,
		CanvasWidth:      DefaultCanvasWidth,
		CanvasHeight:     DefaultCanvasHeight,
	}
}

// Load reads files (".env" when none are given) into the process
// environment without overriding variables already set, then builds a
// Config from the environment. A missing .env file is not an error.
func Load(log *logrus.Logger, files ...string) Config {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("Could not read .env file")
	}
	return FromEnv(os.Getenv, log)
}

// FromEnv builds a Config from a variable lookup. Invalid values are logged
// and replaced by the default.
func FromEnv(getenv func(string) string, log *logrus.Logger) Config {
	cfg := Default()

	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			cfg.LogLevel = lvl
		} else {
			log.WithField("value", v).Warnf("Invalid %s, using %s", EnvLogLevel, cfg.LogLevel)
		}
	}

	cfg.HistoryMaxStates = positiveInt(getenv, log, EnvHistoryMaxStates, cfg.HistoryMaxStates)
	cfg.HistoryMaxMemMB = positiveInt(getenv, log, EnvHistoryMaxMemory, cfg.HistoryMaxMemMB)
	cfg.LargeImagePixels = positiveInt(getenv, log, EnvLargeImagePixels, cfg.LargeImagePixels)
	cfg.RenderMargin = positiveInt(getenv, log, EnvRenderMargin, cfg.RenderMargin)
	cfg.CanvasWidth = positiveInt(getenv, log, EnvCanvasWidth, cfg.CanvasWidth)
	cfg.CanvasHeight = positiveInt(getenv, log, EnvCanvasHeight, cfg.CanvasHeight)
	return cfg
}

// HistoryOptions converts the history settings.
func (c Config) HistoryOptions() history.Options {
	return history.Options{
		MaxStates:      c.HistoryMaxStates,
		MaxMemoryBytes: int64(c.HistoryMaxMemMB) * 1024 * 1024,
	}
}

// CacheOptions converts the render cache settings.
func (c Config) CacheOptions() viewport.CacheOptions {
	return viewport.CacheOptions{
		LargeImagePixels: c.LargeImagePixels,
		Margin:           c.RenderMargin,
	}
}

func positiveInt(getenv func(string) string, log *logrus.Logger, key string, def int) int {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.WithFields(logrus.Fields{"key": key, "value": v}).Warnf("Invalid setting, using default %d", def)
		return def
	}
	return n
}
