// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads and saves the epdctl configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/GermanBionicSystems/epaper/framebuffer"
	"github.com/GermanBionicSystems/epaper/imageconv"
	"github.com/GermanBionicSystems/epaper/panel"
)

// TiledModel is the model name selecting the 12.48" four controller panel.
const TiledModel = "12in48b"

// Pins names the GPIOs of a single controller panel, as known to gpioreg.
type Pins struct {
	DC string `yaml:"dc"`
	// CS is empty when the SPI controller drives chip select.
	CS    string `yaml:"cs,omitempty"`
	Reset string `yaml:"reset"`
	Busy  string `yaml:"busy"`
}

// TiledPins names the GPIOs of the 12.48" panel.
type TiledPins struct {
	M1CS    string `yaml:"m1_cs"`
	S1CS    string `yaml:"s1_cs"`
	M2CS    string `yaml:"m2_cs"`
	S2CS    string `yaml:"s2_cs"`
	M1S1DC  string `yaml:"m1s1_dc"`
	M2S2DC  string `yaml:"m2s2_dc"`
	M1S1RST string `yaml:"m1s1_rst"`
	M2S2RST string `yaml:"m2s2_rst"`
	M1Busy  string `yaml:"m1_busy"`
	S1Busy  string `yaml:"s1_busy"`
	M2Busy  string `yaml:"m2_busy"`
	S2Busy  string `yaml:"s2_busy"`
}

// Config is the epdctl configuration.
type Config struct {
	// Model is a registered panel name, or TiledModel.
	Model    string               `yaml:"model"`
	Rotation framebuffer.Rotation `yaml:"rotation"`
	Mode     panel.RefreshMode    `yaml:"mode"`
	Dither   imageconv.Dither     `yaml:"dither"`

	// SPI is the port name passed to spireg.Open, empty for the default one.
	SPI       string `yaml:"spi"`
	Frequency int64  `yaml:"frequency_hz"`

	Pins  Pins       `yaml:"pins"`
	Tiled *TiledPins `yaml:"tiled,omitempty"`

	BusyTimeout time.Duration `yaml:"busy_timeout"`
	// FullRefresh is the cron schedule of the full refreshes done by watch
	// to clear ghosting.
	FullRefresh string `yaml:"full_refresh"`
	// FontSize is the text size in points.
	FontSize float64 `yaml:"font_size"`
	// Descriptions are YAML panel description files registered at startup.
	Descriptions []string `yaml:"descriptions,omitempty"`
}

// DefaultConfig returns the configuration of a 2.13" v4 on the Waveshare
// e-Paper HAT.
func DefaultConfig() *Config {
	c := &Config{Model: "2in13v4"}
	c.Normalize()
	return c
}

// DefaultTiledPins returns the wiring of the Waveshare 12.48" HAT.
func DefaultTiledPins() *TiledPins {
	return &TiledPins{
		M1CS: "GPIO8", S1CS: "GPIO7", M2CS: "GPIO17", S2CS: "GPIO18",
		M1S1DC: "GPIO13", M2S2DC: "GPIO22",
		M1S1RST: "GPIO6", M2S2RST: "GPIO23",
		M1Busy: "GPIO5", S1Busy: "GPIO19", M2Busy: "GPIO27", S2Busy: "GPIO24",
	}
}

// Normalize fills in zero values.
func (c *Config) Normalize() {
	if c.Frequency <= 0 {
		c.Frequency = 4000000
	}
	if c.Pins == (Pins{}) {
		c.Pins = Pins{DC: "GPIO25", Reset: "GPIO17", Busy: "GPIO24"}
	}
	if c.Model == TiledModel && c.Tiled == nil {
		c.Tiled = DefaultTiledPins()
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = time.Minute
	}
	if c.FullRefresh == "" {
		c.FullRefresh = "0 */6 * * *"
	}
	if c.FontSize <= 0 {
		c.FontSize = 24
	}
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("config: model is empty")
	}
	if _, err := cron.ParseStandard(c.FullRefresh); err != nil {
		return fmt.Errorf("config: full_refresh: %w", err)
	}
	return nil
}

// Load reads the configuration at path. On first run, when path does not
// exist, the defaults are written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			return cfg, Save(path, cfg)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save atomically writes cfg to path with mode 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}
	cfg.Normalize()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".epdctl-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
