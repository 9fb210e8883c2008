// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// epdctl drives e-paper panels from the command line.
//
// Usage:
//
//	epdctl [flags] models
//	epdctl [flags] clear
//	epdctl [flags] show <image>
//	epdctl [flags] text <string>
//	epdctl [flags] preview <image>
//	epdctl [flags] sleep
//	epdctl [flags] watch <image>
//
// The wiring is read from the -config YAML file, created with defaults on
// first run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/GermanBionicSystems/epaper/framebuffer"
	"github.com/GermanBionicSystems/epaper/imageconv"
	"github.com/GermanBionicSystems/epaper/internal/config"
	"github.com/GermanBionicSystems/epaper/internal/log"
	"github.com/GermanBionicSystems/epaper/panel"
	"github.com/GermanBionicSystems/epaper/preview"
	_ "github.com/GermanBionicSystems/epaper/ssd16xx"
	"github.com/GermanBionicSystems/epaper/tiled"
	_ "github.com/GermanBionicSystems/epaper/uc81xx"
)

var errUsage = errors.New("usage: epdctl [flags] models|clear|show <image>|text <string>|preview <image>|sleep|watch <image>")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "epdctl: %s.\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("epdctl", flag.ContinueOnError)
	path := fs.String("config", defaultConfigPath(), "path to the YAML configuration")
	model := fs.String("model", "", "panel model, overrides the configuration")
	var rotation framebuffer.Rotation
	rotate := false
	fs.Func("rotate", "rotation in degrees: 0, 90, 180 or 270", func(s string) error {
		rotate = true
		return rotation.Set(s)
	})
	verbose := fs.Bool("v", false, "log debug messages")
	if err := fs.Parse(args); err != nil {
		return err
	}
	level := log.LevelInfo
	if *verbose {
		level = log.LevelDebug
	}
	log.Setup(os.Stderr, level)
	if fs.NArg() == 0 {
		return errUsage
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "models" {
		return listModels(stdout)
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	if *model != "" {
		cfg.Model = *model
		cfg.Normalize()
	}
	if rotate {
		cfg.Rotation = rotation
	}
	if err := registerDescriptions(cfg.Descriptions); err != nil {
		return err
	}
	log.Debug().Str("path", *path).Str("model", cfg.Model).Stringer("rotation", cfg.Rotation).Stringer("mode", cfg.Mode).Msg("configuration")

	if cmd == "preview" {
		if len(rest) != 1 {
			return errUsage
		}
		return previewImage(cfg, rest[0], stdout)
	}

	var s screen
	switch {
	case cmd == "clear" && len(rest) == 0,
		cmd == "sleep" && len(rest) == 0,
		cmd == "show" && len(rest) == 1,
		cmd == "text" && len(rest) == 1,
		cmd == "watch" && len(rest) == 1:
		if s, err = openScreen(cfg); err != nil {
			return err
		}
	default:
		return errUsage
	}
	defer func() {
		if err := s.Halt(); err != nil {
			log.Error(err).Msg("halt")
		}
	}()

	switch cmd {
	case "clear":
		return s.Clear()
	case "sleep":
		// Halt puts the panel in deep sleep.
		return nil
	case "show":
		img, err := loadImage(rest[0])
		if err != nil {
			return err
		}
		return s.Show(img, true)
	case "text":
		b := s.Bounds()
		img, err := imageconv.TextImage(b.Dx(), b.Dy(), rest[0], cfg.FontSize)
		if err != nil {
			return err
		}
		return s.Show(img, true)
	default:
		return watch(ctx, s, rest[0], cfg.FullRefresh)
	}
}

func listModels(w io.Writer) error {
	for _, name := range panel.Names() {
		d, err := panel.Lookup(name)
		if err != nil {
			return err
		}
		quick := ""
		if d.SupportsQuick() {
			quick = " quick"
		}
		if _, err := fmt.Fprintf(w, "%-10s %4dx%-4d %s%s\n", name, d.Width, d.Height, d.Color, quick); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%-10s %4dx%-4d %s\n", config.TiledModel, tiled.Width, tiled.Height, "tri")
	return err
}

func registerDescriptions(paths []string) error {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		d, err := panel.LoadDescription(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if err := panel.Register(d); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		log.Debug().Str("path", p).Str("model", d.Name).Msg("registered description")
	}
	return nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// previewImage renders the image as the panel would show it, on the terminal.
func previewImage(cfg *config.Config, path string, w io.Writer) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	c, err := newCanvas(cfg)
	if err != nil {
		return err
	}
	b := c.Bounds()
	imageconv.Into(c, imageconv.Fit(img, b.Dx(), b.Dy()), cfg.Dither)
	p := preview.New(w, &preview.Opts{Step: 1 + max(b.Dx(), b.Dy())/200})
	if err := p.Show(c); err != nil {
		return err
	}
	return p.Halt()
}

func newCanvas(cfg *config.Config) (*framebuffer.Canvas, error) {
	opts := &framebuffer.Opts{Width: tiled.Width, Height: tiled.Height, Format: tiledFormat}
	if cfg.Model != config.TiledModel {
		d, err := panel.Lookup(cfg.Model)
		if err != nil {
			return nil, err
		}
		opts = &framebuffer.Opts{
			Width:           d.Width,
			Height:          d.Height,
			Format:          d.Color,
			Scheme:          d.Scheme,
			SetUnused:       d.SetUnused,
			InvertChromatic: d.InvertChromatic,
		}
	}
	c, err := framebuffer.New(opts)
	if err != nil {
		return nil, err
	}
	c.SetRotation(cfg.Rotation)
	return c, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "epdctl.yaml"
	}
	return filepath.Join(dir, "epdctl", "config.yaml")
}
