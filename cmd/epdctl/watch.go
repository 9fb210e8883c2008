// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GermanBionicSystems/epaper/internal/log"
)

// watchInterval is how often the watched file modification time is checked.
var watchInterval = 2 * time.Second

// watch shows path every time it changes until ctx is done. Changes are shown
// with the configured refresh mode; schedule, a cron spec, triggers full
// refreshes of the last image.
func watch(ctx context.Context, s screen, path, schedule string) error {
	full := make(chan struct{}, 1)
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		select {
		case full <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	var last time.Time
	show := func(force bool) error {
		fi, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !force && !fi.ModTime().After(last) {
			return nil
		}
		img, err := loadImage(path)
		if err != nil {
			return err
		}
		last = fi.ModTime()
		log.Info().Str("path", path).Bool("full", force).Msg("refresh")
		return s.Show(img, force)
	}
	if err := show(true); err != nil {
		return err
	}
	t := time.NewTicker(watchInterval)
	defer t.Stop()
	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case <-full:
			err = show(true)
		case <-t.C:
			err = show(false)
		}
		if err != nil {
			// A half written file is retried on the next tick.
			log.Error(err).Str("path", path).Msg("refresh")
		}
	}
}
