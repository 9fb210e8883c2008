// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epaper is a container for e-paper display drivers.
//
// The drivers share one protocol engine (package panel) driven by per-model
// descriptions (packages ssd16xx and uc81xx), a rotation-aware bit-packed
// canvas (package framebuffer) and a command/data bus over periph.io
// connections and pins (package transport). Multi-chip panels live in
// package tiled.
package epaper
