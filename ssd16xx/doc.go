// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd16xx describes panels driven by SSD1675/SSD1680 class
// controllers: RAM window addressing, busy active high and a second RAM bank
// holding the previous frame for differential refresh.
//
// Importing the package registers its models with panel.Register.
//
// # Datasheets
//
// https://www.waveshare.com/w/upload/d/d5/2.13inch_e-Paper_Specification.pdf
//
// https://www.waveshare.com/w/upload/7/79/2.9inch-e-paper-v2-specification.pdf
//
// Product page:
//
// 2.13 Inch version 2: https://www.waveshare.com/wiki/2.13inch_e-Paper_HAT
//
// 2.9 Inch version 2: https://www.waveshare.com/wiki/2.9inch_e-Paper_Module
package ssd16xx
