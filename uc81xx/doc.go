// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uc81xx describes panels driven by UC8151, UC8159 and IL0398 class
// controllers. They keep two data transmission RAMs, receive whole frames
// unless a partial window is opened and signal busy with a low level.
//
// Importing the package registers its models with panel.Register.
//
// # Datasheets
//
// https://www.waveshare.com/w/upload/6/6a/4.2inch-e-paper-specification.pdf
//
// https://www.waveshare.com/w/upload/7/7f/5.65inch_e-Paper_%28F%29_Specification.pdf
//
// https://www.waveshare.com/w/upload/6/60/7.5inch_e-Paper_V2_Specification.pdf
package uc81xx
