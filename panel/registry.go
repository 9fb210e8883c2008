// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.Mutex
	registry = map[string]*Description{}
)

// Register makes a description available to Lookup. Controller family
// packages register their models from init.
func Register(d *Description) error {
	d = d.withDefaults()
	if err := d.Validate(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[d.Name]; ok {
		return fmt.Errorf("%w: %q registered twice", ErrInvalidDescription, d.Name)
	}
	registry[d.Name] = d
	return nil
}

// MustRegister calls Register and panics on failure.
func MustRegister(d *Description) {
	if err := Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns a copy of the description registered under name.
func Lookup(name string) (*Description, error) {
	mu.Lock()
	defer mu.Unlock()
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModel, name)
	}
	c := *d
	return &c, nil
}

// Names returns the registered model names, sorted.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
