// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package io

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// CdevLines requests lines from the GPIO character device
// (e.g /dev/gpiochip0), which replaces the deprecated sysfs interface.
type CdevLines struct {
	chip   string
	mu     sync.Mutex
	lines  [MaxLine + 1]*gpiocdev.Line
	errors atomic.Uint64 // Failed reads
}

// NewCdevLines creates a set of lines on the named chip.
func NewCdevLines(chip string) *CdevLines {
	c := new(CdevLines)
	c.chip = chip
	return c
}

// ConfigureInput requests the line as an input with the pull-up enabled.
func (c *CdevLines) ConfigureInput(line int) error {
	if err := checkLine(line); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lines[line] != nil {
		return nil
	}
	l, err := gpiocdev.RequestLine(c.chip, line, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return fmt.Errorf("%s: line %d: %v", c.chip, line, err)
	}
	c.lines[line] = l
	return nil
}

// Read returns the level of the line. A failed read is counted,
// and reported as high (the pulled-up idle level).
func (c *CdevLines) Read(line int) bool {
	if !validLine(line) {
		return true
	}
	l := c.lines[line]
	if l == nil {
		return true
	}
	v, err := l.Value()
	if err != nil {
		c.errors.Add(1)
		return true
	}
	return v != 0
}

// Release releases the requested line.
func (c *CdevLines) Release(line int) {
	if !validLine(line) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if l := c.lines[line]; l != nil {
		l.Close()
		c.lines[line] = nil
	}
}

// Errors returns the number of failed reads.
func (c *CdevLines) Errors() uint64 {
	return c.errors.Load()
}

// Close releases all the requested lines.
func (c *CdevLines) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for i, l := range c.lines {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
		c.lines[i] = nil
	}
	return first
}
