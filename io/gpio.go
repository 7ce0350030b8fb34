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

// sysfs GPIO input lines

package io

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	sysfs "github.com/aamcrae/gpio"
)

// sysfsPin is one exported GPIO, and the last level read from it.
type sysfsPin struct {
	gpio *sysfs.Gpio
	last bool
}

// SysfsLines reads input lines through the sysfs GPIO interface.
// sysfs has no control of pull-ups, so these must be set by
// the device tree or external resistors.
type SysfsLines struct {
	mu     sync.Mutex
	pins   [MaxLine + 1]*sysfsPin
	warned sync.Once
	errors atomic.Uint64 // Failed reads
}

// NewSysfsLines creates a new set of sysfs lines.
func NewSysfsLines() *SysfsLines {
	return new(SysfsLines)
}

// ConfigureInput exports the GPIO as an input with no edge detection.
func (s *SysfsLines) ConfigureInput(line int) error {
	if err := checkLine(line); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pins[line] != nil {
		return nil
	}
	g, err := sysfs.Pin(line)
	if err != nil {
		return fmt.Errorf("gpio%d: %v", line, err)
	}
	s.warned.Do(func() {
		log.Printf("sysfs: pull-ups cannot be enabled, they must be set by the device tree or external resistors")
	})
	s.pins[line] = &sysfsPin{gpio: g, last: true}
	return nil
}

// Read returns the level of the line. If the read fails, the last
// level read is returned, and the failure is counted.
func (s *SysfsLines) Read(line int) bool {
	if !validLine(line) {
		return true
	}
	p := s.pins[line]
	if p == nil {
		return true
	}
	v, err := p.gpio.Get()
	if err != nil {
		s.errors.Add(1)
		return p.last
	}
	p.last = v != 0
	return p.last
}

// Release closes and unexports the line.
func (s *SysfsLines) Release(line int) {
	if !validLine(line) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.pins[line]; p != nil {
		p.gpio.Close()
		s.pins[line] = nil
	}
}

// Errors returns the number of failed reads.
func (s *SysfsLines) Errors() uint64 {
	return s.errors.Load()
}

// Close closes and unexports all the lines.
func (s *SysfsLines) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pins {
		if p != nil {
			p.gpio.Close()
			s.pins[i] = nil
		}
	}
	return nil
}
