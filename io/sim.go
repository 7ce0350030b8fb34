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
	"sync/atomic"
)

// SimLines is a set of in-memory lines, used by the simulator and tests.
// All lines start high, as a pulled-up input would.
// Levels may be set from any goroutine.
type SimLines struct {
	low        [MaxLine + 1]atomic.Bool
	configured [MaxLine + 1]atomic.Bool
	reads      atomic.Uint64
}

// NewSimLines creates a new set of simulated lines.
func NewSimLines() *SimLines {
	return new(SimLines)
}

// ConfigureInput marks the line as configured.
func (s *SimLines) ConfigureInput(line int) error {
	if err := checkLine(line); err != nil {
		return err
	}
	s.configured[line].Store(true)
	return nil
}

func (s *SimLines) Read(line int) bool {
	if !validLine(line) {
		return true
	}
	s.reads.Add(1)
	return !s.low[line].Load()
}

// Set drives the line high or low.
func (s *SimLines) Set(line int, high bool) {
	if validLine(line) {
		s.low[line].Store(!high)
	}
}

// Release clears the configured flag.
func (s *SimLines) Release(line int) {
	if validLine(line) {
		s.configured[line].Store(false)
	}
}

// Configured returns true if ConfigureInput has been called for the line.
func (s *SimLines) Configured(line int) bool {
	return validLine(line) && s.configured[line].Load()
}

// Reads returns the total number of line reads.
func (s *SimLines) Reads() uint64 {
	return s.reads.Load()
}

// Close is a no-op.
func (s *SimLines) Close() error {
	return nil
}

// Pin returns a Setter driving the line, so that a simulated line can
// be used as the output of a Generator.
func (s *SimLines) Pin(line int) Setter {
	return &simPin{s, line}
}

type simPin struct {
	lines *SimLines
	line  int
}

func (p *simPin) Set(v int) error {
	if !validLine(p.line) {
		return fmt.Errorf("sim: line %d out of range", p.line)
	}
	switch v {
	case 0:
		p.lines.Set(p.line, false)
	case 1:
		p.lines.Set(p.line, true)
	default:
		return fmt.Errorf("sim: line %d: illegal value %d", p.line, v)
	}
	return nil
}
