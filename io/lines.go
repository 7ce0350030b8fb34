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

// Package io provides the digital input lines that encoders are
// sampled from, using one of several GPIO backends.

package io

import (
	"fmt"
)

// MaxLine is the highest line number supported by the backends.
const MaxLine = 1023

// Setter is an interface for setting an output value on a GPIO
type Setter interface {
	Set(int) error
}

// Lines is a set of input lines opened on one backend.
type Lines interface {
	ConfigureInput(line int) error
	Read(line int) bool
	Release(line int)
	Close() error
}

// Backends lists the names accepted by Open.
var Backends = []string{"sysfs", "rpio", "periph", "cdev", "sim"}

// Open opens the named backend. chip is only used by the cdev backend.
func Open(backend, chip string) (Lines, error) {
	switch backend {
	case "sysfs":
		return NewSysfsLines(), nil
	case "rpio":
		return OpenRpio()
	case "periph":
		return OpenPeriph()
	case "cdev":
		return NewCdevLines(chip), nil
	case "sim":
		return NewSimLines(), nil
	}
	return nil, fmt.Errorf("%s: unknown backend (one of %v)", backend, Backends)
}

func checkLine(line int) error {
	if line < 0 || line > MaxLine {
		return fmt.Errorf("line %d: out of range (0-%d)", line, MaxLine)
	}
	return nil
}

func validLine(line int) bool {
	return uint(line) <= MaxLine
}
