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

	"github.com/stianeikeland/go-rpio/v4"
)

// Highest BCM GPIO number on the Raspberry Pi.
const rpioMaxLine = 53

// RpioLines reads the Raspberry Pi GPIO registers directly via /dev/gpiomem.
// Reads are a single memory access, so this is the fastest backend.
type RpioLines struct{}

// OpenRpio maps the GPIO registers.
func OpenRpio() (*RpioLines, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpio: %v", err)
	}
	return new(RpioLines), nil
}

// ConfigureInput sets the line as an input with the pull-up enabled.
func (r *RpioLines) ConfigureInput(line int) error {
	if line < 0 || line > rpioMaxLine {
		return fmt.Errorf("rpio: line %d out of range (0-%d)", line, rpioMaxLine)
	}
	p := rpio.Pin(line)
	p.Input()
	p.PullUp()
	return nil
}

func (r *RpioLines) Read(line int) bool {
	if line < 0 || line > rpioMaxLine {
		return true
	}
	return rpio.Pin(line).Read() == rpio.High
}

// Release turns off the pull-up. The line is left as an input.
func (r *RpioLines) Release(line int) {
	if line >= 0 && line <= rpioMaxLine {
		rpio.Pin(line).PullOff()
	}
}

// Close unmaps the GPIO registers.
func (r *RpioLines) Close() error {
	return rpio.Close()
}
