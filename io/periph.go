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
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphLines uses the periph.io host drivers, which support a wide
// range of boards. Lines are looked up by their GPIO number.
type PeriphLines struct {
	mu   sync.Mutex
	pins [MaxLine + 1]gpio.PinIO
}

// OpenPeriph initialises the periph.io host drivers.
func OpenPeriph() (*PeriphLines, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: %v", err)
	}
	return new(PeriphLines), nil
}

// ConfigureInput sets the line as an input with the pull-up enabled.
func (p *PeriphLines) ConfigureInput(line int) error {
	if err := checkLine(line); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	pin := gpioreg.ByName(strconv.Itoa(line))
	if pin == nil {
		return fmt.Errorf("periph: no GPIO %d", line)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("periph: %s: %v", pin, err)
	}
	p.pins[line] = pin
	return nil
}

func (p *PeriphLines) Read(line int) bool {
	if !validLine(line) {
		return true
	}
	pin := p.pins[line]
	if pin == nil {
		return true
	}
	return pin.Read() == gpio.High
}

// Release halts the pin.
func (p *PeriphLines) Release(line int) {
	if !validLine(line) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if pin := p.pins[line]; pin != nil {
		pin.Halt()
		p.pins[line] = nil
	}
}

// Close halts all the configured pins.
func (p *PeriphLines) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	for i, pin := range p.pins {
		if pin == nil {
			continue
		}
		if err := pin.Halt(); err != nil && first == nil {
			first = err
		}
		p.pins[i] = nil
	}
	return first
}
