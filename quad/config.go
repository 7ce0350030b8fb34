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

package quad

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aamcrae/config"
)

// MaxEncoders is the default number of encoder slots.
const MaxEncoders = 8

// DefaultLinesPerRev is the default encoder resolution.
const DefaultLinesPerRev = 600

// Config holds the sampler configuration.
type Config struct {
	Backend     string // Name of the I/O backend
	Chip        string // GPIO chip, for backends that use one
	Rate        int    // Sample rate in Hz
	Capacity    int    // Maximum number of encoders
	LinesPerRev int    // Encoder lines per revolution
	Encoders    []string
}

// EncoderConfig describes one encoder.
type EncoderConfig struct {
	Name     string
	I, Q     int
	Position float64 // Initial position
	Unit     Unit
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Backend:     "cdev",
		Chip:        "gpiochip0",
		Rate:        DefaultRate,
		Capacity:    MaxEncoders,
		LinesPerRev: DefaultLinesPerRev,
	}
}

// Validate checks that the config values are usable.
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("capacity %d: must be at least 1", c.Capacity)
	}
	if c.LinesPerRev < 1 {
		return fmt.Errorf("lines %d: must be at least 1", c.LinesPerRev)
	}
	if len(c.Encoders) > c.Capacity {
		return fmt.Errorf("%d encoders: %w (capacity %d)", len(c.Encoders), ErrCapacityExceeded, c.Capacity)
	}
	return checkRate(c.Rate)
}

// ReadConfig reads and validates the sampler and encoder configuration.
// Values are separated by commas, and anything after a '#' is a comment.
// Sample config:
//  [sampler]
//  backend=cdev            # sysfs, rpio, periph, cdev or sim
//  chip=gpiochip0          # GPIO chip for the cdev backend
//  rate=1000               # Sample rate in Hz
//  capacity=8              # Maximum number of encoders
//  lines=600               # Encoder lines per revolution
//  encoders=left,right     # Sections describing each encoder
//  [left]
//  pins=17,27              # GPIOs for I and Q
//  position=90,deg         # Optional initial position
func ReadConfig(conf *config.Config) (*Config, []*EncoderConfig, error) {
	c := DefaultConfig()
	s := conf.GetSection("sampler")
	if s == nil {
		return nil, nil, fmt.Errorf("no config for sampler")
	}
	if err := optString(s, "backend", &c.Backend); err != nil {
		return nil, nil, err
	}
	if err := optString(s, "chip", &c.Chip); err != nil {
		return nil, nil, err
	}
	if err := optInt(s, "rate", &c.Rate); err != nil {
		return nil, nil, err
	}
	if err := optInt(s, "capacity", &c.Capacity); err != nil {
		return nil, nil, err
	}
	if err := optInt(s, "lines", &c.LinesPerRev); err != nil {
		return nil, nil, err
	}
	list, ok, err := values(s, "encoders")
	if err != nil {
		return nil, nil, err
	}
	if !ok || len(list) == 0 {
		return nil, nil, fmt.Errorf("encoders: none listed")
	}
	c.Encoders = list
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	var encs []*EncoderConfig
	for _, name := range c.Encoders {
		ec, err := readEncoder(conf, name)
		if err != nil {
			return nil, nil, err
		}
		encs = append(encs, ec)
	}
	return c, encs, nil
}

func readEncoder(conf *config.Config, name string) (*EncoderConfig, error) {
	s := conf.GetSection(name)
	if s == nil {
		return nil, fmt.Errorf("no config for %s", name)
	}
	ec := &EncoderConfig{Name: name, Unit: Raw}
	pins, ok, err := values(s, "pins")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	if !ok || len(pins) != 2 {
		return nil, fmt.Errorf("%s: pins: need I and Q", name)
	}
	if ec.I, err = strconv.Atoi(pins[0]); err != nil {
		return nil, fmt.Errorf("%s: pins: %v", name, err)
	}
	if ec.Q, err = strconv.Atoi(pins[1]); err != nil {
		return nil, fmt.Errorf("%s: pins: %v", name, err)
	}
	pos, ok, err := values(s, "position")
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	if !ok {
		return ec, nil
	}
	if len(pos) < 1 || len(pos) > 2 {
		return nil, fmt.Errorf("%s: position: expected value[,unit]", name)
	}
	if ec.Position, err = strconv.ParseFloat(pos[0], 64); err != nil {
		return nil, fmt.Errorf("%s: position: %v", name, err)
	}
	if len(pos) == 2 {
		if ec.Unit, err = ParseUnit(pos[1]); err != nil {
			return nil, fmt.Errorf("%s: position: %v", name, err)
		}
	}
	return ec, nil
}

// values returns the comma separated values of a keyword, with any
// trailing comment removed. ok is false if the keyword is absent.
func values(s *config.Section, key string) (v []string, ok bool, err error) {
	e := s.Get(key)
	switch len(e) {
	case 0:
		return nil, false, nil
	case 1:
	default:
		return nil, true, fmt.Errorf("%s: duplicate keyword (line %d)", key, e[1].Lineno)
	}
	args := e[0].Args
	if i := strings.IndexByte(args, '#'); i >= 0 {
		args = args[:i]
	}
	for _, a := range strings.Split(args, ",") {
		if a = strings.TrimSpace(a); a != "" {
			v = append(v, a)
		}
	}
	return v, true, nil
}

// optString reads an optional single value, leaving the default if the key is absent.
func optString(s *config.Section, key string, v *string) error {
	a, ok, err := values(s, key)
	if err != nil || !ok {
		return err
	}
	if len(a) != 1 {
		return fmt.Errorf("%s: argument count", key)
	}
	*v = a[0]
	return nil
}

// optInt parses an optional integer value, leaving the default if the key is absent.
func optInt(s *config.Section, key string, v *int) error {
	var a string
	if err := optString(s, key, &a); err != nil || a == "" {
		return err
	}
	n, err := strconv.Atoi(a)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*v = n
	return nil
}
