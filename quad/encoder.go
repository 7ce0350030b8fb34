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

// Quadrature encoder

package quad

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

// Unit selects how a position is expressed.
type Unit int

const (
	Raw     Unit = iota // Quadrature edges
	Degrees Unit = iota
	Radians Unit = iota
)

func (u Unit) String() string {
	switch u {
	case Raw:
		return "raw"
	case Degrees:
		return "deg"
	case Radians:
		return "rad"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// ParseUnit converts a unit name as used in config files and the console.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw", "edges":
		return Raw, nil
	case "deg", "degree", "degrees":
		return Degrees, nil
	case "rad", "radian", "radians":
		return Radians, nil
	}
	return Raw, fmt.Errorf("%s: unknown unit", s)
}

// Handle identifies an attached encoder. It is the index of the
// registry slot the encoder occupies.
type Handle int

// encoder is a quadrature encoder attached to a pair of input lines.
// Once attached, state is written only by the sampler. The counter is
// written by the sampler and by SetPosition, so all access is atomic;
// the 64 bit counter can never be read half updated.
type encoder struct {
	i, q   int           // Input lines
	state  atomic.Uint32 // Last sampled quadrature state
	count  atomic.Int64  // Position in quadrature edges
	faults atomic.Uint64 // Invalid transitions seen
}

// sample reads the lines and updates the position.
// A transition that skips a state cannot be given a direction, so
// it is counted as a fault and the position is left alone.
func (e *encoder) sample(l Lines) {
	cur := State(l.Read(e.i), l.Read(e.q))
	prev := uint8(e.state.Load())
	if cur == prev {
		return
	}
	d := Delta(prev, cur)
	if d == Invalid {
		e.faults.Add(1)
	} else {
		e.count.Add(int64(d))
	}
	e.state.Store(uint32(cur))
}

// toUnit converts a raw edge count to the unit selected.
func toUnit(raw int64, u Unit, edgesPerRev int) float64 {
	switch u {
	case Degrees:
		return float64(raw) * 360.0 / float64(edgesPerRev)
	case Radians:
		return float64(raw) * 2 * math.Pi / float64(edgesPerRev)
	}
	return float64(raw)
}

// fromUnit converts a value in the unit selected to the nearest raw edge count.
func fromUnit(v float64, u Unit, edgesPerRev int) int64 {
	switch u {
	case Degrees:
		v = v * float64(edgesPerRev) / 360.0
	case Radians:
		v = v * float64(edgesPerRev) / (2 * math.Pi)
	}
	return int64(math.Round(v))
}
