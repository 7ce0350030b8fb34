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

// Encoder registry and periodic sampler

package quad

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrCapacityExceeded = errors.New("encoder capacity exceeded")
	ErrInvalidHandle    = errors.New("invalid encoder handle")
)

// SamplerState is the lifecycle state of the sampler.
type SamplerState int32

const (
	Idle    SamplerState = iota // No encoders attached
	Running SamplerState = iota // Source started
)

func (s SamplerState) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Status is a snapshot of one attached encoder.
type Status struct {
	Handle Handle
	I, Q   int
	State  uint8
	Count  int64
	Faults uint64
}

// Registry holds a fixed number of encoder slots, and samples
// all the attached encoders on each tick of the periodic source.
// The source is started when the first encoder is attached, and
// is never stopped. Encoders cannot be detached.
//
// Attach and SetSampleRate are serialised by a mutex; the sampler
// never takes it. The slot for a new encoder is filled before the
// occupancy count is published, so the sampler only ever sees
// initialised encoders.
type Registry struct {
	lines       Lines
	source      Source
	edgesPerRev int           // Quadrature edges per revolution
	mu          sync.Mutex    // Guards attach and rate changes
	slots       []*encoder    // Fixed capacity, filled in order
	n           atomic.Int32  // Attached encoders
	state       atomic.Int32  // SamplerState
	rate        atomic.Int32  // Sample rate in Hz
	increment   atomic.Int64  // Tick interval in nanoseconds
	ticks       atomic.Uint64 // Number of ticks processed
}

// NewRegistry creates a Registry using the lines and source provided.
// The source is not started until the first encoder is attached.
func NewRegistry(c *Config, lines Lines, source Source) (*Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := new(Registry)
	r.lines = lines
	r.source = source
	r.edgesPerRev = c.LinesPerRev * 4
	r.slots = make([]*encoder, c.Capacity)
	r.rate.Store(int32(c.Rate))
	r.increment.Store(int64(Interval(c.Rate)))
	return r, nil
}

// Attach configures the I and Q lines as inputs, and adds an encoder
// using them to the registry. The returned handle is used to access
// the encoder's position.
// If the registry is full, ErrCapacityExceeded is returned and
// the lines are not touched. If a line cannot be configured, the
// other line is released unless another encoder is using it.
func (r *Registry) Attach(i, q int) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int(r.n.Load())
	if n >= len(r.slots) {
		return -1, fmt.Errorf("lines %d,%d: %w (capacity %d)", i, q, ErrCapacityExceeded, len(r.slots))
	}
	if err := r.lines.ConfigureInput(i); err != nil {
		return -1, fmt.Errorf("line %d: %w", i, err)
	}
	if err := r.lines.ConfigureInput(q); err != nil {
		if !r.inUse(i, n) {
			r.lines.Release(i)
		}
		return -1, fmt.Errorf("line %d: %w", q, err)
	}
	e := new(encoder)
	e.i = i
	e.q = q
	// Start from the current line state so the first sample is not a fault.
	e.state.Store(uint32(State(r.lines.Read(i), r.lines.Read(q))))
	r.slots[n] = e
	r.n.Store(int32(n + 1))
	if r.state.CompareAndSwap(int32(Idle), int32(Running)) {
		log.Printf("sampler: starting at %d Hz", r.Rate())
		r.source.Start(time.Duration(r.increment.Load()), r.Tick)
	}
	return Handle(n), nil
}

// inUse returns true if one of the first n encoders uses the line.
func (r *Registry) inUse(line, n int) bool {
	for _, e := range r.slots[:n] {
		if e.i == line || e.q == line {
			return true
		}
	}
	return false
}

// Tick samples every attached encoder, and returns the interval to
// the next tick. It is called by the periodic source, and does not
// block or allocate.
func (r *Registry) Tick() time.Duration {
	inc := time.Duration(r.increment.Load())
	n := int(r.n.Load())
	for _, e := range r.slots[:n] {
		e.sample(r.lines)
	}
	r.ticks.Add(1)
	return inc
}

func (r *Registry) get(h Handle) (*encoder, error) {
	if h < 0 || int(h) >= int(r.n.Load()) {
		return nil, fmt.Errorf("%d: %w", h, ErrInvalidHandle)
	}
	return r.slots[h], nil
}

// Position returns the current position of the encoder.
func (r *Registry) Position(h Handle, u Unit) (float64, error) {
	e, err := r.get(h)
	if err != nil {
		return 0, err
	}
	return toUnit(e.count.Load(), u, r.edgesPerRev), nil
}

// SetPosition sets the position of the encoder. The value is
// rounded to the nearest quadrature edge.
func (r *Registry) SetPosition(h Handle, v float64, u Unit) error {
	e, err := r.get(h)
	if err != nil {
		return err
	}
	e.count.Store(fromUnit(v, u, r.edgesPerRev))
	return nil
}

// Count returns the raw position of the encoder in quadrature edges.
func (r *Registry) Count(h Handle) (int64, error) {
	e, err := r.get(h)
	if err != nil {
		return 0, err
	}
	return e.count.Load(), nil
}

// Faults returns the number of invalid transitions seen by the encoder,
// usually caused by noise or a sample rate too low for the shaft speed.
func (r *Registry) Faults(h Handle) (uint64, error) {
	e, err := r.get(h)
	if err != nil {
		return 0, err
	}
	return e.faults.Load(), nil
}

// Status returns a snapshot of all the attached encoders.
func (r *Registry) Status() []Status {
	n := int(r.n.Load())
	st := make([]Status, n)
	for i, e := range r.slots[:n] {
		st[i] = Status{
			Handle: Handle(i),
			I:      e.i,
			Q:      e.q,
			State:  uint8(e.state.Load()),
			Count:  e.count.Load(),
			Faults: e.faults.Load(),
		}
	}
	return st
}

// Len returns the number of attached encoders.
func (r *Registry) Len() int {
	return int(r.n.Load())
}

// Capacity returns the maximum number of encoders.
func (r *Registry) Capacity() int {
	return len(r.slots)
}

// State returns the sampler lifecycle state.
func (r *Registry) State() SamplerState {
	return SamplerState(r.state.Load())
}

// Ticks returns the number of ticks processed.
func (r *Registry) Ticks() uint64 {
	return r.ticks.Load()
}

// EdgesPerRev returns the number of quadrature edges in a revolution.
func (r *Registry) EdgesPerRev() int {
	return r.edgesPerRev
}
