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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aamcrae/quadrature/io"
	"github.com/aamcrae/quadrature/timer"
)

type testRig struct {
	r   *Registry
	sim *io.SimLines
	src *timer.Manual
}

func newRig(t *testing.T, capacity int) *testRig {
	t.Helper()
	c := DefaultConfig()
	c.Capacity = capacity
	rig := &testRig{sim: io.NewSimLines(), src: new(timer.Manual)}
	var err error
	rig.r, err = NewRegistry(c, rig.sim, rig.src)
	require.NoError(t, err)
	return rig
}

// attach creates a generator on a pair of lines and attaches an encoder to them.
func (rig *testRig) attach(t *testing.T, i, q int) (Handle, *io.Generator) {
	t.Helper()
	g := io.NewGenerator(rig.sim.Pin(i), rig.sim.Pin(q))
	t.Cleanup(g.Close)
	h, err := rig.r.Attach(i, q)
	require.NoError(t, err)
	return h, g
}

func TestNewRegistryValidates(t *testing.T) {
	c := DefaultConfig()
	c.Rate = 100
	_, err := NewRegistry(c, io.NewSimLines(), new(timer.Manual))
	assert.ErrorIs(t, err, ErrRateOutOfRange)
	c = DefaultConfig()
	c.Capacity = 0
	_, err = NewRegistry(c, io.NewSimLines(), new(timer.Manual))
	assert.Error(t, err)
	c = DefaultConfig()
	c.LinesPerRev = 0
	_, err = NewRegistry(c, io.NewSimLines(), new(timer.Manual))
	assert.Error(t, err)
}

func TestFirstAttachStartsSampler(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	assert.Equal(t, Idle, rig.r.State())
	assert.Equal(t, 0, rig.src.Fire(1), "source ticked before start")

	rig.attach(t, 1, 2)
	assert.Equal(t, Running, rig.r.State())
	assert.Equal(t, 1, rig.src.Starts())
	assert.Equal(t, Interval(DefaultRate), rig.src.Interval())
	assert.True(t, rig.sim.Configured(1))
	assert.True(t, rig.sim.Configured(2))

	rig.attach(t, 3, 4)
	assert.Equal(t, 1, rig.src.Starts(), "source started again")
	assert.Equal(t, Running, rig.r.State())
}

func TestAttachLineFailure(t *testing.T) {
	rig := newRig(t, 2)
	_, err := rig.r.Attach(1, io.MaxLine+1)
	require.Error(t, err)
	assert.Equal(t, 0, rig.r.Len())
	assert.Equal(t, Idle, rig.r.State())
	assert.Equal(t, 0, rig.src.Starts())
	assert.False(t, rig.sim.Configured(1), "I line left configured")
}

func TestAttachLineFailureSharedLine(t *testing.T) {
	rig := newRig(t, 2)
	rig.attach(t, 1, 2)
	_, err := rig.r.Attach(2, -1)
	require.Error(t, err)
	assert.True(t, rig.sim.Configured(2), "line in use by another encoder was released")
	assert.Equal(t, 1, rig.r.Len())
	_, err = rig.r.Attach(3, io.MaxLine+1)
	require.Error(t, err)
	assert.False(t, rig.sim.Configured(3))
}

func TestForwardRotation(t *testing.T) {
	const cycles = 25
	rig := newRig(t, MaxEncoders)
	h, g := rig.attach(t, 1, 2)
	for i := 0; i < cycles*4; i++ {
		g.Move(1)
		rig.src.Fire(1)
	}
	c, err := rig.r.Count(h)
	require.NoError(t, err)
	assert.Equal(t, int64(cycles*4), c)
	for i := 0; i < cycles*4+3; i++ {
		g.Move(-1)
		rig.src.Fire(1)
	}
	c, _ = rig.r.Count(h)
	assert.Equal(t, int64(-3), c)
	f, err := rig.r.Faults(h)
	require.NoError(t, err)
	assert.Zero(t, f)
	assert.Equal(t, uint64(cycles*8+3), rig.r.Ticks())
}

func TestOversampling(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	h, g := rig.attach(t, 1, 2)
	for i := 0; i < 40; i++ {
		g.Move(1)
		rig.src.Fire(3)
	}
	c, _ := rig.r.Count(h)
	assert.Equal(t, int64(40), c)
}

func TestInvalidTransition(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	h, g := rig.attach(t, 1, 2)
	g.Move(1)
	rig.src.Fire(1)
	g.Skip()
	rig.src.Fire(1)
	c, _ := rig.r.Count(h)
	assert.Equal(t, int64(1), c, "skipped transition changed the count")
	f, _ := rig.r.Faults(h)
	assert.Equal(t, uint64(1), f)
	// Sampling continues from the new state.
	g.Move(1)
	rig.src.Fire(1)
	c, _ = rig.r.Count(h)
	assert.Equal(t, int64(2), c)
}

func TestAttachBeyondCapacity(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	var gens []*io.Generator
	for i := 0; i < MaxEncoders; i++ {
		h, g := rig.attach(t, i*2, i*2+1)
		assert.Equal(t, Handle(i), h)
		gens = append(gens, g)
	}
	h, err := rig.r.Attach(100, 101)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, Handle(-1), h)
	assert.False(t, rig.sim.Configured(100), "line configured on failed attach")
	assert.Equal(t, MaxEncoders, rig.r.Len())
	assert.Equal(t, MaxEncoders, rig.r.Capacity())

	// All the attached encoders are still sampled.
	for _, g := range gens {
		g.Move(1)
	}
	rig.src.Fire(1)
	for i := range gens {
		c, err := rig.r.Count(Handle(i))
		require.NoError(t, err)
		assert.Equal(t, int64(1), c, "encoder %d", i)
	}
	_, err = rig.r.Count(Handle(MaxEncoders))
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestSetPosition(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	h, _ := rig.attach(t, 1, 2)
	require.NoError(t, rig.r.SetPosition(h, 180, Degrees))
	d, err := rig.r.Position(h, Degrees)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, d, 1e-9)
	raw, err := rig.r.Position(h, Raw)
	require.NoError(t, err)
	assert.Equal(t, float64(rig.r.EdgesPerRev()/2), raw)
	r, _ := rig.r.Position(h, Radians)
	assert.InDelta(t, 3.141592653589793, r, 1e-9)
	c, _ := rig.r.Count(h)
	assert.Equal(t, int64(DefaultLinesPerRev*2), c)
}

func TestInvalidHandle(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	_, err := rig.r.Position(0, Raw)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	rig.attach(t, 1, 2)
	_, err = rig.r.Position(-1, Raw)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.ErrorIs(t, rig.r.SetPosition(1, 0, Raw), ErrInvalidHandle)
	_, err = rig.r.Faults(7)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestSampleRate(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	rig.attach(t, 1, 2)
	_, err := rig.r.SetSampleRate(100000)
	assert.ErrorIs(t, err, ErrRateOutOfRange)
	assert.Equal(t, DefaultRate, rig.r.Rate())
	_, err = rig.r.SetSampleRate(MinRate - 1)
	assert.ErrorIs(t, err, ErrRateOutOfRange)

	hz, err := rig.r.SetSampleRate(1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, hz)
	for _, hz := range []int{MinRate, MaxRate} {
		got, err := rig.r.SetSampleRate(hz)
		assert.NoError(t, err)
		assert.Equal(t, hz, got)
	}
	assert.Equal(t, MaxRate, rig.r.Rate())
}

func TestRateChangeSchedule(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	_, err := rig.r.SetSampleRate(1000)
	require.NoError(t, err)
	rig.attach(t, 1, 2)
	// Started at 1000 Hz, so the first deadline is at 1ms.
	require.Equal(t, time.Millisecond, rig.src.Deadline())
	rig.src.Fire(2)
	assert.Equal(t, 3*time.Millisecond, rig.src.Deadline())
	_, err = rig.r.SetSampleRate(2000)
	require.NoError(t, err)
	rig.src.Fire(2)
	assert.Equal(t, 4*time.Millisecond, rig.src.Deadline())
}

func TestStatus(t *testing.T) {
	rig := newRig(t, MaxEncoders)
	assert.Empty(t, rig.r.Status())
	_, g := rig.attach(t, 5, 6)
	h, _ := rig.attach(t, 7, 8)
	require.NoError(t, rig.r.SetPosition(h, -10, Raw))
	g.Move(1)
	rig.src.Fire(1)
	st := rig.r.Status()
	require.Len(t, st, 2)
	assert.Equal(t, Status{Handle: 0, I: 5, Q: 6, State: 1, Count: 1}, st[0])
	assert.Equal(t, Status{Handle: 1, I: 7, Q: 8, State: 0, Count: -10}, st[1])
}

// Reads from the foreground while the sampler runs flat out must only
// ever see values the counter actually held.
func TestConcurrentReads(t *testing.T) {
	const edges = 20000
	rig := newRig(t, MaxEncoders)
	h, g := rig.attach(t, 1, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < edges; i++ {
			g.Move(1)
			rig.src.Fire(1)
		}
	}()
	var last int64
	for last < edges {
		c, err := rig.r.Count(h)
		require.NoError(t, err)
		require.GreaterOrEqual(t, c, last, "count went backwards")
		require.LessOrEqual(t, c, int64(edges))
		last = c
	}
	wg.Wait()
	f, _ := rig.r.Faults(h)
	assert.Zero(t, f)
}

func TestPeriodicSource(t *testing.T) {
	src := timer.NewPeriodic()
	defer src.Stop()
	sim := io.NewSimLines()
	c := DefaultConfig()
	c.Rate = MaxRate
	r, err := NewRegistry(c, sim, src)
	require.NoError(t, err)
	g := io.NewGenerator(sim.Pin(1), sim.Pin(2))
	defer g.Close()
	h, err := r.Attach(1, 2)
	require.NoError(t, err)
	// Generate edges well below the sample rate.
	g.Step(200, 20)
	g.Wait()
	time.Sleep(20 * time.Millisecond)
	assert.NotZero(t, r.Ticks())
	cnt, err := r.Count(h)
	require.NoError(t, err)
	assert.Equal(t, g.Position(), cnt)
}
