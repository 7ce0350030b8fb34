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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levels(s *SimLines, i, q int) [2]bool {
	return [2]bool{s.Read(i), s.Read(q)}
}

func TestGeneratorSequence(t *testing.T) {
	s := NewSimLines()
	g := NewGenerator(s.Pin(1), s.Pin(2))
	defer g.Close()
	assert.Equal(t, [2]bool{false, false}, levels(s, 1, 2), "initial state")
	want := [][2]bool{
		{false, true},
		{true, true},
		{true, false},
		{false, false},
	}
	for i, w := range want {
		g.Move(1)
		assert.Equal(t, w, levels(s, 1, 2), "forward edge %d", i)
	}
	assert.Equal(t, int64(4), g.Position())
	g.Move(-1)
	assert.Equal(t, [2]bool{true, false}, levels(s, 1, 2), "reverse edge")
	assert.Equal(t, int64(3), g.Position())
}

func TestGeneratorSkip(t *testing.T) {
	s := NewSimLines()
	g := NewGenerator(s.Pin(3), s.Pin(4))
	defer g.Close()
	g.Skip()
	assert.Equal(t, [2]bool{true, true}, levels(s, 3, 4))
	assert.Zero(t, g.Position(), "skip does not move the position")
}

func TestGeneratorStep(t *testing.T) {
	s := NewSimLines()
	g := NewGenerator(s.Pin(5), s.Pin(6))
	defer g.Close()
	g.Step(10000, 40)
	g.Step(10000, -12)
	g.Wait()
	assert.Equal(t, int64(28), g.Position())
	// 28 edges is 7 full cycles, so back at the initial state.
	assert.Equal(t, [2]bool{false, false}, levels(s, 5, 6))
}

func TestGeneratorStop(t *testing.T) {
	s := NewSimLines()
	g := NewGenerator(s.Pin(7), s.Pin(8))
	defer g.Close()
	g.Step(1000, 100000)
	time.Sleep(10 * time.Millisecond)
	g.Stop()
	p := g.Position()
	require.Less(t, p, int64(100000))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, p, g.Position(), "generation continued after stop")
}

func TestSimLines(t *testing.T) {
	s := NewSimLines()
	assert.True(t, s.Read(10), "lines start high")
	assert.False(t, s.Configured(10))
	require.NoError(t, s.ConfigureInput(10))
	assert.True(t, s.Configured(10))
	s.Set(10, false)
	assert.False(t, s.Read(10))
	assert.Error(t, s.ConfigureInput(MaxLine+1))
	assert.Error(t, s.ConfigureInput(-1))
	assert.True(t, s.Read(-1), "out of range reads are high")
	assert.Error(t, s.Pin(10).Set(2))
	assert.NoError(t, s.Pin(10).Set(1))
	assert.True(t, s.Read(10))
	assert.NotZero(t, s.Reads())
	s.Release(10)
	assert.False(t, s.Configured(10))
	s.Release(-1)
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("nope", "")
	assert.Error(t, err)
	l, err := Open("sim", "")
	require.NoError(t, err)
	assert.IsType(t, &SimLines{}, l)
	assert.NoError(t, l.Close())
}

func TestUnconfiguredLines(t *testing.T) {
	for _, l := range []Lines{NewSysfsLines(), NewCdevLines("gpiochip99")} {
		assert.True(t, l.Read(4), "%T: unconfigured line is high", l)
		assert.True(t, l.Read(MaxLine+1), "%T: out of range line is high", l)
		assert.Error(t, l.ConfigureInput(-1), "%T", l)
		l.Release(4)
		l.Release(-1)
		assert.NoError(t, l.Close(), "%T", l)
	}
}
