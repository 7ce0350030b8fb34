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

package timer

import (
	"sync"
	"time"
)

// Manual is a source that only ticks when Fire is called.
// It tracks the schedule the same way Periodic does, so the
// accumulated deadline can be checked without waiting on real time.
type Manual struct {
	mu       sync.Mutex
	tick     func() time.Duration
	starts   int
	interval time.Duration // Initial interval
	elapsed  time.Duration // Deadline of the next tick, relative to Start
}

// Start records the tick function.
func (m *Manual) Start(interval time.Duration, tick func() time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	m.tick = tick
	m.interval = interval
	m.elapsed = interval
}

// Fire invokes the tick function n times, and returns the number of
// ticks delivered. Nothing is delivered before Start is called.
func (m *Manual) Fire(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tick == nil {
		return 0
	}
	for i := 0; i < n; i++ {
		m.elapsed += m.tick()
	}
	return n
}

// Starts returns the number of times Start has been called.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Deadline returns the time of the next tick, relative to Start.
func (m *Manual) Deadline() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

// Interval returns the interval passed to Start.
func (m *Manual) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}
