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

// Package timer provides periodic tick sources for the sampler.

package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Maximum number of intervals the source may fall behind before
// the schedule is reset to the current time.
const maxLag = 10

// Periodic calls a tick function from a background goroutine.
// The next deadline is always calculated by adding the interval
// returned by the tick function to the previous deadline, rather than
// to the current time, so that the average period is maintained even
// when individual ticks are late.
type Periodic struct {
	once     sync.Once
	stopOnce sync.Once
	started  atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	overruns atomic.Uint64 // Number of times the schedule was reset
}

// NewPeriodic creates a new Periodic source.
func NewPeriodic() *Periodic {
	p := new(Periodic)
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	return p
}

// Start starts the goroutine calling tick. Only the first call has any effect.
func (p *Periodic) Start(interval time.Duration, tick func() time.Duration) {
	p.once.Do(func() {
		p.started.Store(true)
		go p.run(interval, tick)
	})
}

// Stop stops the source and waits for the goroutine to exit.
func (p *Periodic) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	if p.started.Load() {
		<-p.done
	}
}

// Overruns returns the number of times the source fell too far behind
// and had to restart the schedule.
func (p *Periodic) Overruns() uint64 {
	return p.overruns.Load()
}

func (p *Periodic) run(interval time.Duration, tick func() time.Duration) {
	defer close(p.done)
	next := time.Now().Add(interval)
	t := time.NewTimer(interval)
	defer t.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
		}
		inc := tick()
		next = next.Add(inc)
		now := time.Now()
		d := next.Sub(now)
		if d < -inc*maxLag {
			// Too far behind to catch up, so restart the schedule.
			p.overruns.Add(1)
			next = now.Add(inc)
			d = inc
		}
		if d < 0 {
			d = 0
		}
		t.Reset(d)
	}
}
