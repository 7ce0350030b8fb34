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

// Position reporting

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/aamcrae/quadrature/quad"
)

// Positions is the view of the registry used for reporting.
type Positions interface {
	Status() []quad.Status
	EdgesPerRev() int
	Rate() int
}

// Monitor periodically logs the position of every encoder, and
// flags any encoder that has seen new invalid transitions since
// the last report.
type Monitor struct {
	reg      Positions
	names    []string
	interval time.Duration
	faults   []uint64 // Fault counts at the last report
}

// NewMonitor creates and initialises a Monitor.
func NewMonitor(reg Positions, names []string, interval time.Duration) (*Monitor, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("report interval %s: must be positive", interval)
	}
	m := new(Monitor)
	m.reg = reg
	m.names = names
	m.interval = interval
	return m, nil
}

// Run reports on each interval boundary, and never returns.
func (m *Monitor) Run() {
	m.syncTime()
	ticker := time.NewTicker(m.interval)
	for {
		<-ticker.C
		for _, l := range m.report() {
			log.Print(l)
		}
	}
}

// report returns one line per encoder.
func (m *Monitor) report() []string {
	st := m.reg.Status()
	edges := m.reg.EdgesPerRev()
	var out []string
	for i, s := range st {
		name := fmt.Sprintf("#%d", i)
		if i < len(m.names) {
			name = m.names[i]
		}
		if i >= len(m.faults) {
			m.faults = append(m.faults, 0)
		}
		l := fmt.Sprintf("%s: %d edges, %.2f deg", name, s.Count, float64(s.Count)*360/float64(edges))
		if s.Faults != m.faults[i] {
			l += fmt.Sprintf(" (%d new faults, %d total, sampling at %d Hz)", s.Faults-m.faults[i], s.Faults, m.reg.Rate())
			m.faults[i] = s.Faults
		}
		out = append(out, l)
	}
	return out
}

// Sync time to the boundary of the interval, so that the reports
// are logged at regular times e.g at 0, 10, 20 seconds.
func (m *Monitor) syncTime() {
	n := time.Now()
	tr := n.Truncate(m.interval).Add(m.interval)
	time.Sleep(tr.Sub(n))
}
