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
	"sync/atomic"
	"time"
)

const generatorQueueSize = 20 // Size of queue for requests

type genMsg struct {
	rate  float64 // Edges per second
	edges int
	sync  chan bool
}

// Generator produces a quadrature signal on two outputs, as an
// encoder on a rotating shaft would.
// All edge generation is done in a background goroutine, so requests can be queued.
// The current position is maintained as an absolute number of edges,
// referenced from 0 when the generator is first created.
type Generator struct {
	pinI, pinQ Setter    // Outputs for the I and Q signals
	mChan      chan genMsg // channel for message requests
	stopChan   chan bool   // channel for signalling resets.
	index      int         // Index to edge sequence
	current    atomic.Int64
}

// Quadrature sequence of I and Q outputs for forward rotation.
var quadSequence = [4][2]int{
	{0, 0},
	{0, 1},
	{1, 1},
	{1, 0},
}

// NewGenerator creates and initialises a Generator driving the
// I and Q outputs. The outputs are set to the first state of the sequence.
func NewGenerator(pinI, pinQ Setter) *Generator {
	g := new(Generator)
	g.pinI = pinI
	g.pinQ = pinQ
	g.mChan = make(chan genMsg, generatorQueueSize)
	g.stopChan = make(chan bool)
	g.output()
	go g.handler()
	return g
}

// Close aborts any generation and stops the handler.
func (g *Generator) Close() {
	g.Stop()
	close(g.mChan)
	close(g.stopChan)
}

// Position returns the current position as an accumulated signed
// number of edges, with 0 as the starting location.
func (g *Generator) Position() int64 {
	return g.current.Load()
}

// Move immediately outputs one edge forward (dir > 0) or backward.
// It must not be used while generation requests are queued.
func (g *Generator) Move(dir int) {
	g.edge(dir)
}

// Skip immediately jumps two states, changing both outputs at once.
// This is not a valid quadrature transition, and is used to
// simulate noise or missed samples.
func (g *Generator) Skip() {
	g.index = (g.index + 2) & 3
	g.output()
}

// Stop aborts any current generation, and flushes all queued requests.
func (g *Generator) Stop() {
	g.stopChan <- true
	g.Wait()
}

// Step queues a request to generate the number of edges at the rate
// selected in edges per second.
// If edges is positive, the sequence runs forward, otherwise backward.
func (g *Generator) Step(rate float64, edges int) {
	if edges != 0 && rate > 0.0 {
		g.mChan <- genMsg{rate: rate, edges: edges}
	}
}

// Wait waits for all requests to complete
func (g *Generator) Wait() {
	c := make(chan bool)
	g.mChan <- genMsg{sync: c}
	<-c
}

// goroutine handler
// Listens on message channel, and generates the edges.
func (g *Generator) handler() {
	for {
		select {
		case m, ok := <-g.mChan:
			if !ok {
				return
			}
			if m.edges != 0 {
				if g.run(m.rate, m.edges) {
					return
				}
			}
			if m.sync != nil {
				// If sync channel is present, signal it.
				m.sync <- true
				close(m.sync)
			}
		case stop := <-g.stopChan:
			// Request to stop and flush all requests
			g.flush()
			if !stop {
				return
			}
		}
	}
}

// run outputs the requested number of edges, paced by a ticker.
// Once started, the stop channel is used to abort the sequence.
// Returns true if the handler should exit.
func (g *Generator) run(rate float64, edges int) bool {
	dir := 1
	if edges < 0 {
		dir = -1
		edges = -edges
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()
	for i := 0; i < edges; i++ {
		g.edge(dir)
		select {
		case stop := <-g.stopChan:
			g.flush()
			// A closed channel means the handler should exit.
			return !stop
		case <-ticker.C:
		}
	}
	return false
}

// Flush all remaining actions from message channel.
func (g *Generator) flush() {
	for {
		select {
		case m, ok := <-g.mChan:
			if !ok {
				return
			}
			if m.sync != nil {
				m.sync <- true
				close(m.sync)
			}
		default:
			return
		}
	}
}

func (g *Generator) edge(dir int) {
	g.index = (g.index + dir) & 3
	g.output()
	g.current.Add(int64(dir))
}

// Set the outputs according to the current sequence index.
func (g *Generator) output() {
	seq := quadSequence[g.index]
	g.pinI.Set(seq[0])
	g.pinQ.Set(seq[1])
}
