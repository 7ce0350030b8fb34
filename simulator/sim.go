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

// Encoder simulator.
// Simulated encoders are driven back and forth at different speeds,
// and the decoded positions are compared against the generated positions.

package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/aamcrae/quadrature/dial"
	"github.com/aamcrae/quadrature/io"
	"github.com/aamcrae/quadrature/quad"
	"github.com/aamcrae/quadrature/timer"
)

type SimEncoder struct {
	name   string
	gen    *io.Generator
	handle quad.Handle
	speed  float64 // Edges per second
	travel int     // Edges in each direction
}

var params = []struct {
	name   string
	i, q   int
	speed  float64
	travel int
}{
	{"slow", 2, 3, 50, 400},
	{"medium", 4, 5, 200, 1200},
	{"fast", 6, 7, 450, 2400},
}

var port = flag.Int("port", 8080, "Web server port number (0 to disable)")
var rate = flag.Int("rate", quad.DefaultRate, "Sample rate in Hz")
var lines = flag.Int("lines", 600, "Encoder lines per revolution")
var interval = flag.Duration("interval", 5*time.Second, "Report interval")

func main() {
	flag.Parse()
	sim := io.NewSimLines()
	src := timer.NewPeriodic()
	defer src.Stop()
	c := quad.DefaultConfig()
	c.Backend = "sim"
	c.Rate = *rate
	c.LinesPerRev = *lines
	reg, err := quad.NewRegistry(c, sim, src)
	if err != nil {
		log.Fatalf("Registry: %v", err)
	}
	var encs []*SimEncoder
	var names []string
	for _, p := range params {
		s := new(SimEncoder)
		s.name = p.name
		s.speed = p.speed
		s.travel = p.travel
		s.gen = io.NewGenerator(sim.Pin(p.i), sim.Pin(p.q))
		defer s.gen.Close()
		s.handle, err = reg.Attach(p.i, p.q)
		if err != nil {
			log.Fatalf("%s: %v", p.name, err)
		}
		go s.run()
		encs = append(encs, s)
		names = append(names, p.name)
	}
	if *port != 0 {
		go func() {
			log.Fatal(dial.NewServer(reg, names).ListenAndServe(*port))
		}()
	}
	for {
		time.Sleep(*interval)
		for _, s := range encs {
			fmt.Println(s.check(reg))
		}
	}
}

// run moves the encoder back and forth forever.
func (s *SimEncoder) run() {
	dir := 1
	for {
		s.gen.Step(s.speed, dir*s.travel)
		s.gen.Wait()
		dir = -dir
	}
}

// check compares the decoded position against the generated position.
// The generator may be mid-edge when sampled, so a difference of one is expected.
func (s *SimEncoder) check(reg *quad.Registry) string {
	want := s.gen.Position()
	got, err := reg.Count(s.handle)
	if err != nil {
		return fmt.Sprintf("%s: %v", s.name, err)
	}
	faults, _ := reg.Faults(s.handle)
	diff := got - want
	msg := "ok"
	if diff > 1 || diff < -1 {
		msg = "DRIFT"
	}
	return fmt.Sprintf("%s: generated %d, decoded %d, diff %d, faults %d - %s", s.name, want, got, diff, faults, msg)
}
