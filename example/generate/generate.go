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

// Generate a quadrature signal on two output pins, for testing
// the decoder by looping the outputs back to a pair of inputs.

package main

import (
	"flag"
	"log"
	"time"

	sysfs "github.com/aamcrae/gpio"

	"github.com/aamcrae/quadrature/io"
)

var outI = flag.Int("i", 5, "GPIO pin for the I output")
var outQ = flag.Int("q", 6, "GPIO pin for the Q output")
var speed = flag.Float64("speed", 100, "Edges per second")
var edges = flag.Int("edges", 2400, "Edges to move in each direction")
var count = flag.Int("count", 10, "Number of back and forth movements")

func main() {
	flag.Parse()
	var pins []io.Setter
	for _, p := range []int{*outI, *outQ} {
		out, err := sysfs.OutputPin(p)
		if err != nil {
			log.Fatalf("Pin %d: %v", p, err)
		}
		defer out.Close()
		pins = append(pins, out)
	}
	g := io.NewGenerator(pins[0], pins[1])
	defer g.Close()
	now := time.Now()
	e := *edges
	for i := 0; i < *count*2; i++ {
		g.Step(*speed, e)
		e = -e
	}
	g.Step(*speed, *edges/2)
	g.Wait()
	log.Printf("Elapsed = %s, position = %d", time.Now().Sub(now), g.Position())
}
