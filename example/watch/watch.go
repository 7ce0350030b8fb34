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

// Watch the I and Q lines of an encoder and print each state change.

package main

import (
	"flag"
	"log"
	"time"

	"github.com/aamcrae/quadrature/io"
	"github.com/aamcrae/quadrature/quad"
)

var backend = flag.String("backend", "cdev", "GPIO backend")
var chip = flag.String("chip", "gpiochip0", "GPIO chip for the cdev backend")
var gpioI = flag.Int("i", 17, "GPIO pin for the I line")
var gpioQ = flag.Int("q", 27, "GPIO pin for the Q line")
var poll = flag.Duration("poll", time.Millisecond, "Poll interval")

func main() {
	flag.Parse()
	lines, err := io.Open(*backend, *chip)
	if err != nil {
		log.Fatalf("%s: %v", *backend, err)
	}
	defer lines.Close()
	for _, p := range []int{*gpioI, *gpioQ} {
		if err := lines.ConfigureInput(p); err != nil {
			log.Fatalf("Pin %d: %v", p, err)
		}
	}
	last := quad.State(lines.Read(*gpioI), lines.Read(*gpioQ))
	log.Printf("state %d", last)
	for {
		time.Sleep(*poll)
		s := quad.State(lines.Read(*gpioI), lines.Read(*gpioQ))
		if s == last {
			continue
		}
		d := quad.Delta(last, s)
		if d == quad.Invalid {
			log.Printf("state %d -> %d: invalid", last, s)
		} else {
			log.Printf("state %d -> %d: %+d", last, s, d)
		}
		last = s
	}
}
