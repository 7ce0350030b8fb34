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

// Quadrature encoder program

package main

import (
	"flag"
	"log"
	"time"

	"github.com/aamcrae/config"

	"github.com/aamcrae/quadrature/dial"
	"github.com/aamcrae/quadrature/io"
	"github.com/aamcrae/quadrature/quad"
	"github.com/aamcrae/quadrature/timer"
)

var configFile = flag.String("config", "encoders.conf", "Configuration file")
var port = flag.Int("port", 0, "Web server port number (0 to disable)")
var report = flag.Duration("report", 10*time.Second, "Interval for logging positions")
var rate = flag.Int("rate", 0, "Sample rate in Hz, overriding the config file")

func main() {
	flag.Parse()
	conf, err := config.ParseFile(*configFile)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	c, encs, err := quad.ReadConfig(conf)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	lines, err := io.Open(c.Backend, c.Chip)
	if err != nil {
		log.Fatalf("Backend %s: %v", c.Backend, err)
	}
	defer lines.Close()
	src := timer.NewPeriodic()
	defer src.Stop()
	reg, err := quad.NewRegistry(c, lines, src)
	if err != nil {
		log.Fatalf("Registry: %v", err)
	}
	if *rate != 0 {
		if _, err := reg.SetSampleRate(*rate); err != nil {
			log.Fatalf("Rate: %v", err)
		}
	}
	var names []string
	for _, ec := range encs {
		h, err := reg.Attach(ec.I, ec.Q)
		if err != nil {
			log.Fatalf("%s: %v", ec.Name, err)
		}
		if err := reg.SetPosition(h, ec.Position, ec.Unit); err != nil {
			log.Fatalf("%s: %v", ec.Name, err)
		}
		log.Printf("%s: attached to gpio %d,%d at %g %s", ec.Name, ec.I, ec.Q, ec.Position, ec.Unit)
		names = append(names, ec.Name)
	}
	if *port != 0 {
		go func() {
			log.Fatal(dial.NewServer(reg, names).ListenAndServe(*port))
		}()
	}
	m, err := NewMonitor(reg, names, *report)
	if err != nil {
		log.Fatalf("Monitor: %v", err)
	}
	m.Run()
}
