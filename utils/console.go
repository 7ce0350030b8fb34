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

// Interactive console for reading and setting encoder positions.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aamcrae/config"

	"github.com/aamcrae/quadrature/io"
	"github.com/aamcrae/quadrature/quad"
	"github.com/aamcrae/quadrature/timer"
)

var configFile = flag.String("config", "encoders.conf", "Configuration file")

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
	handles := make(map[string]quad.Handle)
	for _, ec := range encs {
		h, err := reg.Attach(ec.I, ec.Q)
		if err != nil {
			log.Fatalf("%s: %v", ec.Name, err)
		}
		handles[ec.Name] = h
	}
	reader := bufio.NewReader(os.Stdin)
	unit := quad.Degrees
	for {
		fmt.Print("Enter command ('help' for help) ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		f := strings.Fields(text)
		if len(f) == 0 {
			f = []string{"p"}
		}
		switch f[0] {
		case "help":
			fmt.Println("  help - print help")
			fmt.Println("  p - print positions")
			fmt.Println("  unit raw|deg|rad - select display unit")
			fmt.Println("  set name value [unit] - set position")
			fmt.Println("  zero - set all positions to 0")
			fmt.Println("  rate hz - set sample rate")
			fmt.Println("  q - quit")
		case "q":
			return
		case "p":
			for _, ec := range encs {
				h := handles[ec.Name]
				p, _ := reg.Position(h, unit)
				faults, _ := reg.Faults(h)
				fmt.Printf("%s: %.3f %s (faults %d)\n", ec.Name, p, unit, faults)
			}
		case "unit":
			if len(f) != 2 {
				fmt.Println("Usage: unit raw|deg|rad")
				break
			}
			u, err := quad.ParseUnit(f[1])
			if err != nil {
				fmt.Println(err)
				break
			}
			unit = u
		case "set":
			if err := set(reg, handles, f[1:], unit); err != nil {
				fmt.Println(err)
			}
		case "zero":
			for _, h := range handles {
				reg.SetPosition(h, 0, quad.Raw)
			}
		case "rate":
			var hz int
			if len(f) != 2 {
				fmt.Println("Usage: rate hz")
				break
			}
			if _, err := fmt.Sscanf(f[1], "%d", &hz); err != nil {
				fmt.Printf("%s: %v\n", f[1], err)
				break
			}
			if hz, err = reg.SetSampleRate(hz); err != nil {
				fmt.Println(err)
			} else {
				fmt.Printf("Sampling at %d Hz\n", hz)
			}
		default:
			fmt.Printf("Unrecognised input\n")
		}
	}
}

func set(reg *quad.Registry, handles map[string]quad.Handle, args []string, unit quad.Unit) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("Usage: set name value [unit]")
	}
	h, ok := handles[args[0]]
	if !ok {
		return fmt.Errorf("%s: unknown encoder", args[0])
	}
	var v float64
	if _, err := fmt.Sscanf(args[1], "%g", &v); err != nil {
		return fmt.Errorf("%s: %v", args[1], err)
	}
	if len(args) == 3 {
		var err error
		if unit, err = quad.ParseUnit(args[2]); err != nil {
			return err
		}
	}
	return reg.SetPosition(h, v, unit)
}
