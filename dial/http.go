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

// HTTP server for encoder dials

package dial

import (
	"bytes"
	"fmt"
	"image/png"
	"log"
	"net/http"

	"github.com/aamcrae/quadrature/quad"
)

// Registry is the view of the encoders the server reports on.
type Registry interface {
	Status() []quad.Status
	EdgesPerRev() int
	Rate() int
	Ticks() uint64
	State() quad.SamplerState
}

// Server serves the dial image and a text status page.
type Server struct {
	reg   Registry
	names []string
	size  int
}

// NewServer creates a server reporting on the registry. names labels
// each encoder in handle order.
func NewServer(reg Registry, names []string) *Server {
	s := new(Server)
	s.reg = reg
	s.names = names
	s.size = Size
	return s
}

// Handler returns the handler for /dial.png and /status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/dial.png", s.dial)
	mux.HandleFunc("/status", s.status)
	return mux
}

// ListenAndServe starts the server on the port selected.
func (s *Server) ListenAndServe(port int) error {
	url := fmt.Sprintf(":%d", port)
	log.Printf("Starting server on %s", url)
	server := &http.Server{Addr: url, Handler: s.Handler()}
	return server.ListenAndServe()
}

func (s *Server) dial(w http.ResponseWriter, r *http.Request) {
	img := Draw(s.reg.Status(), s.names, s.reg.EdgesPerRev(), s.size)
	var b bytes.Buffer
	if err := png.Encode(&b, img); err != nil {
		log.Printf("Error writing image: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(b.Bytes())
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	edges := s.reg.EdgesPerRev()
	fmt.Fprintf(w, "sampler %s, %d Hz, %d ticks, %d edges/rev\n", s.reg.State(), s.reg.Rate(), s.reg.Ticks(), edges)
	for i, st := range s.reg.Status() {
		deg := float64(st.Count) * 360 / float64(edges)
		fmt.Fprintf(w, "%s: gpio %d,%d state %d count %d (%.2f deg) faults %d\n",
			label(i, s.names), st.I, st.Q, st.State, st.Count, deg, st.Faults)
	}
}
