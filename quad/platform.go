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

package quad

import (
	"time"
)

// Lines provides access to the digital input lines an encoder is wired to.
type Lines interface {
	// ConfigureInput sets the line as an input with a pull-up.
	ConfigureInput(line int) error
	// Read returns true if the line is high.
	// It is called from the sampler, so must not block or allocate.
	Read(line int) bool
	// Release undoes ConfigureInput. Lines not configured are ignored.
	Release(line int)
}

// Source is a periodic tick source.
// Start begins invoking tick, initially after interval. The duration
// returned by tick is added to the previous deadline to get the next one,
// so that the sampling period does not drift.
// A Source never invokes tick concurrently with itself.
type Source interface {
	Start(interval time.Duration, tick func() time.Duration)
}
