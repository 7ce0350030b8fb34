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
	"errors"
	"fmt"
	"time"
)

// Sample rate limits in Hz.
const (
	MinRate     = 250
	MaxRate     = 20000
	DefaultRate = 10000
)

// ErrRateOutOfRange is returned for a sample rate outside MinRate and MaxRate.
var ErrRateOutOfRange = errors.New("sample rate out of range")

// Interval returns the tick interval for a sample rate.
func Interval(hz int) time.Duration {
	return time.Second / time.Duration(hz)
}

func checkRate(hz int) error {
	if hz < MinRate || hz > MaxRate {
		return fmt.Errorf("%d Hz: %w (%d-%d)", hz, ErrRateOutOfRange, MinRate, MaxRate)
	}
	return nil
}

// SetSampleRate changes the rate at which the encoders are sampled.
// The new interval is picked up by the source on the next tick.
// If the rate is out of range, the current rate is retained and an
// error is returned.
func (r *Registry) SetSampleRate(hz int) (int, error) {
	if err := checkRate(hz); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rate.Store(int32(hz))
	r.increment.Store(int64(Interval(hz)))
	return hz, nil
}

// Rate returns the current sample rate in Hz.
func (r *Registry) Rate() int {
	return int(r.rate.Load())
}
