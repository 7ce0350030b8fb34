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

// Quadrature transition table

package quad

// Invalid is the delta returned for a transition where both
// lines changed between samples.
const Invalid int8 = -128

// The quadrature state is I<<1 | Q. Forward rotation follows the
// Gray sequence 0, 1, 3, 2, 0, reverse rotation the opposite.
var transitions = [4][4]int8{
	{0, 1, -1, Invalid}, // from 0
	{-1, 0, Invalid, 1}, // from 1
	{1, Invalid, 0, -1}, // from 2
	{Invalid, -1, 1, 0}, // from 3
}

// Delta returns the position change for a transition between
// two quadrature states, or Invalid if the transition skipped a state.
func Delta(prev, cur uint8) int8 {
	return transitions[prev&3][cur&3]
}

// State packs the I and Q line levels into a quadrature state.
func State(i, q bool) uint8 {
	var s uint8
	if i {
		s |= 2
	}
	if q {
		s |= 1
	}
	return s
}
