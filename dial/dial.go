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

// Package dial renders encoder positions as hands on a dial.
package dial

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/aamcrae/quadrature/quad"
)

// Size is the default width and height of each dial in pixels.
const Size = 200

// Draw renders one dial per encoder, left to right. The hand points
// up at position 0, and turns clockwise as the position increases.
// An encoder that has seen invalid transitions is drawn in red.
// If edgesPerRev is not positive, no hands are drawn.
func Draw(st []quad.Status, names []string, edgesPerRev, size int) image.Image {
	if size <= 0 {
		size = Size
	}
	n := len(st)
	if n == 0 {
		n = 1
	}
	c := gg.NewContext(size*n, size)
	c.SetRGB(1, 1, 1)
	c.Clear()
	mid := float64(size) / 2
	radius := mid * 0.8
	for i, s := range st {
		cx := float64(i*size) + mid
		c.SetRGB(0.5, 0.5, 0.5)
		c.SetLineWidth(2)
		c.DrawCircle(cx, mid, radius)
		c.Stroke()
		// Quarter marks.
		for q := 0; q < 4; q++ {
			a := float64(q) * math.Pi / 2
			c.DrawLine(cx+radius*0.9*math.Sin(a), mid-radius*0.9*math.Cos(a), cx+radius*math.Sin(a), mid-radius*math.Cos(a))
		}
		c.Stroke()
		if s.Faults != 0 {
			c.SetRGB(1, 0, 0)
		} else {
			c.SetRGB(0, 0, 1)
		}
		if edgesPerRev > 0 {
			drawHand(c, cx, mid, radius*0.9, s.Count, edgesPerRev)
		}
		c.SetRGB(0, 0, 0)
		c.DrawStringAnchored(label(i, names), cx, mid+radius*0.4, 0.5, 0.5)
	}
	return c.Image()
}

func drawHand(c *gg.Context, cx, cy, length float64, count int64, edgesPerRev int) {
	p := count % int64(edgesPerRev)
	radians := float64(p) * 2 * math.Pi / float64(edgesPerRev)
	x := length*math.Sin(radians) + cx
	y := cy - length*math.Cos(radians)
	c.SetLineWidth(4)
	c.DrawLine(cx, cy, x, y)
	c.Stroke()
}

func label(i int, names []string) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("#%d", i)
}
