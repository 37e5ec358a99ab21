/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Guide is an alignment line found while snapping a dragged rect.
// Vertical guides sit at X = Pos and span From..To along Y; horizontal
// guides the other way round.
type Guide struct {
	Vertical bool
	Pos      float64
	From, To float64
}

type snapAxis struct {
	delta, dist float64
	guide       Guide
	ok          bool
}

func (s *snapAxis) consider(delta, threshold float64, g Guide) {
	d := math.Abs(delta)
	if d > threshold || (s.ok && d >= s.dist) {
		return
	}
	*s = snapAxis{delta: delta, dist: d, guide: g, ok: true}
}

// Snap shifts r by at most threshold per axis so that one of its edges or its
// centre lines up with an edge or centre of an anchor. Axes snap
// independently; the closest candidate wins and earlier anchors win ties.
func Snap(r Rect, anchors []Rect, threshold float64) (Rect, []Guide) {
	if threshold <= 0 {
		return r, nil
	}
	var sx, sy snapAxis
	for _, a := range anchors {
		spanY := [2]float64{math.Min(r.Y, a.Y), math.Max(r.Y+r.H, a.Y+a.H)}
		spanX := [2]float64{math.Min(r.X, a.X), math.Max(r.X+r.W, a.X+a.W)}
		for _, m := range [3]float64{r.X, r.X + r.W/2, r.X + r.W} {
			for _, t := range [3]float64{a.X, a.X + a.W/2, a.X + a.W} {
				sx.consider(t-m, threshold, Guide{Vertical: true, Pos: t, From: spanY[0], To: spanY[1]})
			}
		}
		for _, m := range [3]float64{r.Y, r.Y + r.H/2, r.Y + r.H} {
			for _, t := range [3]float64{a.Y, a.Y + a.H/2, a.Y + a.H} {
				sy.consider(t-m, threshold, Guide{Pos: t, From: spanX[0], To: spanX[1]})
			}
		}
	}

	var guides []Guide
	if sx.ok {
		r.X = FloatRound(r.X+sx.delta, 3)
		guides = append(guides, sx.guide)
	}
	if sy.ok {
		r.Y = FloatRound(r.Y+sy.delta, 3)
		guides = append(guides, sy.guide)
	}
	return r, guides
}
