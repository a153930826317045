// Package overlap detects and minimally corrects bounding-box collisions
// among positioned elements.
//
// Detection is an axis-aligned intersection test over padding-expanded
// rectangles. Resolution nudges colliding pairs apart over a bounded number
// of passes - a soft heuristic that keeps sparse layouts clean without
// pretending to be an exact solver for dense clusters. Elements flagged
// allow-overlap are invisible to both detection and resolution.
package overlap

import (
	"math"
	"sort"

	"github.com/matzehuels/storyline/pkg/geo"
)

// Strategy selects how detected collisions are corrected.
type Strategy string

const (
	// StrategyNudge iteratively pushes colliding pairs apart along the
	// inter-center vector.
	StrategyNudge Strategy = "nudge"
	// StrategyRepel is a declared alternative that currently resolves
	// exactly like nudge.
	StrategyRepel Strategy = "repel"
	// StrategyReflow is a declared alternative that currently resolves
	// exactly like nudge.
	StrategyReflow Strategy = "reflow"
	// StrategyError performs no adjustment and only reports collisions.
	StrategyError Strategy = "error"
)

// maxPasses bounds the nudge iteration. Dense clusters may still overlap
// after the final pass; residual pairs are reported, not resolved.
const maxPasses = 10

// Item is one positioned rectangle with an identity and an exemption flag.
type Item struct {
	ID           string
	Rect         geo.Rect
	AllowOverlap bool
}

// Pair identifies two colliding items. A is always lexicographically
// smaller than B so pairs compare and sort deterministically.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Result reports detected collisions and the positional corrections that
// resolution produced.
type Result struct {
	// Collisions are the pairs that intersected at their original,
	// unadjusted positions.
	Collisions []Pair

	// Deltas maps item IDs to the total position correction applied.
	// IDs absent from the map were not moved.
	Deltas map[string]geo.Point

	// Unresolved are pairs still colliding after the pass budget was
	// exhausted. Empty for fully resolved layouts and for StrategyError.
	Unresolved []Pair
}

// Detect returns all colliding pairs among the items, testing rectangles
// expanded by padding on every side. Pairs involving an allow-overlap item
// are excluded. The result is sorted for deterministic output.
func Detect(items []Item, padding float64) []Pair {
	return detect(items, padding, nil)
}

// Resolve detects collisions and, unless the strategy is [StrategyError],
// computes per-item position deltas that push colliding pairs apart.
// Original item positions are never modified; apply the returned deltas
// with [ApplyAdjustments].
//
// The repel and reflow strategies are accepted names that currently share
// the nudge implementation. Unknown strategies are treated as nudge.
func Resolve(items []Item, padding float64, strategy Strategy) Result {
	res := Result{
		Collisions: Detect(items, padding),
		Deltas:     map[string]geo.Point{},
	}

	if strategy == StrategyError {
		return res
	}

	for pass := 0; pass < maxPasses; pass++ {
		colliding := detect(items, padding, res.Deltas)
		if len(colliding) == 0 {
			return res
		}
		index := indexItems(items)
		for _, p := range colliding {
			nudgePair(index[p.A], index[p.B], padding, res.Deltas)
		}
	}

	res.Unresolved = detect(items, padding, res.Deltas)
	return res
}

// ApplyAdjustments adds each ID's delta to its original position. IDs
// absent from the delta map keep their original position. The input map is
// not modified.
func ApplyAdjustments(positions map[string]geo.Point, deltas map[string]geo.Point) map[string]geo.Point {
	out := make(map[string]geo.Point, len(positions))
	for id, p := range positions {
		if d, ok := deltas[id]; ok {
			p = p.Add(d)
		}
		out[id] = p
	}
	return out
}

func detect(items []Item, padding float64, deltas map[string]geo.Point) []Pair {
	var pairs []Pair
	for i := 0; i < len(items); i++ {
		if items[i].AllowOverlap {
			continue
		}
		a := shifted(items[i], deltas).Expand(padding)
		for j := i + 1; j < len(items); j++ {
			if items[j].AllowOverlap {
				continue
			}
			b := shifted(items[j], deltas).Expand(padding)
			if a.Intersects(b) {
				pairs = append(pairs, makePair(items[i].ID, items[j].ID))
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// nudgePair pushes both items apart along the inter-center vector by half
// the binding-axis overlap depth plus one unit, split evenly between the
// two participants.
func nudgePair(a, b Item, padding float64, deltas map[string]geo.Point) {
	ra := shifted(a, deltas).Expand(padding)
	rb := shifted(b, deltas).Expand(padding)

	depthX := ra.HalfW + rb.HalfW - math.Abs(ra.Center.X-rb.Center.X)
	depthY := ra.HalfH + rb.HalfH - math.Abs(ra.Center.Y-rb.Center.Y)
	depth := math.Min(depthX, depthY)
	if depth <= 0 {
		return
	}

	dir := rb.Center.Sub(ra.Center)
	if dir.X == 0 && dir.Y == 0 {
		dir = geo.Point{X: 1} // coincident centers: push along x
	}
	length := math.Hypot(dir.X, dir.Y)
	unit := geo.Point{X: dir.X / length, Y: dir.Y / length}

	move := (depth/2 + 1) / 2
	deltas[a.ID] = deltas[a.ID].Sub(unit.Scale(move))
	deltas[b.ID] = deltas[b.ID].Add(unit.Scale(move))
}

func shifted(it Item, deltas map[string]geo.Point) geo.Rect {
	r := it.Rect
	if d, ok := deltas[it.ID]; ok {
		r.Center = r.Center.Add(d)
	}
	return r
}

func indexItems(items []Item) map[string]Item {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}

func makePair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}
