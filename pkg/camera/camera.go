// Package camera models the pan/zoom viewport that maps world coordinates
// to screen coordinates.
//
// A Camera is a small value type owned by the caller. The engine never
// animates it on its own: transitions are a bounded sequence of discrete
// [Interpolate] samples driven by whatever per-frame tick the host provides.
// Cancelling an animation is simply ceasing to request further samples.
package camera

import (
	"math"

	"github.com/matzehuels/storyline/pkg/geo"
)

// Camera is a pan/zoom transform. Zoom must be positive; Bounds, when set,
// constrains where the center may be placed.
type Camera struct {
	Center geo.Point   `json:"center"`
	Zoom   float64     `json:"zoom"`
	Bounds *geo.Bounds `json:"bounds,omitempty"`
}

// Default returns the canonical camera: centered on the world origin at
// native scale.
func Default() Camera {
	return Camera{Zoom: 1}
}

// WorldToScreen maps a world point to screen space for the given viewport:
// the camera center lands on the viewport midpoint and world distances are
// scaled by zoom.
func (c Camera) WorldToScreen(p geo.Point, viewport geo.Size) geo.Point {
	return geo.Point{
		X: (p.X-c.Center.X)*c.Zoom + viewport.Width/2,
		Y: (p.Y-c.Center.Y)*c.Zoom + viewport.Height/2,
	}
}

// ScreenToWorld is the exact inverse of WorldToScreen.
func (c Camera) ScreenToWorld(p geo.Point, viewport geo.Size) geo.Point {
	return geo.Point{
		X: (p.X-viewport.Width/2)/c.Zoom + c.Center.X,
		Y: (p.Y-viewport.Height/2)/c.Zoom + c.Center.Y,
	}
}

// ClampToBounds constrains the camera center component-wise into bounds.
// Zoom is never altered by clamping.
func (c Camera) ClampToBounds(bounds geo.Bounds) Camera {
	c.Center = bounds.Clamp(c.Center)
	return c
}

// FitToRegion positions the camera to show all given rectangles inside the
// viewport with pad world units of breathing room on every side. The center
// is the centroid of the combined bounding box; zoom is chosen so the
// padded box fits, but never exceeds 1 - the camera only zooms out from
// native scale, never in. With no input rectangles (or a degenerate
// viewport) the canonical default camera is returned.
func FitToRegion(rects []geo.Rect, viewport geo.Size, pad float64) Camera {
	if len(rects) == 0 || viewport.Width <= 0 || viewport.Height <= 0 {
		return Default()
	}

	box := rects[0]
	for _, r := range rects[1:] {
		box = box.Union(r)
	}
	box = box.Expand(pad)

	zoom := 1.0
	if w := box.Width(); w > 0 {
		zoom = math.Min(zoom, viewport.Width/w)
	}
	if h := box.Height(); h > 0 {
		zoom = math.Min(zoom, viewport.Height/h)
	}

	return Camera{Center: box.Center, Zoom: zoom}
}

// Ease remaps linear progress t through the named curve. Unknown names
// fall back to linear. All curves are the standard quadratics: ease-in t²,
// ease-out 1-(1-t)², ease-in-out piecewise symmetric at 0.5.
func Ease(name string, t float64) float64 {
	switch name {
	case "ease-in":
		return t * t
	case "ease-out":
		return 1 - (1-t)*(1-t)
	case "ease-in-out":
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - 2*(1-t)*(1-t)
	default:
		return t
	}
}

// Interpolate blends from → to at the given progress after remapping it
// through the named easing curve. Center and zoom interpolate
// independently; the destination's bounds apply outright and are never
// interpolated. Progress at or beyond 1 snaps exactly to the destination
// so repeated samples can never accumulate floating drift; progress at or
// below 0 returns the origin with the destination's bounds.
func Interpolate(from, to Camera, progress float64, easing string) Camera {
	if progress >= 1 {
		return to
	}
	t := 0.0
	if progress > 0 {
		t = Ease(easing, progress)
	}
	return Camera{
		Center: geo.Point{
			X: from.Center.X + (to.Center.X-from.Center.X)*t,
			Y: from.Center.Y + (to.Center.Y-from.Center.Y)*t,
		},
		Zoom:   from.Zoom + (to.Zoom-from.Zoom)*t,
		Bounds: to.Bounds,
	}
}
