package frame

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/storyline/pkg/cache"
	"github.com/matzehuels/storyline/pkg/camera"
	"github.com/matzehuels/storyline/pkg/geo"
	"github.com/matzehuels/storyline/pkg/story"
)

// CachedComposer wraps a Composer with a byte-level cache, keyed by story
// content hash plus all composition inputs. Cache failures are silent:
// a broken backend degrades to plain composition, never to an error.
type CachedComposer struct {
	composer *Composer
	cache    cache.Cache
	keyer    cache.Keyer
}

// NewCachedComposer wires a composer to a cache. A nil cache disables
// caching (null backend); a nil keyer uses the default scheme.
func NewCachedComposer(c *Composer, store cache.Cache, keyer cache.Keyer) *CachedComposer {
	if store == nil {
		store = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedComposer{composer: c, cache: store, keyer: keyer}
}

// Compose returns the frame for one step, from cache when possible.
// The target camera is part of the composed output, so only frames built
// from the step's own target camera are cached; animated intermediate
// frames bypass this wrapper via [Composer.ComposeWithCamera].
func (cc *CachedComposer) Compose(ctx context.Context, st *story.Story, index int, viewport geo.Size) Frame {
	key, ok := cc.frameKey(st, index, viewport)
	if ok {
		if data, hit, err := cc.cache.Get(ctx, key); err == nil && hit {
			var f Frame
			if err := json.Unmarshal(data, &f); err == nil {
				return f
			}
			// Corrupt entry: drop it and recompute.
			_ = cc.cache.Delete(ctx, key)
		}
	}

	f := cc.composer.Compose(ctx, st, index, viewport)

	if ok {
		if data, err := json.Marshal(f); err == nil {
			_ = cc.cache.Set(ctx, key, data, cache.TTLFrame)
		}
	}
	return f
}

// TargetCamera exposes the wrapped composer's camera selection.
func (cc *CachedComposer) TargetCamera(st *story.Story, index int, viewport geo.Size) camera.Camera {
	return cc.composer.TargetCamera(st, index, viewport)
}

func (cc *CachedComposer) frameKey(st *story.Story, index int, viewport geo.Size) (string, bool) {
	data, err := story.MarshalStory(st)
	if err != nil {
		return "", false
	}
	opts := cc.composer.opts
	return cc.keyer.FrameKey(cache.Hash(data), cache.FrameKeyOpts{
		Index:      index,
		ViewportW:  viewport.Width,
		ViewportH:  viewport.Height,
		Padding:    opts.Padding,
		FitPadding: opts.FitPadding,
		Strategy:   string(opts.Strategy),
		RouteStyle: string(opts.RouteStyle),
		Spacing:    opts.RouteSpacing,
	}), true
}
