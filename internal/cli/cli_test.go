package cli

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/storyline/internal/config"
	"github.com/matzehuels/storyline/pkg/overlap"
	"github.com/matzehuels/storyline/pkg/route"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
		format string
		index  int
		all    bool
		want   string
	}{
		{
			name:   "ExplicitOutputWins",
			input:  "story.json",
			output: "out.svg",
			format: "svg",
			want:   "out.svg",
		},
		{
			name:   "DerivedFromInput",
			input:  "demo/story.yaml",
			format: "svg",
			want:   "demo/story.svg",
		},
		{
			name:   "JSONFormat",
			input:  "story.json",
			format: "json",
			want:   "story.json",
		},
		{
			name:   "AllAppendsStepIndex",
			input:  "story.json",
			format: "svg",
			index:  3,
			all:    true,
			want:   "story_step3.svg",
		},
		{
			name:   "AllWithBaseOutput",
			input:  "story.json",
			output: "frames/out.svg",
			format: "svg",
			index:  0,
			all:    true,
			want:   "frames/out_step0.svg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.input, tt.output, tt.format, tt.index, tt.all)
			if got != tt.want {
				t.Errorf("outputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViewportFromConfig(t *testing.T) {
	cfg := config.Default()

	vp := viewportFromConfig(cfg, 0, 0)
	if vp.Width != 1280 || vp.Height != 720 {
		t.Errorf("default viewport = %+v", vp)
	}

	vp = viewportFromConfig(cfg, 1920, 0)
	if vp.Width != 1920 || vp.Height != 720 {
		t.Errorf("width override = %+v", vp)
	}

	vp = viewportFromConfig(cfg, 0, 1080)
	if vp.Width != 1280 || vp.Height != 1080 {
		t.Errorf("height override = %+v", vp)
	}
}

func TestComposeOptions(t *testing.T) {
	opts := composeOptions(config.ComposeConfig{
		Padding:    4,
		Strategy:   "repel",
		RouteStyle: "orthogonal",
		Spacing:    16,
		TimeoutMS:  250,
	})

	if opts.Padding != 4 || opts.RouteSpacing != 16 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Strategy != overlap.StrategyRepel {
		t.Errorf("strategy = %q", opts.Strategy)
	}
	if opts.RouteStyle != route.StyleOrthogonal {
		t.Errorf("route style = %q", opts.RouteStyle)
	}
	if opts.RouteTimeout != 250*time.Millisecond {
		t.Errorf("timeout = %v", opts.RouteTimeout)
	}

	// Zero timeout stays zero so frame defaults apply downstream.
	opts = composeOptions(config.ComposeConfig{})
	if opts.RouteTimeout != 0 {
		t.Errorf("zero timeout = %v", opts.RouteTimeout)
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("NoneYieldsNull", func(t *testing.T) {
		c, err := newCache(ctx, config.CacheConfig{Backend: "none"}, false)
		if err != nil {
			t.Fatalf("newCache: %v", err)
		}
		defer c.Close()
		if err := c.Set(ctx, "k", []byte("x"), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if _, found, _ := c.Get(ctx, "k"); found {
			t.Error("null cache retained a value")
		}
	})

	t.Run("NoCacheFlagWins", func(t *testing.T) {
		c, err := newCache(ctx, config.CacheConfig{Backend: "file", Dir: t.TempDir()}, true)
		if err != nil {
			t.Fatalf("newCache: %v", err)
		}
		defer c.Close()
		_ = c.Set(ctx, "k", []byte("x"), time.Hour)
		if _, found, _ := c.Get(ctx, "k"); found {
			t.Error("no-cache flag did not disable caching")
		}
	})

	t.Run("FileBackend", func(t *testing.T) {
		c, err := newCache(ctx, config.CacheConfig{Backend: "file", Dir: t.TempDir()}, false)
		if err != nil {
			t.Fatalf("newCache: %v", err)
		}
		defer c.Close()
		if err := c.Set(ctx, "k", []byte("x"), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if _, found, _ := c.Get(ctx, "k"); !found {
			t.Error("file cache lost the value")
		}
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		if _, err := newCache(ctx, config.CacheConfig{Backend: "tape"}, false); err == nil {
			t.Error("unknown backend accepted")
		}
	})
}

func TestNewStoreUnknownBackend(t *testing.T) {
	if _, err := newStore(context.Background(), config.StoreConfig{Backend: "carrier-pigeon"}); err == nil {
		t.Error("unknown backend accepted")
	}
}
