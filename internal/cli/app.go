package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyline/internal/config"
	"github.com/matzehuels/storyline/pkg/cache"
	"github.com/matzehuels/storyline/pkg/frame"
	"github.com/matzehuels/storyline/pkg/geo"
	"github.com/matzehuels/storyline/pkg/overlap"
	"github.com/matzehuels/storyline/pkg/route"
	"github.com/matzehuels/storyline/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "storyline"

// =============================================================================
// Config
// =============================================================================

// loadConfig reads the config file, falling back to defaults when no file
// exists at the resolved path.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// viewportFromConfig returns the configured viewport, with flag overrides
// applied when positive.
func viewportFromConfig(cfg config.Config, width, height float64) geo.Size {
	vp := geo.Size{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height}
	if width > 0 {
		vp.Width = width
	}
	if height > 0 {
		vp.Height = height
	}
	return vp
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/storyline/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Backend Factories
// =============================================================================

// newCache builds the frame cache selected by the config. A backend of
// "none" or a failure to resolve the file cache directory degrades to the
// null cache rather than failing the command.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Pass,
			DB:       cfg.DB,
		})
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// newStore builds the story store selected by the config.
func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.URI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
	case "", "file":
		return store.NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// composeOptions maps the config's compose section onto frame options.
func composeOptions(cfg config.ComposeConfig) frame.Options {
	opts := frame.Options{
		Padding:      cfg.Padding,
		FitPadding:   cfg.FitPadding,
		Strategy:     overlap.Strategy(cfg.Strategy),
		RouteStyle:   route.Style(cfg.RouteStyle),
		RouteSpacing: cfg.Spacing,
	}
	if cfg.TimeoutMS > 0 {
		opts.RouteTimeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return opts
}

// newComposer builds a cached composer from the config.
func newComposer(ctx context.Context, cfg config.Config, logger *log.Logger, noCache bool) (*frame.CachedComposer, error) {
	c, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	composer := frame.NewComposer(composeOptions(cfg.Compose), logger)
	return frame.NewCachedComposer(composer, c, cache.NewDefaultKeyer()), nil
}
