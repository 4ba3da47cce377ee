// Package assets resolves and caches the icon artwork attached to
// notifications: a soft subject-name to icon-id tier that refreshes in
// the background on every read, and a hard icon-id to file tier that
// downloads each icon at most once per process.
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tOgg1/herald/internal/feed"
	"github.com/tOgg1/herald/internal/logging"
	"github.com/tOgg1/herald/internal/model"
)

// ErrLookup indicates an enrichment fetch could not complete. The
// caller skips the affected notification; nothing else is retried.
var ErrLookup = errors.New("assets: lookup failed")

// Fetcher is the slice of the feed client the cache needs.
type Fetcher interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	GetAsset(ctx context.Context, path string) ([]byte, error)
}

// Cache maps subject names to icon ids and icon ids to materialized
// files. Both tiers are shared by concurrent enrichment tasks;
// last-write-wins on the soft tier is the intended freshness policy.
type Cache struct {
	fetcher Fetcher
	dir     string
	log     zerolog.Logger

	mu    sync.Mutex
	icons map[string]int // subject name -> icon id, refreshed on read
	files map[int]string // icon id -> local path, written once
}

// NewCache creates an icon cache storing files under dir.
func NewCache(fetcher Fetcher, dir string) *Cache {
	return &Cache{
		fetcher: fetcher,
		dir:     dir,
		log:     logging.Component("assets"),
		icons:   make(map[string]int),
		files:   make(map[int]string),
	}
}

// ResolveIcon returns the icon id for a subject name. A cache hit
// returns immediately and triggers a background refresh, so staleness
// lasts at most until the next call. A cold miss fetches inline.
func (c *Cache) ResolveIcon(ctx context.Context, subjectName string) (int, error) {
	c.mu.Lock()
	id, ok := c.icons[subjectName]
	c.mu.Unlock()

	if ok {
		go c.refresh(subjectName)
		return id, nil
	}
	return c.fetchIcon(ctx, subjectName)
}

// refresh re-fetches an icon id so the next read sees a fresh value.
// Deliberately not cancellable; a stale completion just overwrites the
// cache entry (last write wins).
func (c *Cache) refresh(subjectName string) {
	if _, err := c.fetchIcon(context.Background(), subjectName); err != nil {
		c.log.Debug().Err(err).Str("subject", subjectName).Msg("icon refresh failed")
	}
}

// fetchIcon looks up the subject's player record and caches its icon id.
func (c *Cache) fetchIcon(ctx context.Context, subjectName string) (int, error) {
	data, err := c.fetcher.Get(ctx, feed.PlayerPath(subjectName))
	if err != nil {
		return 0, fmt.Errorf("%w: player %q: %v", ErrLookup, subjectName, err)
	}
	player, err := model.ParsePlayer(data)
	if err != nil {
		return 0, fmt.Errorf("%w: player %q: %v", ErrLookup, subjectName, err)
	}

	c.mu.Lock()
	c.icons[subjectName] = player.ProfileIconID
	c.mu.Unlock()
	return player.ProfileIconID, nil
}

// ResolveIconPath returns a local file containing the subject's icon,
// downloading it if this icon id has not been materialized yet. Two
// subjects racing to materialize the same icon id both perform an
// idempotent whole-file write of identical bytes; the duplicate
// download is bounded to that window.
func (c *Cache) ResolveIconPath(ctx context.Context, subjectName string) (string, error) {
	id, err := c.ResolveIcon(ctx, subjectName)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	path, ok := c.files[id]
	c.mu.Unlock()
	if ok {
		return path, nil
	}

	path = filepath.Join(c.dir, fmt.Sprintf("%d.png", id))
	if _, err := os.Stat(path); err == nil {
		c.remember(id, path)
		return path, nil
	}

	raw, err := c.fetcher.GetAsset(ctx, feed.IconAssetPath(id))
	if err != nil {
		return "", fmt.Errorf("%w: icon %d: %v", ErrLookup, id, err)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: icon %d: %v", ErrLookup, id, err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("%w: icon %d: %v", ErrLookup, id, err)
	}

	c.remember(id, path)
	c.log.Debug().Int("icon_id", id).Str("path", path).Msg("icon materialized")
	return path, nil
}

func (c *Cache) remember(id int, path string) {
	c.mu.Lock()
	c.files[id] = path
	c.mu.Unlock()
}
