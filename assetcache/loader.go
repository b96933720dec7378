package assetcache

import (
	"fmt"
	"os"

	"github.com/psychi/fragments-sub003/archive"
)

// Source reads the raw BINARC bytes for a named archive, typically by
// opening a file, on a Cache miss.
type Source func(name string) ([]byte, error)

// FileSource returns a Source that reads name as a filesystem path
// relative to dir.
func FileSource(dir string) Source {
	return func(name string) ([]byte, error) {
		return os.ReadFile(dir + string(os.PathSeparator) + name)
	}
}

// Loader resolves named archives through a Cache, falling back to a
// Source and populating the cache on miss.
type Loader struct {
	cache  *Cache
	source Source
	cfg    archive.Config
}

// NewLoader constructs a Loader backed by cache, reading misses via
// source and parsing with cfg.
func NewLoader(cache *Cache, source Source, cfg archive.Config) *Loader {
	return &Loader{cache: cache, source: source, cfg: cfg}
}

// Load returns the parsed Archive named name, reading through the
// cache: a hit avoids re-reading the source entirely; a miss reads via
// Source, stores the raw bytes in the cache, then parses.
func (l *Loader) Load(name string) (*archive.Archive, error) {
	blob, hit, err := l.cache.Get(name)
	if err != nil {
		return nil, fmt.Errorf("assetcache: cache lookup %q: %w", name, err)
	}
	if !hit {
		blob, err = l.source(name)
		if err != nil {
			return nil, fmt.Errorf("assetcache: load source %q: %w", name, err)
		}
		if err := l.cache.Put(name, blob); err != nil {
			return nil, fmt.Errorf("assetcache: cache store %q: %w", name, err)
		}
	}
	a, err := archive.Load(l.cfg, blob)
	if err != nil {
		return nil, fmt.Errorf("assetcache: parse %q: %w", name, err)
	}
	return a, nil
}

// Invalidate drops name's cached blob so the next Load re-reads it from
// Source.
func (l *Loader) Invalidate(name string) error {
	return l.cache.Delete(name)
}

// LoadVerified behaves like Load, but on a cache miss additionally rejects
// the blob read from Source if its archive.Checksum4 does not equal want,
// before caching or parsing it. A blob already in the cache is parsed
// without a checksum check. Useful
// when Source reads from somewhere less trustworthy than the local
// bbolt cache (a CDN download, a peer transfer).
func (l *Loader) LoadVerified(name string, want [4]byte) (*archive.Archive, error) {
	blob, hit, err := l.cache.Get(name)
	if err != nil {
		return nil, fmt.Errorf("assetcache: cache lookup %q: %w", name, err)
	}
	if !hit {
		blob, err = l.source(name)
		if err != nil {
			return nil, fmt.Errorf("assetcache: load source %q: %w", name, err)
		}
		if !archive.VerifyChecksum(blob, want) {
			return nil, fmt.Errorf("assetcache: checksum mismatch for %q", name)
		}
		if err := l.cache.Put(name, blob); err != nil {
			return nil, fmt.Errorf("assetcache: cache store %q: %w", name, err)
		}
	}
	a, err := archive.Load(l.cfg, blob)
	if err != nil {
		return nil, fmt.Errorf("assetcache: parse %q: %w", name, err)
	}
	return a, nil
}

// LoadMemo behaves like Load, but wraps the parsed Archive in an
// archive.MemoMapValue so repeated MapValue lookups against it (typical
// of table-driven rule evaluation) are cached for the returned value's
// lifetime.
func (l *Loader) LoadMemo(name string) (*archive.MemoMapValue, error) {
	a, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	return archive.NewMemoMapValue(a), nil
}
