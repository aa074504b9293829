package symbolize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"stracetui/internal/model"
)

// Current schema version - increment when diskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты символизации между запусками, один файл на
// бинарник. Файл привязан к пути, размеру и mtime бинарника, так что
// пересобранный бинарник получает новый файл.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type diskEntry struct {
	File       string `msgpack:"f,omitempty"`
	Line       int    `msgpack:"l,omitempty"`
	Column     *int   `msgpack:"c,omitempty"`
	Unresolved bool   `msgpack:"u,omitempty"`
}

type diskPayload struct {
	Schema  uint16
	Binary  string
	Size    int64
	ModTime int64
	Entries map[string]diskEntry
}

// OpenDiskCache initializes a disk cache under dir, or under
// $XDG_CACHE_HOME/<app> (~/.cache/<app>) when dir is empty.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

type binaryIdentity struct {
	path    string
	size    int64
	modTime int64
}

func identify(binary string) (binaryIdentity, error) {
	st, err := os.Stat(binary)
	if err != nil {
		return binaryIdentity{}, err
	}
	return binaryIdentity{path: binary, size: st.Size(), modTime: st.ModTime().UnixNano()}, nil
}

func (c *DiskCache) pathFor(id binaryIdentity) string {
	h := sha256.New()
	_, _ = h.Write([]byte(id.path))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strconv.FormatInt(id.size, 10) + ":" + strconv.FormatInt(id.modTime, 10)))
	// Подкаталог "resolve", чтобы cache clear удалял только его.
	return filepath.Join(c.dir, "resolve", hex.EncodeToString(h.Sum(nil))+".mp")
}

// load returns the persisted answers for binary. A missing binary or cache
// file yields an empty map.
func (c *DiskCache) load(binary string) (map[string]entry, error) {
	if c == nil {
		return nil, nil
	}
	id, err := identify(binary)
	if err != nil {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var payload diskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Binary != binary ||
		payload.Size != id.size || payload.ModTime != id.modTime {
		return nil, nil
	}

	out := make(map[string]entry, len(payload.Entries))
	for addr, de := range payload.Entries {
		if de.Unresolved {
			out[addr] = entry{}
			continue
		}
		out[addr] = entry{loc: &model.ResolvedLocation{File: de.File, Line: de.Line, Column: de.Column}}
	}
	return out, nil
}

// store replaces the persisted answers for binary.
func (c *DiskCache) store(binary string, entries map[string]entry) error {
	if c == nil || len(entries) == 0 {
		return nil
	}
	id, err := identify(binary)
	if err != nil {
		return nil
	}

	payload := diskPayload{
		Schema:  diskCacheSchemaVersion,
		Binary:  binary,
		Size:    id.size,
		ModTime: id.modTime,
		Entries: make(map[string]diskEntry, len(entries)),
	}
	for addr, e := range entries {
		if e.unresolved() {
			payload.Entries[addr] = diskEntry{Unresolved: true}
			continue
		}
		payload.Entries[addr] = diskEntry{File: e.loc.File, Line: e.loc.Line, Column: e.loc.Column}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
