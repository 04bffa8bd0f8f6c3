package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/metrics"
	"github.com/wagnerlima/tenant-crm/internal/models"
)

const (
	filePrefix = "crm_"
	fileSuffix = ".db"

	// maxResolveAttempts bounds how often With re-resolves a handle that was
	// closed between lookup and lock.
	maxResolveAttempts = 3
)

var (
	errRegistryClosed = errors.New("tenant registry is closed")
	sqliteHeader      = []byte("SQLite format 3\x00")
)

// Registry maps tenant ids to open tenant stores. Handles are opened on first
// use and kept in a bounded LRU cache; a handle leaving the cache is closed.
type Registry struct {
	dataDir string
	log     *zap.Logger

	// mu serializes opening a handle against destroy and restore of the same files.
	mu     sync.Mutex
	closed bool

	cache *lru.Cache[string, *TenantStore]
	group singleflight.Group
}

// OpenRegistry prepares dataDir and returns a registry caching at most
// cacheSize open tenant handles.
func OpenRegistry(dataDir string, cacheSize int, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	r := &Registry{dataDir: abs, log: log}
	r.cache, err = lru.NewWithEvict(cacheSize, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create handle cache: %w", err)
	}
	return r, nil
}

// NewTenantID returns a fresh random tenant id in canonical form.
func NewTenantID() string {
	return uuid.NewString()
}

// ParseTenantID validates a tenant id and returns its canonical lowercase form.
func ParseTenantID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 36 {
		return "", apperr.Validation("invalid tenant id %q", raw)
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", apperr.Validation("invalid tenant id %q", raw)
	}
	return u.String(), nil
}

// DataDir returns the absolute directory holding the tenant files.
func (r *Registry) DataDir() string {
	return r.dataDir
}

// Path returns the file that stores the given canonical tenant id.
func (r *Registry) Path(id string) string {
	return filepath.Join(r.dataDir, filePrefix+id+fileSuffix)
}

// Len returns the number of open cached handles.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Exists reports whether the tenant file is present on disk.
func (r *Registry) Exists(tenantID string) (bool, error) {
	id, err := ParseTenantID(tenantID)
	if err != nil {
		return false, err
	}
	return fileExists(r.Path(id))
}

// Init provisions the tenant store if needed and reports whether it was created.
func (r *Registry) Init(ctx context.Context, tenantID string) (bool, error) {
	id, err := ParseTenantID(tenantID)
	if err != nil {
		return false, err
	}
	existed, err := fileExists(r.Path(id))
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	if _, err := r.resolve(ctx, id); err != nil {
		return false, err
	}
	return !existed, nil
}

// Resolve returns the cached handle of a tenant, opening and provisioning the
// store when needed. Concurrent resolves of the same tenant share one open.
func (r *Registry) Resolve(ctx context.Context, tenantID string) (*TenantStore, error) {
	id, err := ParseTenantID(tenantID)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, id)
}

func (r *Registry) resolve(ctx context.Context, id string) (*TenantStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s, ok := r.cache.Get(id); ok {
		return s, nil
	}
	v, err, _ := r.group.Do(id, func() (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			return nil, apperr.Unavailable(errRegistryClosed)
		}
		if s, ok := r.cache.Get(id); ok {
			return s, nil
		}
		return r.open(id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*TenantStore), nil
}

// open must be called with r.mu held.
func (r *Registry) open(id string) (*TenantStore, error) {
	path := r.Path(id)
	existed, err := fileExists(path)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	s, err := openTenant(id, path, r.log)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	metrics.HandleOpened()
	if !existed {
		metrics.StoreProvisioned()
		r.log.Info("provisioned tenant store", zap.String("tenant_id", id), zap.String("path", path))
	}
	r.cache.Add(id, s)
	return s, nil
}

func (r *Registry) onEvict(id string, s *TenantStore) {
	if err := s.Close(); err != nil {
		r.log.Warn("close tenant store", zap.String("tenant_id", id), zap.Error(err))
		return
	}
	r.log.Debug("closed tenant store", zap.String("tenant_id", id))
}

// With runs fn against the tenant's store while holding the handle's lock, so
// operations on one tenant never interleave on its connection. op names the
// operation in metrics.
func (r *Registry) With(ctx context.Context, tenantID, op string, fn func(*TenantStore) error) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation(op, err, time.Since(start)) }()

	id, err := ParseTenantID(tenantID)
	if err != nil {
		return err
	}
	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		s, err := r.resolve(ctx, id)
		if err != nil {
			return err
		}
		ran, err := s.run(ctx, fn)
		if ran {
			return err
		}
		// Evicted between lookup and lock; the next resolve reopens it.
	}
	return apperr.Unavailable(fmt.Errorf("tenant %s: handle closed during %d attempts", id, maxResolveAttempts))
}

// run calls fn with the handle locked. It reports false without calling fn if
// the handle has already been closed.
func (s *TenantStore) run(ctx context.Context, fn func(*TenantStore) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return true, err
	}
	return true, fn(s)
}

// Destroy closes the tenant's handle and deletes its files. It reports whether
// a store file existed.
func (r *Registry) Destroy(ctx context.Context, tenantID string) (bool, error) {
	id, err := ParseTenantID(tenantID)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Remove(id)
	path := r.Path(id)
	existed := true
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return false, apperr.Unavailable(fmt.Errorf("remove tenant file: %w", err))
		}
		existed = false
	}
	removeSidecars(path)
	if existed {
		r.log.Info("destroyed tenant store", zap.String("tenant_id", id))
	}
	return existed, nil
}

// ListTenants returns the ids of every tenant file in the data directory, sorted.
func (r *Registry) ListTenants() ([]string, error) {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("read data dir: %w", err))
	}
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		id, err := ParseTenantID(raw)
		if err != nil || id != raw {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Backup writes a consistent copy of the tenant file to dst.
func (r *Registry) Backup(ctx context.Context, tenantID, dst string) error {
	return r.withExisting(ctx, tenantID, "backup", func(s *TenantStore) error {
		if err := s.checkpoint(ctx); err != nil {
			return err
		}
		return copyFileAtomic(s.path, dst)
	})
}

// BackupTo streams a consistent copy of the tenant file to w.
func (r *Registry) BackupTo(ctx context.Context, tenantID string, w io.Writer) error {
	return r.withExisting(ctx, tenantID, "backup", func(s *TenantStore) error {
		if err := s.checkpoint(ctx); err != nil {
			return err
		}
		f, err := os.Open(s.path)
		if err != nil {
			return fmt.Errorf("open tenant file: %w", err)
		}
		defer f.Close()
		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("stream tenant file: %w", err)
		}
		return nil
	})
}

// Restore replaces the tenant file with the backup at src. Any cached handle
// is closed first so no stale state survives the swap.
func (r *Registry) Restore(ctx context.Context, tenantID, src string) error {
	id, err := ParseTenantID(tenantID)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return apperr.NotFound("backup", src)
	}
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()
	return r.restore(ctx, id, f)
}

// RestoreFrom replaces the tenant file with the database read from rd.
func (r *Registry) RestoreFrom(ctx context.Context, tenantID string, rd io.Reader) error {
	id, err := ParseTenantID(tenantID)
	if err != nil {
		return err
	}
	return r.restore(ctx, id, rd)
}

func (r *Registry) restore(ctx context.Context, id string, rd io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := r.Path(id)
	tmp, err := writeTemp(r.dataDir, rd)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := checkSQLiteFile(tmp); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(id)
	removeSidecars(path)
	if err := os.Rename(tmp, path); err != nil {
		return apperr.Unavailable(fmt.Errorf("replace tenant file: %w", err))
	}
	r.log.Info("restored tenant store", zap.String("tenant_id", id))
	return nil
}

// Info describes a tenant file and its record counts without provisioning it.
func (r *Registry) Info(ctx context.Context, tenantID string) (*models.TenantInfo, error) {
	info := &models.TenantInfo{}
	err := r.withExisting(ctx, tenantID, "info", func(s *TenantStore) error {
		counts, err := s.Counts(ctx)
		if err != nil {
			return err
		}
		st, err := os.Stat(s.path)
		if err != nil {
			return apperr.Unavailable(err)
		}
		info.TenantID = s.id
		info.DatabasePath = s.path
		info.FileSizeBytes = st.Size()
		info.FileSizeMB = math.Round(float64(st.Size())/(1024*1024)*100) / 100
		info.RecordCounts = counts
		info.ModifiedAt = st.ModTime().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// withExisting is With for operations that must not provision a missing tenant.
func (r *Registry) withExisting(ctx context.Context, tenantID, op string, fn func(*TenantStore) error) error {
	id, err := ParseTenantID(tenantID)
	if err != nil {
		return err
	}
	ok, err := fileExists(r.Path(id))
	if err != nil {
		return apperr.Unavailable(err)
	}
	if !ok {
		return apperr.NotFound("tenant", id)
	}
	return r.With(ctx, id, op, fn)
}

// Close closes every cached handle. Later resolves fail.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.cache.Purge()
	return nil
}

// --- file helpers ---

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func removeSidecars(path string) {
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")
}

// writeTemp copies rd into a new temporary file in dir and returns its path.
func writeTemp(dir string, rd io.Reader) (string, error) {
	f, err := os.CreateTemp(dir, ".restore-*")
	if err != nil {
		return "", apperr.Unavailable(fmt.Errorf("create temp file: %w", err))
	}
	if _, err := io.Copy(f, rd); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

func checkSQLiteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open restore file: %w", err)
	}
	defer f.Close()
	head := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, sqliteHeader) {
		return apperr.Validation("restore source is not a SQLite database")
	}
	return nil
}

// copyFileAtomic copies src to dst through a temporary file in dst's directory.
func copyFileAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp, err := writeTemp(filepath.Dir(dst), in)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("move backup into place: %w", err)
	}
	return nil
}
