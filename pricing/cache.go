package pricing

import (
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ezoic/carprice/pkg/errors"
	"github.com/ezoic/carprice/pkg/log"
)

type cachedArtifact struct {
	modTime   time.Time
	size      int64
	predictor *Predictor
}

// ArtifactCache keeps loaded artifacts by path. An entry is reused while the
// file's modification time and size are unchanged and reloaded otherwise.
type ArtifactCache struct {
	mu     sync.Mutex
	lru    *lru.Cache[string, cachedArtifact]
	load   func(path string) (*Artifact, error)
	logger log.Logger
}

// NewArtifactCache creates a cache holding at most size artifacts.
func NewArtifactCache(size int) (*ArtifactCache, error) {
	c, err := lru.New[string, cachedArtifact](size)
	if err != nil {
		return nil, errors.NewValidationError("cache size", "must be positive", size)
	}
	return &ArtifactCache{
		lru:    c,
		load:   LoadArtifact,
		logger: log.GetLoggerWithName("pricing").With(log.ComponentKey, "artifact_cache"),
	}, nil
}

// Get returns a Predictor for the artifact at path, loading it on a miss or
// when the file changed. A missing file evicts the entry and returns a
// *errors.NotFoundError.
func (c *ArtifactCache) Get(path string) (*Predictor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		c.lru.Remove(path)
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("model artifact", path)
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	if e, ok := c.lru.Get(path); ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.logger.Debug("Artifact cache hit", log.PathKey, path)
		return e.predictor, nil
	}

	a, err := c.load(path)
	if err != nil {
		return nil, err
	}
	p, err := NewPredictor(a)
	if err != nil {
		return nil, err
	}
	c.lru.Add(path, cachedArtifact{modTime: info.ModTime(), size: info.Size(), predictor: p})
	c.logger.Info("Artifact loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.ModelNameKey, a.Metadata.ModelType,
		log.RunIDKey, a.Metadata.RunID,
	)
	return p, nil
}

// Invalidate drops the entry for path.
func (c *ArtifactCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(path)
}

// Purge drops every entry.
func (c *ArtifactCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len returns the number of cached artifacts.
func (c *ArtifactCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
