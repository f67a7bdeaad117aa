package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
)

const shardPattern = "shard-%04d.csv"

// ShardStore keeps a dataset as fixed-size csv shards under a directory,
// so that workflows never need the full dataset in memory at once.
// Recently parsed shards are kept in a bounded lru cache.
type ShardStore struct {
	dir   string
	cache *lru.Cache
}

// NewShardStore creates a shard store for the given directory.
// cacheSize bounds the number of parsed shards held in memory.
func NewShardStore(dir string, cacheSize int) (*ShardStore, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("could not make dir %s: %w", dir, err)
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create shard cache: %w", err)
	}
	return &ShardStore{
		dir:   dir,
		cache: cache,
	}, nil
}

// Dir returns the shard directory.
func (s *ShardStore) Dir() string {
	return s.dir
}

// Write splits the dataset into shards of at most rowsPerShard samples
// and returns the number of shards written.
func (s *ShardStore) Write(d Dataset, rowsPerShard int) (int, error) {
	if rowsPerShard <= 0 {
		return 0, fmt.Errorf("invalid shard size : %d", rowsPerShard)
	}
	n := 0
	for start := 0; start < d.Len(); start += rowsPerShard {
		end := start + rowsPerShard
		if end > d.Len() {
			end = d.Len()
		}
		idx := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			idx = append(idx, i)
		}
		path := filepath.Join(s.dir, fmt.Sprintf(shardPattern, n))
		if err := Save(path, d.Select(idx)); err != nil {
			return n, fmt.Errorf("could not write shard %d: %w", n, err)
		}
		n++
	}
	log.Info().Int("shards", n).Int("rows", d.Len()).Str("dir", s.dir).Msg("wrote dataset shards")
	return n, nil
}

// Shards lists the shard files of the store in order.
func (s *ShardStore) Shards() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not read dir %s: %w", s.dir, err)
	}
	shards := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		shards = append(shards, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(shards)
	if len(shards) == 0 {
		return nil, fmt.Errorf("no shards in %s", s.dir)
	}
	return shards, nil
}

// Read loads a single shard, serving repeated reads from the cache.
func (s *ShardStore) Read(path string) (Dataset, error) {
	if v, ok := s.cache.Get(path); ok {
		return v.(Dataset), nil
	}
	d, err := Load(path)
	if err != nil {
		return Dataset{}, err
	}
	s.cache.Add(path, d)
	return d, nil
}
