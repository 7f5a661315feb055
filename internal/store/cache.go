package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"songfetch/internal/core"
)

// TrackCache caches resolved tracks by their source URL. A Bloom filter
// answers the common miss case without touching the LRU.
type TrackCache struct {
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, *core.Track]
	mutex             sync.RWMutex
	maxEntries        int
	falsePositiveRate float64
}

// NewTrackCache creates a cache with the specified capacity and Bloom false
// positive rate.
func NewTrackCache(maxEntries int, falsePositiveRate float64) *TrackCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	lruCache, _ := lru.New[string, *core.Track](maxEntries)

	return &TrackCache{
		bloom:             bloom.NewWithEstimates(uint(maxEntries), falsePositiveRate),
		lru:               lruCache,
		maxEntries:        maxEntries,
		falsePositiveRate: falsePositiveRate,
	}
}

// Get looks up a previously resolved track.
func (tc *TrackCache) Get(url string) (*core.Track, bool) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	if !tc.bloom.TestString(url) {
		return nil, false
	}

	// Bloom false positives and LRU-evicted entries both land here.
	return tc.lru.Get(url)
}

// Put stores a resolved track under its source URL.
func (tc *TrackCache) Put(url string, track *core.Track) {
	if url == "" || track == nil {
		return
	}

	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.bloom.AddString(url)
	tc.lru.Add(url, track)
}

// Len returns the number of cached tracks.
func (tc *TrackCache) Len() int {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.lru.Len()
}
