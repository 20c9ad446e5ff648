package statusstore

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/shared"
)

// inMemoryStore keeps enrichment job progress in an expiring LRU. Finished
// jobs age out on their own, so the store never needs explicit cleanup.
type inMemoryStore struct {
	// the LRU itself is thread safe, the mutex protects the
	// read-modify-write cycle in Update
	mut   sync.Mutex
	cache *expirable.LRU[string, dtos.EnrichmentJob]
}

func NewInMemoryStore(size int, ttl time.Duration) *inMemoryStore {
	return &inMemoryStore{
		cache: expirable.NewLRU[string, dtos.EnrichmentJob](size, nil, ttl),
	}
}

var _ shared.EnrichmentStatusStore = &inMemoryStore{}

func (s *inMemoryStore) Create(job dtos.EnrichmentJob) {
	job.UpdatedAt = time.Now()
	s.cache.Add(job.ID, job)
}

func (s *inMemoryStore) Update(jobID string, fn func(job *dtos.EnrichmentJob)) {
	s.mut.Lock()
	defer s.mut.Unlock()
	job, ok := s.cache.Get(jobID)
	if !ok {
		return
	}
	fn(&job)
	job.UpdatedAt = time.Now()
	s.cache.Add(jobID, job)
}

func (s *inMemoryStore) Get(jobID string) (dtos.EnrichmentJob, bool) {
	return s.cache.Get(jobID)
}
