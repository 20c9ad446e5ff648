package statusstore

import (
	"testing"
	"time"

	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryStore(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		store := NewInMemoryStore(16, time.Minute)
		store.Create(dtos.EnrichmentJob{ID: "job-1", State: dtos.EnrichmentStateQueued})

		job, ok := store.Get("job-1")
		assert.True(t, ok)
		assert.Equal(t, dtos.EnrichmentStateQueued, job.State)
		assert.False(t, job.UpdatedAt.IsZero())
	})

	t.Run("update mutates the stored job", func(t *testing.T) {
		store := NewInMemoryStore(16, time.Minute)
		store.Create(dtos.EnrichmentJob{ID: "job-1", State: dtos.EnrichmentStateQueued, TotalComponents: 3})

		store.Update("job-1", func(job *dtos.EnrichmentJob) {
			job.State = dtos.EnrichmentStateInProgress
			job.ProcessedComponents++
		})

		job, ok := store.Get("job-1")
		assert.True(t, ok)
		assert.Equal(t, dtos.EnrichmentStateInProgress, job.State)
		assert.Equal(t, 1, job.ProcessedComponents)
	})

	t.Run("updating an unknown job is a no-op", func(t *testing.T) {
		store := NewInMemoryStore(16, time.Minute)
		store.Update("nope", func(job *dtos.EnrichmentJob) {
			t.Fatal("should not be called")
		})

		_, ok := store.Get("nope")
		assert.False(t, ok)
	})

	t.Run("entries expire", func(t *testing.T) {
		store := NewInMemoryStore(16, 10*time.Millisecond)
		store.Create(dtos.EnrichmentJob{ID: "job-1"})

		assert.Eventually(t, func() bool {
			_, ok := store.Get("job-1")
			return !ok
		}, time.Second, 10*time.Millisecond)
	})
}
