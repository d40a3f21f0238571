package reqsign

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNonceCache(t *testing.T) {
	t.Run("first sighting records", func(t *testing.T) {
		cache := NewNonceCache(16, time.Minute)

		assert.False(t, cache.Seen("w1", "n1"))
		assert.True(t, cache.Seen("w1", "n1"))
	})

	t.Run("nonces scoped per worker", func(t *testing.T) {
		cache := NewNonceCache(16, time.Minute)

		assert.False(t, cache.Seen("w1", "n1"))
		assert.False(t, cache.Seen("w2", "n1"))
		assert.True(t, cache.Seen("w1", "n1"))
		assert.True(t, cache.Seen("w2", "n1"))
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		cache := NewNonceCache(16, 20*time.Millisecond)

		assert.False(t, cache.Seen("w1", "n1"))
		time.Sleep(60 * time.Millisecond)
		assert.False(t, cache.Seen("w1", "n1"))
	})

	t.Run("non-positive size uses default", func(t *testing.T) {
		cache := NewNonceCache(0, time.Minute)

		assert.False(t, cache.Seen("w1", "n1"))
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("concurrent duplicates admit exactly one", func(t *testing.T) {
		cache := NewNonceCache(1024, time.Minute)

		const goroutines = 32

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			admitted int
		)

		for range goroutines {
			wg.Add(1)

			go func() {
				defer wg.Done()

				if !cache.Seen("w1", "shared-nonce") {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, 1, admitted)
	})

	t.Run("bounded size evicts oldest", func(t *testing.T) {
		cache := NewNonceCache(4, time.Minute)

		for i := range 8 {
			cache.Seen("w1", fmt.Sprintf("n%d", i))
		}

		assert.LessOrEqual(t, cache.Len(), 4)
	})
}
