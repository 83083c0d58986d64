package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"pancasila-learning-service/internal/domain"
)

// ChapterLoader fetches chapter content from a backing store (e.g. Postgres).
type ChapterLoader interface {
	LoadChapter(ctx context.Context, chapterID string) (domain.Chapter, error)
}

// ChapterRepository caches chapters in Redis as JSON blobs with TTL and
// falls back to a loader on cache miss. Concurrent misses for the same
// chapter collapse into a single loader call.
type ChapterRepository struct {
	client *redis.Client
	loader ChapterLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewChapterRepository(client *redis.Client, loader ChapterLoader, ttl time.Duration) *ChapterRepository {
	return &ChapterRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ChapterRepository) GetChapter(ctx context.Context, chapterID string) (domain.Chapter, error) {
	key := r.key(chapterID)

	if raw, err := r.client.Get(ctx, key).Result(); err == nil {
		var chapter domain.Chapter
		if err := json.Unmarshal([]byte(raw), &chapter); err == nil {
			return chapter, nil
		}
		// Fall through on a corrupt entry and refill from the loader.
	}

	result, err, _ := r.sf.Do(chapterID, func() (interface{}, error) {
		// Re-check the cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Result(); err == nil {
			var chapter domain.Chapter
			if err := json.Unmarshal([]byte(raw), &chapter); err == nil {
				return chapter, nil
			}
		}

		chapter, err := r.loader.LoadChapter(ctx, chapterID)
		if err != nil {
			return domain.Chapter{}, err
		}

		if data, err := json.Marshal(chapter); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return chapter, nil
	})
	if err != nil {
		return domain.Chapter{}, err
	}
	return result.(domain.Chapter), nil
}

func (r *ChapterRepository) key(chapterID string) string {
	return "corpus:chapter:" + chapterID
}

func (r *ChapterRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
