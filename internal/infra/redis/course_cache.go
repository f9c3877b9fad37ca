package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"skillnest/internal/app"
	"skillnest/internal/domain"
)

// CourseCache stores course documents as JSON in Redis and falls back to
// the loader on a miss. Courses are stored as: SET course:{id} <json> PX ttl
type CourseCache struct {
	client *redis.Client
	loader app.CourseReader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

var (
	_ app.CourseReader      = (*CourseCache)(nil)
	_ app.CourseInvalidator = (*CourseCache)(nil)
)

func NewCourseCache(client *redis.Client, loader app.CourseReader, ttl time.Duration) *CourseCache {
	return &CourseCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CourseCache) GetCourse(ctx context.Context, id int64) (domain.Course, error) {
	if course, ok := c.read(ctx, id); ok {
		return course, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		// Re-check in case another instance filled it.
		if course, ok := c.read(ctx, id); ok {
			return course, nil
		}
		course, err := c.loader.GetCourse(ctx, id)
		if err != nil {
			return domain.Course{}, err
		}
		if payload, err := json.Marshal(course); err == nil {
			// best effort; a failed write only costs a reload
			_ = c.client.Set(ctx, c.key(id), payload, c.ttlWithJitter()).Err()
		}
		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return result.(domain.Course), nil
}

// Invalidate deletes the cached document for id.
func (c *CourseCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *CourseCache) read(ctx context.Context, id int64) (domain.Course, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; other errors degrade to the loader.
		return domain.Course{}, false
	}
	var course domain.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		return domain.Course{}, false
	}
	return course, true
}

func (c *CourseCache) key(id int64) string {
	return "course:" + strconv.FormatInt(id, 10)
}

func (c *CourseCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
