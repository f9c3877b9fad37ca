package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"skillnest/internal/app"
	"skillnest/internal/domain"
)

// CourseCache keeps recently read courses in process memory with a TTL so
// progress and quiz traffic does not hit the store for every request.
type CourseCache struct {
	loader app.CourseReader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[int64]cachedCourse
}

type cachedCourse struct {
	course    domain.Course
	expiresAt time.Time
}

var (
	_ app.CourseReader      = (*CourseCache)(nil)
	_ app.CourseInvalidator = (*CourseCache)(nil)
)

func NewCourseCache(loader app.CourseReader, ttl time.Duration) *CourseCache {
	return &CourseCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedCourse),
	}
}

func (c *CourseCache) GetCourse(ctx context.Context, id int64) (domain.Course, error) {
	if course, ok := c.lookup(id); ok {
		return course, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		if course, ok := c.lookup(id); ok {
			return course, nil
		}
		course, err := c.loader.GetCourse(ctx, id)
		if err != nil {
			return domain.Course{}, err
		}
		if c.ttl > 0 {
			expiresAt := c.clock().Add(c.ttlWithJitter())
			c.mu.Lock()
			c.cache[id] = cachedCourse{course: course, expiresAt: expiresAt}
			c.mu.Unlock()
		}
		return course, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return cloneCourse(result.(domain.Course)), nil
}

// Invalidate drops a cached course after it was modified.
func (c *CourseCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	delete(c.cache, id)
	c.mu.Unlock()
	return nil
}

func (c *CourseCache) lookup(id int64) (domain.Course, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Course{}, false
	}
	return cloneCourse(entry.course), true
}

func (c *CourseCache) ttlWithJitter() time.Duration {
	// up to 10% jitter spreads expirations
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
