package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// errNoValue keeps a nil load result out of the store.
var errNoValue = errors.New("cache: nil value")

// GetOrLoadJSON caches the JSON encoding of whatever load returns. Errors and
// nil results are never stored. A nil cache calls load directly.
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	if c == nil {
		return load(ctx)
	}
	var fresh *T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if v == nil {
			return nil, errNoValue
		}
		fresh = v
		return json.Marshal(v)
	})
	switch {
	case errors.Is(err, errNoValue):
		return nil, nil
	case err != nil:
		return nil, err
	case fresh != nil:
		return fresh, nil
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		// 缓存内容损坏：删掉后回源
		_ = c.Invalidate(ctx, key)
		return load(ctx)
	}
	return out, nil
}
