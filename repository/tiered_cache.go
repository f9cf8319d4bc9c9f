package repository

import "context"

// TieredCache reads through a near cache to a far one and backfills the
// near cache on far hits. Writes go to both.
type TieredCache struct {
	near CacheRepository
	far  CacheRepository
}

func NewTieredCache(near, far CacheRepository) *TieredCache {
	return &TieredCache{near: near, far: far}
}

func (t *TieredCache) Get(ctx context.Context, key string) (string, bool, error) {
	if val, ok, err := t.near.Get(ctx, key); err == nil && ok {
		return val, true, nil
	}
	val, ok, err := t.far.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	_ = t.near.Set(ctx, key, val)
	return val, true, nil
}

func (t *TieredCache) Set(ctx context.Context, key string, value string) error {
	if err := t.near.Set(ctx, key, value); err != nil {
		return err
	}
	return t.far.Set(ctx, key, value)
}
