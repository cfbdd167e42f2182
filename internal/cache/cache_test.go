package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, k string) ([]byte, bool) { b, ok := m[k]; return b, ok }
func (m mapCache) Set(_ context.Context, k string, v []byte)      { m[k] = v }
func (m mapCache) Invalidate(_ context.Context, prefix string) {
	for k := range m {
		if strings.HasPrefix(k, prefix) {
			delete(m, k)
		}
	}
}

func TestLoad_ReadThrough(t *testing.T) {
	ctx := context.Background()
	c := mapCache{}
	calls := 0
	fetch := func() ([]string, error) { calls++; return []string{"Pokemon"}, nil }

	v, err := Load(ctx, c, Prefix+"licences:list", fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pokemon"}, v)

	v, err = Load(ctx, c, Prefix+"licences:list", fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pokemon"}, v)
	assert.Equal(t, 1, calls)

	c.Invalidate(ctx, Prefix)
	_, err = Load(ctx, c, Prefix+"licences:list", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoad_FetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := mapCache{}
	_, err := Load(ctx, c, "k", func() (int, error) { return 0, errors.New("db down") })
	assert.Error(t, err)
	assert.Empty(t, c)
}

func TestLoad_UndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c := mapCache{"k": []byte("{not json")}
	v, err := Load(ctx, c, "k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "7", string(c["k"]))
}

func TestNoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}
	c.Set(ctx, "k", []byte("v"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisUnreachableDegradesToMiss(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := NewRedis("127.0.0.1:1", "", 0, time.Minute)
	defer r.Close()

	assert.Error(t, r.Ping(ctx))
	r.Set(ctx, "k", []byte("v"))
	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
	r.Invalidate(ctx, Prefix)
}
