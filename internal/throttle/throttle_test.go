package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		want    Rate
		wantErr bool
	}{
		{"100/day", Rate{100, 24 * time.Hour}, false},
		{"1000/d", Rate{1000, 24 * time.Hour}, false},
		{"5/hour", Rate{5, time.Hour}, false},
		{"10/min", Rate{10, time.Minute}, false},
		{"3/sec", Rate{3, time.Second}, false},
		{"abc/day", Rate{}, true},
		{"0/day", Rate{}, true},
		{"5/week", Rate{}, true},
		{"5", Rate{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimiter_MemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	l := NewLimiter(store)
	rate := Rate{Limit: 2, Period: time.Hour}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "delete", "u1", rate)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := l.Allow(ctx, "delete", "u1", rate)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Hour, res.RetryAfter)
	assert.EqualValues(t, 0, res.Remaining)

	other, err := l.Allow(ctx, "delete", "u2", rate)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are independent")

	now = now.Add(time.Hour)
	res, err = l.Allow(ctx, "delete", "u1", rate)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "window resets")
}

func TestLimiter_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewLimiter(NewRedisStore(client))
	rate := Rate{Limit: 1, Period: time.Minute}
	ctx := context.Background()

	res, err := l.Allow(ctx, "anon", "10.0.0.1", rate)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(ctx, "anon", "10.0.0.1", rate)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	mr.FastForward(time.Minute)
	res, err = l.Allow(ctx, "anon", "10.0.0.1", rate)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
