package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestHitCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	fake := newFakeScripter()
	client := &Client{cmd: fake}

	for want := int64(1); want <= 3; want++ {
		count, reset, err := client.Hit(ctx, "k", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d got %d", want, count)
		}
		if reset != time.Minute {
			t.Fatalf("expected reset 1m, got %s", reset)
		}
	}
	if fake.evals != 1 {
		t.Fatalf("script should be loaded once after NOSCRIPT, got %d evals", fake.evals)
	}
	if fake.lastArg != int64(60000) {
		t.Fatalf("expected window in ms, got %v", fake.lastArg)
	}
}

func TestHitPropagatesErrors(t *testing.T) {
	fake := newFakeScripter()
	fake.err = errors.New("connection refused")
	client := &Client{cmd: fake}
	if _, _, err := client.Hit(context.Background(), "k", time.Minute); err == nil {
		t.Fatalf("expected error")
	}
	if _, _, err := (&Client{cmd: newFakeScripter()}).Hit(context.Background(), "k", 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}

func TestUninitializedClient(t *testing.T) {
	var nilClient *Client
	if _, _, err := nilClient.Hit(context.Background(), "k", time.Second); err == nil {
		t.Fatalf("expected error from nil client")
	}
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op: %v", err)
	}
}

func TestRateLimitKey(t *testing.T) {
	client := &Client{}
	if got := client.RateLimitKey("login:ip:1.2.3.4"); got != "catalog:rate_limit:login:ip:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := buildKey("a", " ", "b"); got != "catalog:a:b" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, ReadTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.ReadTimeout != 2*time.Second {
		t.Fatalf("unexpected options db=%d pool=%d read=%s", opts.DB, opts.PoolSize, opts.ReadTimeout)
	}
}

// fakeScripter answers the hit script like redis would for a window that
// never expires during the test.
type fakeScripter struct {
	counts  map[string]int64
	loaded  bool
	evals   int
	lastArg any
	err     error
}

func newFakeScripter() *fakeScripter {
	return &fakeScripter{counts: map[string]int64{}}
}

func (f *fakeScripter) run(keys []string, args []any) *redis.Cmd {
	if f.err != nil {
		return redis.NewCmdResult(nil, f.err)
	}
	f.counts[keys[0]]++
	f.lastArg = args[0]
	return redis.NewCmdResult([]any{f.counts[keys[0]], args[0]}, nil)
}

func (f *fakeScripter) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	f.evals++
	f.loaded = true
	return f.run(keys, args)
}

func (f *fakeScripter) EvalSha(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	if !f.loaded && f.err == nil {
		return redis.NewCmdResult(nil, noScriptError{})
	}
	return f.run(keys, args)
}

func (f *fakeScripter) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return f.Eval(ctx, script, keys, args...)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	return f.EvalSha(ctx, sha, keys, args...)
}

func (f *fakeScripter) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (f *fakeScripter) ScriptLoad(context.Context, string) *redis.StringCmd {
	f.loaded = true
	return redis.NewStringResult("sha", nil)
}

func (f *fakeScripter) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.err)
}

type noScriptError struct{}

func (noScriptError) Error() string { return "NOSCRIPT No matching script. Please use EVAL." }
func (noScriptError) RedisError()   {}
