package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

func init() {
	retryDelay = time.Millisecond
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}

	done, cancel := context.WithCancel(ctx)
	cancel()
	if _, _, err := c.Get(done, "key"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get after cancel = %v, want context.Canceled", err)
	}
	if err := c.Set(done, "key", nil, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Set after cancel = %v, want context.Canceled", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "a", []byte(`{"x":1}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "a")
	if err != nil || !hit {
		t.Fatalf("Get(a) = hit %v, err %v", hit, err)
	}
	if string(data) != `{"x":1}` {
		t.Errorf("Get(a) = %s", data)
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry should be gone after Delete")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry should be gone after Clear")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashJSON(t *testing.T) {
	compact := `{"frames":[{"id":"page","bounds":{"width":100}}]}`
	tests := []struct {
		name string
		data string
		same bool
	}{
		{"identical", compact, true},
		{"indented", "{\n  \"frames\": [\n    {\"id\": \"page\", \"bounds\": {\"width\": 100}}\n  ]\n}\n", true},
		{"different value", `{"frames":[{"id":"page","bounds":{"width":101}}]}`, false},
		{"reordered keys", `{"frames":[{"bounds":{"width":100},"id":"page"}]}`, false},
	}
	want := HashJSON([]byte(compact))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HashJSON([]byte(tt.data)) == want; got != tt.same {
				t.Errorf("same hash = %v, want %v", got, tt.same)
			}
		})
	}

	if got, want := HashJSON([]byte("{")), Hash([]byte("{")); got != want {
		t.Errorf("HashJSON(invalid) = %s, want the raw hash %s", got, want)
	}
	if InputHash("a", "bc") == InputHash("ab", "c") {
		t.Error("InputHash must keep the design and rules hashes apart")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	ek := k.ExpandKey("d1", "r1")
	if !strings.HasPrefix(ek, "expand:") {
		t.Errorf("ExpandKey unexpected: %s", ek)
	}
	if ek == k.ExpandKey("d1", "r2") {
		t.Error("different rules should produce different keys")
	}

	lk1 := k.LayoutKey("h", LayoutKeyOpts{Width: 800, Height: 600})
	lk2 := k.LayoutKey("h", LayoutKeyOpts{Width: 800, Height: 601})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("h", LayoutKeyOpts{Width: 800, Height: 600}) {
		t.Error("LayoutKey should be deterministic")
	}

	ak1 := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("h", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "server:")

	if got, want := scoped.ExpandKey("d", "r"), "server:"+inner.ExpandKey("d", "r"); got != want {
		t.Errorf("ExpandKey = %s, want %s", got, want)
	}
	if got := scoped.LayoutKey("h", LayoutKeyOpts{}); !strings.HasPrefix(got, "server:layout:") {
		t.Errorf("LayoutKey should be prefixed: %s", got)
	}
	if got := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); !strings.HasPrefix(got, "server:artifact:") {
		t.Errorf("ArtifactKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.ExpandKey("d", "r"); got != "prefix:"+NewDefaultKeyer().ExpandKey("d", "r") {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "default is file", cfg: Config{Dir: t.TempDir()}, want: "*cache.FileCache"},
		{name: "file", cfg: Config{Backend: "FILE", Dir: t.TempDir()}, want: "*cache.FileCache"},
		{name: "none", cfg: Config{Backend: "none"}, want: "cache.NullCache"},
		{name: "file without dir", cfg: Config{Backend: "file"}, wantErr: true},
		{name: "unknown", cfg: Config{Backend: "memcached"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Open(%+v) should fail", tt.cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()
			var got string
			switch c.(type) {
			case *FileCache:
				got = "*cache.FileCache"
			case NullCache:
				got = "cache.NullCache"
			}
			if got != tt.want {
				t.Errorf("Open returned %T, want %s", c, tt.want)
			}
		})
	}
}

func TestConfigTOML(t *testing.T) {
	var cfg struct {
		Cache Config `toml:"cache"`
	}
	_, err := toml.Decode(`
[cache]
backend = "redis"
ttl = "12h"
redis_addr = "cache:6379"
`, &cfg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("decoded %+v", cfg.Cache)
	}
	if got := cfg.Cache.TTLFor(time.Hour); got != 12*time.Hour {
		t.Errorf("TTLFor = %v, want 12h", got)
	}
	if got := (Config{}).TTLFor(time.Hour); got != time.Hour {
		t.Errorf("TTLFor default = %v, want 1h", got)
	}

	var bad struct {
		Cache Config `toml:"cache"`
	}
	if _, err := toml.Decode("[cache]\nttl = \"soon\"\n", &bad); err == nil {
		t.Error("invalid duration should fail to decode")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SYMBOLKIT_TEST_REDIS")
	if addr == "" {
		t.Skip("SYMBOLKIT_TEST_REDIS not set")
	}
	testRemote(t, func(ctx context.Context) (Cache, error) { return NewRedisCache(ctx, addr) })
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("SYMBOLKIT_TEST_MONGO")
	if uri == "" {
		t.Skip("SYMBOLKIT_TEST_MONGO not set")
	}
	testRemote(t, func(ctx context.Context) (Cache, error) { return NewMongoCache(ctx, uri, "symbolkit_test") })
}

func testRemote(t *testing.T, open func(context.Context) (Cache, error)) {
	t.Helper()
	ctx := context.Background()
	c, err := open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	key := "test:" + t.Name()
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry should be gone after Delete")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	errPermanent := errors.New("permanent")

	tests := []struct {
		name      string
		failUntil int
		err       error
		wantCalls int
		wantErr   error
	}{
		{name: "success first try", wantCalls: 1},
		{name: "non-retryable stops", failUntil: 5, err: errPermanent, wantCalls: 1, wantErr: errPermanent},
		{name: "retry then succeed", failUntil: 2, err: Retryable(ErrUnavailable), wantCalls: 2},
		{name: "gives up after three", failUntil: 10, err: Retryable(ErrUnavailable), wantCalls: 3, wantErr: ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls < tt.failUntil {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
