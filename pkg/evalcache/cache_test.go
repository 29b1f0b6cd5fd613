package evalcache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jbillay/coordino/pkg/comfort"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCacheRoundTrip(t *testing.T) {
	cache := New(100, time.Minute, testLogger())

	key := Key("alice", time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC), "v1")
	if _, ok := cache.Get(key); ok {
		t.Fatal("fresh cache should miss")
	}

	cls := comfort.Classification{Status: comfort.StatusOrange}
	cache.Set(key, cls)

	got, ok := cache.Get(key)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got.Status != comfort.StatusOrange {
		t.Errorf("cached status = %v, want orange", got.Status)
	}
}

func TestKeyComponents(t *testing.T) {
	instant := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	base := Key("alice", instant, "v1")

	if Key("bob", instant, "v1") == base {
		t.Error("key must vary by participant")
	}
	if Key("alice", instant.Add(time.Hour), "v1") == base {
		t.Error("key must vary by instant")
	}
	if Key("alice", instant, "v2") == base {
		t.Error("key must vary by config fingerprint")
	}

	// Sub-minute components never affect classification, so they never
	// affect the key either.
	if Key("alice", instant.Add(30*time.Second), "v1") != base {
		t.Error("key should truncate to the minute")
	}
}
