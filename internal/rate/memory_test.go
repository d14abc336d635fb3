package rate

import (
	"testing"
	"time"
)

func TestLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiterWithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow("login:1.2.3.4", 3, time.Minute); !ok {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	ok, retry := l.Allow("login:1.2.3.4", 3, time.Minute)
	if ok {
		t.Fatalf("expected fourth hit to be limited")
	}
	if retry != time.Minute {
		t.Fatalf("expected retry after 1m, got %s", retry)
	}
	if ok, _ := l.Allow("login:5.6.7.8", 3, time.Minute); !ok {
		t.Fatalf("other keys must not share the bucket")
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Allow("login:1.2.3.4", 3, time.Minute); !ok {
		t.Fatalf("expected window reset")
	}
}
