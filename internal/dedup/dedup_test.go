package dedup

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SeenAfterMark(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	seen, err := s.Seen(ctx, "pair-1")
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if seen {
		t.Error("fresh store should not contain pair-1")
	}

	if err := s.MarkSeen(ctx, "pair-1"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	seen, err = s.Seen(ctx, "pair-1")
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if !seen {
		t.Error("pair-1 should be seen after MarkSeen")
	}
}

func TestMemoryStore_MarkSeenIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	for i := 0; i < 3; i++ {
		if err := s.MarkSeen(ctx, "pair-1"); err != nil {
			t.Fatalf("MarkSeen #%d: %v", i, err)
		}
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len = %d, want 1", got)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	current := time.Now()
	s.now = func() time.Time { return current }

	if err := s.MarkSeen(ctx, "pair-1"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	current = current.Add(59 * time.Minute)
	if seen, _ := s.Seen(ctx, "pair-1"); !seen {
		t.Error("pair-1 should still be seen inside the TTL window")
	}

	current = current.Add(2 * time.Minute)
	if seen, _ := s.Seen(ctx, "pair-1"); seen {
		t.Error("pair-1 should have expired after the TTL window")
	}
	if got := s.Len(); got != 0 {
		t.Errorf("Len = %d, want 0 after expiry", got)
	}
}

// Re-marking an already-seen id must not extend its window.
func TestMemoryStore_MarkDoesNotExtendWindow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	current := time.Now()
	s.now = func() time.Time { return current }

	_ = s.MarkSeen(ctx, "pair-1")

	current = current.Add(30 * time.Minute)
	_ = s.MarkSeen(ctx, "pair-1")

	current = current.Add(31 * time.Minute)
	if seen, _ := s.Seen(ctx, "pair-1"); seen {
		t.Error("window should be measured from first mark, not the re-mark")
	}
}

func TestMemoryStore_Preload(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	s.Preload([]string{"a", "b", "c"})
	if got := s.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	for _, id := range []string{"a", "b", "c"} {
		if seen, _ := s.Seen(ctx, id); !seen {
			t.Errorf("preloaded id %q not seen", id)
		}
	}
}

func TestMemoryStore_UnboundedNeverExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	current := time.Now()
	s.now = func() time.Time { return current }

	_ = s.MarkSeen(ctx, "pair-1")
	current = current.Add(10000 * time.Hour)

	if seen, _ := s.Seen(ctx, "pair-1"); !seen {
		t.Error("unbounded store must never expire entries")
	}
}
