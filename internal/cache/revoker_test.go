package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	if err := m.Revoke(ctx, "abc", clock.Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := m.IsRevoked(ctx, "abc"); !revoked {
		t.Error("token not revoked")
	}
	if revoked, _ := m.IsRevoked(ctx, "other"); revoked {
		t.Error("unrelated token reported revoked")
	}

	clock = clock.Add(2 * time.Hour)
	if revoked, _ := m.IsRevoked(ctx, "abc"); revoked {
		t.Error("token still revoked after its expiry")
	}
}

func TestMemoryRevokerIgnoresExpiredTokens(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Revoke(ctx, "old", time.Now().Add(-time.Minute))
	if len(m.revoked) != 0 {
		t.Errorf("expired token was stored")
	}
}

func TestNewFallsBackToMemory(t *testing.T) {
	r := New(context.Background(), "", zap.NewNop())
	if _, ok := r.(*MemoryRevoker); !ok {
		t.Errorf("New without url = %T, want *MemoryRevoker", r)
	}

	r = New(context.Background(), "not a url", zap.NewNop())
	if _, ok := r.(*MemoryRevoker); !ok {
		t.Errorf("New with bad url = %T, want *MemoryRevoker", r)
	}
}
