package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}

	m.Set(ctx, "a", []byte("1"), 0)
	m.Set(ctx, "a", []byte("2"), 0)
	got, err := m.Get(ctx, "a")
	if err != nil || string(got) != "2" {
		t.Errorf("expected 2, got %q (%v)", got, err)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", m.Len())
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)
	m := NewMemory(10)
	m.now = func() time.Time { return now }

	m.Set(ctx, "page", []byte("html"), time.Minute)

	tests := []struct {
		name    string
		elapsed time.Duration
		wantHit bool
	}{
		{"fresh", 0, true},
		{"just before expiry", time.Minute - time.Second, true},
		{"at expiry", time.Minute, false},
		{"after expiry", 2 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.now = func() time.Time { return now.Add(tt.elapsed) }
			_, err := m.Get(ctx, "page")
			if hit := err == nil; hit != tt.wantHit {
				t.Errorf("hit expected %v, got %v (%v)", tt.wantHit, hit, err)
			}
		})
	}

	if m.Len() != 0 {
		t.Errorf("expected expired entry to be removed, got %d entries", m.Len())
	}
}

func TestMemoryEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	for i := range 3 {
		m.Set(ctx, fmt.Sprintf("k%d", i), []byte{byte(i)}, 0)
	}
	// k0 becomes most recently used, so k1 is the next victim
	m.Get(ctx, "k0")
	m.Set(ctx, "k3", []byte{3}, 0)

	tests := []struct {
		key     string
		wantHit bool
	}{
		{"k0", true},
		{"k1", false},
		{"k2", true},
		{"k3", true},
	}
	for _, tt := range tests {
		_, err := m.Get(ctx, tt.key)
		if hit := err == nil; hit != tt.wantHit {
			t.Errorf("%s hit expected %v, got %v", tt.key, tt.wantHit, hit)
		}
	}
	if m.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", m.Len())
	}
}

func TestMemoryDeleteClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)
	for _, k := range []string{"a", "b", "c"} {
		m.Set(ctx, k, []byte(k), 0)
	}

	if err := m.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of a missing key expected nil, got %v", err)
	}
	if _, err := m.Get(ctx, "b"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected deleted key to miss, got %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", m.Len())
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", m.Len())
	}
	m.Set(ctx, "d", []byte("d"), 0)
	if got, err := m.Get(ctx, "d"); err != nil || string(got) != "d" {
		t.Errorf("expected cache usable after clear, got %q (%v)", got, err)
	}
}
