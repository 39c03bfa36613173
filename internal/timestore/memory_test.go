package timestore

import (
	"context"
	"testing"

	"github.com/louisbranch/stabletime/internal/timepoint"
)

func TestMemoryAbsentWhenEmpty(t *testing.T) {
	t.Parallel()

	backend := NewMemory()
	if _, ok := backend.Current(context.Background()); ok {
		t.Fatal("expected fresh backend to report absent")
	}
}

func TestMemorySetThenCurrent(t *testing.T) {
	t.Parallel()

	backend := NewMemory()
	snap := timepoint.New(120, 1771600000, -0.5)
	if err := backend.SetCurrent(context.Background(), &snap); err != nil {
		t.Fatalf("set current: %v", err)
	}

	got, ok := backend.Current(context.Background())
	if !ok {
		t.Fatal("expected stored snapshot")
	}
	if got != snap {
		t.Fatalf("Current() = %+v, want %+v", got, snap)
	}
}

func TestMemoryNilSetKeepsValue(t *testing.T) {
	t.Parallel()

	backend := NewMemory()
	snap := timepoint.New(120, 1771600000, -0.5)
	if err := backend.SetCurrent(context.Background(), &snap); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if err := backend.SetCurrent(context.Background(), nil); err != nil {
		t.Fatalf("nil set: %v", err)
	}

	got, ok := backend.Current(context.Background())
	if !ok {
		t.Fatal("expected value to survive nil set")
	}
	if got != snap {
		t.Fatalf("Current() = %+v, want %+v", got, snap)
	}
}

func TestMemoryInstancesAreIndependent(t *testing.T) {
	t.Parallel()

	first := NewMemory()
	second := NewMemory()
	snap := timepoint.New(1, 2, 3)
	if err := first.SetCurrent(context.Background(), &snap); err != nil {
		t.Fatalf("set current: %v", err)
	}

	if _, ok := second.Current(context.Background()); ok {
		t.Fatal("expected second backend to stay empty")
	}
}
