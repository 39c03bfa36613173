package timestore

import (
	"context"
	"testing"

	"github.com/louisbranch/stabletime/internal/timepoint"
)

func TestNewMemoryPolicyIgnoresCatalog(t *testing.T) {
	t.Parallel()

	storage, err := New(MemoryPolicy(), nil)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	if _, ok := storage.Current(context.Background()); ok {
		t.Fatal("expected fresh storage to report absent")
	}
}

func TestNewPersistentPoliciesRequireCatalog(t *testing.T) {
	t.Parallel()

	if _, err := New(StandardPolicy(), nil); err == nil {
		t.Fatal("expected standard policy to require a catalog")
	}
	if _, err := New(SharedGroupPolicy("fleet"), nil); err == nil {
		t.Fatal("expected shared-group policy to require a catalog")
	}
}

func TestNewStandardBindsDefaultPartition(t *testing.T) {
	t.Parallel()

	catalog := newFakeCatalog()
	storage, err := New(StandardPolicy(), catalog)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	snap := timepoint.New(1, 2, 3)
	if err := storage.SetCurrent(context.Background(), &snap); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if catalog.standard.sets != 1 {
		t.Fatal("expected write to land in the default partition")
	}
}

func TestNewSharedGroupBindsSuite(t *testing.T) {
	t.Parallel()

	catalog := newFakeCatalog()
	fleet := catalog.addSuite("fleet")

	storage, err := New(SharedGroupPolicy("fleet"), catalog)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	snap := timepoint.New(1, 2, 3)
	if err := storage.SetCurrent(context.Background(), &snap); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if fleet.sets != 1 {
		t.Fatal("expected write to land in the fleet suite")
	}
	if catalog.standard.sets != 0 {
		t.Fatal("expected default partition untouched")
	}
}

func TestNewUnresolvableGroupFallsBackToStandard(t *testing.T) {
	t.Parallel()

	catalog := newFakeCatalog()
	var seen []Diagnostic

	storage, err := New(SharedGroupPolicy("ghost"), catalog, WithMonitor(func(d Diagnostic) {
		seen = append(seen, d)
	}))
	if err != nil {
		t.Fatalf("expected fallback construction to succeed, got %v", err)
	}
	if len(seen) != 1 || seen[0].Op != OpResolveSuite || seen[0].Group != "ghost" {
		t.Fatalf("expected resolve diagnostic, got %+v", seen)
	}

	snap := timepoint.New(1, 2, 3)
	if err := storage.SetCurrent(context.Background(), &snap); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if catalog.standard.sets != 1 {
		t.Fatal("expected fallback to write to the default partition")
	}
}

func TestSharedGroupStoragesShareValue(t *testing.T) {
	t.Parallel()

	catalog := newFakeCatalog()
	catalog.addSuite("fleet")

	writer, err := New(SharedGroupPolicy("fleet"), catalog)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	reader, err := New(SharedGroupPolicy("fleet"), catalog)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}

	snap := timepoint.New(7, 8, 9)
	if err := writer.SetCurrent(context.Background(), &snap); err != nil {
		t.Fatalf("set current: %v", err)
	}

	got, ok := reader.Current(context.Background())
	if !ok {
		t.Fatal("expected shared value to be visible")
	}
	if got != snap {
		t.Fatalf("Current() = %+v, want %+v", got, snap)
	}
}

func TestMemoryStoragesAreIndependent(t *testing.T) {
	t.Parallel()

	first, err := New(MemoryPolicy(), nil)
	if err != nil {
		t.Fatalf("new first: %v", err)
	}
	second, err := New(MemoryPolicy(), nil)
	if err != nil {
		t.Fatalf("new second: %v", err)
	}

	snap := timepoint.New(1, 2, 3)
	if err := first.SetCurrent(context.Background(), &snap); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if _, ok := second.Current(context.Background()); ok {
		t.Fatal("expected second storage to stay empty")
	}
}

// TestMemoryScenario walks the full cache lifecycle through the facade:
// empty read, store, nil-set no-op, overwrite.
func TestMemoryScenario(t *testing.T) {
	t.Parallel()

	storage, err := New(MemoryPolicy(), nil)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	ctx := context.Background()

	if _, ok := storage.Current(ctx); ok {
		t.Fatal("expected empty storage to report absent")
	}

	snapA := timepoint.New(100, 1771600000, 0.5)
	if err := storage.SetCurrent(ctx, &snapA); err != nil {
		t.Fatalf("set snapshot A: %v", err)
	}
	if got, ok := storage.Current(ctx); !ok || got != snapA {
		t.Fatalf("Current() = %+v/%t, want %+v", got, ok, snapA)
	}

	if err := storage.SetCurrent(ctx, nil); err != nil {
		t.Fatalf("nil set: %v", err)
	}
	if got, ok := storage.Current(ctx); !ok || got != snapA {
		t.Fatalf("expected snapshot A to survive nil set, got %+v/%t", got, ok)
	}

	snapB := timepoint.New(200, 1771600100, -0.5)
	if err := storage.SetCurrent(ctx, &snapB); err != nil {
		t.Fatalf("set snapshot B: %v", err)
	}
	if got, ok := storage.Current(ctx); !ok || got != snapB {
		t.Fatalf("Current() = %+v/%t, want %+v", got, ok, snapB)
	}
}

func TestNilStorageIsSafe(t *testing.T) {
	t.Parallel()

	var storage *Storage
	if _, ok := storage.Current(context.Background()); ok {
		t.Fatal("expected nil storage to report absent")
	}
	snap := timepoint.New(1, 2, 3)
	if err := storage.SetCurrent(context.Background(), &snap); err == nil {
		t.Fatal("expected nil storage write to error")
	}
}
