package drivers

import (
	"context"
	"testing"

	"github.com/emojilens/backend/internal/quota"
)

func TestMemoryStoreMissingRecord(t *testing.T) {
	store := NewMemoryStore()

	record, err := store.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	want := quota.Record{Count: 2, Date: "2025-06-01"}
	if err := store.Put(ctx, "client-a", want); err != nil {
		t.Fatalf("Put err: %v", err)
	}

	got, err := store.Get(ctx, "client-a")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got == nil || *got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
}
