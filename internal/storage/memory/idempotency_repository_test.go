package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/restaurant-platform/cart-service/internal/domain"
	"github.com/restaurant-platform/cart-service/internal/storage/memory"
)

func TestIdempotencyRepository_CreateProcessing(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	record, err := repo.CreateProcessing("key-1", "hash-1", time.Time{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.Status != domain.IdempotencyStatusProcessing {
		t.Fatalf("expected processing status, got %s", record.Status)
	}
	if record.TTLAt.IsZero() {
		t.Fatal("expected default TTL to be applied")
	}
}

func TestIdempotencyRepository_DuplicateKey(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("key-1", "hash-1", time.Time{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := repo.CreateProcessing("key-1", "hash-1", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	_, err = repo.CreateProcessing("key-1", "hash-2", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyHashMismatch) {
		t.Fatalf("expected hash mismatch, got %v", err)
	}
}

func TestIdempotencyRepository_MarkDone(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("key-1", "hash-1", time.Time{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.MarkDone("key-1", "ORD-42", 3200); err != nil {
		t.Fatalf("mark done failed: %v", err)
	}

	record, err := repo.Get("key-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if record.Status != domain.IdempotencyStatusDone {
		t.Fatalf("expected done, got %s", record.Status)
	}
	if record.OrderID != "ORD-42" || record.TotalMinor != 3200 {
		t.Fatalf("unexpected stored result: %+v", record)
	}
}

func TestIdempotencyRepository_DeleteExpired(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	past := time.Now().UTC().Add(-time.Hour)
	if _, err := repo.CreateProcessing("old", "hash", past); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.CreateProcessing("fresh", "hash", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	removed, err := repo.DeleteExpired(time.Now().UTC(), 0)
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := repo.Get("old"); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected old record gone, got %v", err)
	}
	if _, err := repo.Get("fresh"); err != nil {
		t.Fatalf("fresh record must survive: %v", err)
	}
}
