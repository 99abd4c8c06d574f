package core

import (
	"context"
	"testing"
)

func TestMemoryCredentialProvider_LastStoreWins(t *testing.T) {
	provider := NewMemoryCredentialProvider()

	if _, ok := provider.Active(context.Background()); ok {
		t.Fatalf("expected empty provider to report no credentials")
	}

	first := TemporaryCredentials{AccessKeyID: "first"}
	second := TemporaryCredentials{AccessKeyID: "second"}
	if err := provider.Store(context.Background(), first); err != nil {
		t.Fatalf("store first: %v", err)
	}
	if err := provider.Store(context.Background(), second); err != nil {
		t.Fatalf("store second: %v", err)
	}

	active, ok := provider.Active(context.Background())
	if !ok {
		t.Fatalf("expected active credentials after store")
	}
	if active.AccessKeyID != "second" {
		t.Fatalf("expected last store to win, got %q", active.AccessKeyID)
	}
}
