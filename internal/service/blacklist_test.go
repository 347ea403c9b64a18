package service

import (
	"fmt"
	"sync"
	"testing"
)

func TestBlacklistRevoke(t *testing.T) {
	b := NewBlacklist()

	if b.IsRevoked("tok") {
		t.Fatalf("fresh blacklist should not contain tok")
	}

	b.Revoke("tok")
	if !b.IsRevoked("tok") {
		t.Fatalf("tok should be revoked")
	}

	// Revoking twice has no additional effect.
	b.Revoke("tok")
	if !b.IsRevoked("tok") {
		t.Fatalf("tok should stay revoked")
	}

	if b.IsRevoked("other") {
		t.Fatalf("other token should not be revoked")
	}
}

func TestBlacklistConcurrent(t *testing.T) {
	b := NewBlacklist()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		token := fmt.Sprintf("tok-%d", i)
		go func() {
			defer wg.Done()
			b.Revoke(token)
		}()
		go func() {
			defer wg.Done()
			_ = b.IsRevoked(token)
		}()
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		token := fmt.Sprintf("tok-%d", i)
		if !b.IsRevoked(token) {
			t.Fatalf("%s should be revoked after all writers finished", token)
		}
	}
}
