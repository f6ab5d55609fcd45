package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7_VersionAndOrder(t *testing.T) {
	gen := UUIDv7()
	prev := ""
	for i := 0; i < 100; i++ {
		id := gen()
		u, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("parse %q: %v", id, err)
		}
		if u.Version() != 7 {
			t.Fatalf("version: got %d, want 7", u.Version())
		}
		if id == prev {
			t.Fatalf("duplicate id %q", id)
		}
		prev = id
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("req_", UUIDv7())()
	if !strings.HasPrefix(id, "req_") {
		t.Fatalf("prefix missing: %q", id)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(id, "req_")); err != nil {
		t.Fatalf("suffix not a uuid: %v", err)
	}
}

func TestSequential_Concurrent(t *testing.T) {
	gen := Sequential("snap")
	if got := gen(); got != "snap-1" {
		t.Fatalf("first: got %q, want snap-1", got)
	}

	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, dup := seen.LoadOrStore(gen(), true); dup {
				t.Error("duplicate sequential id")
			}
		}()
	}
	wg.Wait()
}
