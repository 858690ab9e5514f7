package util

import "testing"

func TestHashUserKey(t *testing.T) {
	id := "google:12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestContentDigestStable(t *testing.T) {
	data := []byte("%PDF-1.4 fake resume bytes")
	first := ContentDigest(data)
	second := ContentDigest(data)
	if first != second {
		t.Fatalf("expected stable digest, got %s and %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(first))
	}
	if ContentDigest([]byte("other bytes")) == first {
		t.Fatal("expected different payloads to produce different digests")
	}
}
