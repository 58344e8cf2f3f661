package versioning

import (
	"testing"
	"time"
)

func TestVersionedNameReplaceKeepsOriginalName(t *testing.T) {
	got := VersionedName("a.txt", StyleReplace, time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC))
	if got != "a.txt" {
		t.Fatalf("expected replace style to keep the original name, got %q", got)
	}
}

func TestVersionedNameTimestampAppendsStampBeforeExtension(t *testing.T) {
	at := time.Date(2026, 3, 5, 10, 30, 45, 0, time.UTC)
	got := VersionedName("a.txt", StyleTimestamp, at)
	want := "a 2026-03-05 103045.txt"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestVersionedNameTimestampHandlesNoExtension(t *testing.T) {
	at := time.Date(2026, 3, 5, 10, 30, 45, 0, time.UTC)
	got := VersionedName("README", StyleTimestamp, at)
	want := "README 2026-03-05 103045"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIsMatchingVersionRoundTrips(t *testing.T) {
	at := time.Date(2026, 3, 5, 10, 30, 45, 0, time.UTC)
	versioned := VersionedName("a.txt", StyleTimestamp, at)
	if !IsMatchingVersion("a.txt", versioned, StyleTimestamp, false) {
		t.Fatalf("expected %q to match original a.txt", versioned)
	}
}

func TestIsMatchingVersionRejectsUnrelatedName(t *testing.T) {
	if IsMatchingVersion("a.txt", "b 2026-03-05 103045.txt", StyleTimestamp, false) {
		t.Fatalf("expected unrelated name not to match")
	}
	if IsMatchingVersion("a.txt", "a 2026-03-05.txt", StyleTimestamp, false) {
		t.Fatalf("expected malformed timestamp not to match")
	}
}

func TestIsMatchingVersionReplaceIsCaseInsensitiveWhenConfigured(t *testing.T) {
	if !IsMatchingVersion("A.txt", "a.txt", StyleReplace, true) {
		t.Fatalf("expected case-insensitive match")
	}
	if IsMatchingVersion("A.txt", "a.txt", StyleReplace, false) {
		t.Fatalf("expected case-sensitive mismatch")
	}
}
