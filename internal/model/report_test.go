package model

import (
	"testing"
	"time"
)

func TestStampModified_StrictlyIncreasing(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var r HazardReport
	r.StampModified(now)
	if got, want := r.LastModified, now.UnixMilli(); got != want {
		t.Fatalf("LastModified = %d, want %d", got, want)
	}

	// Same wall-clock instant still advances.
	prev := r.LastModified
	r.StampModified(now)
	if r.LastModified != prev+1 {
		t.Fatalf("LastModified = %d, want %d", r.LastModified, prev+1)
	}

	// A clock that stepped backwards never rolls the stamp back.
	prev = r.LastModified
	r.StampModified(now.Add(-time.Hour))
	if r.LastModified != prev+1 {
		t.Fatalf("LastModified = %d, want %d", r.LastModified, prev+1)
	}

	// Once the clock catches up, the stamp follows it again.
	later := now.Add(time.Minute)
	r.StampModified(later)
	if got, want := r.LastModified, later.UnixMilli(); got != want {
		t.Fatalf("LastModified = %d, want %d", got, want)
	}
}

func TestHasCleared(t *testing.T) {
	r := HazardReport{ClearedLedger: []Confirmation{
		{DeviceID: "dev-a", At: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}

	if !r.HasCleared("dev-a") {
		t.Fatal("dev-a should be in the cleared ledger")
	}
	if r.HasCleared("dev-b") {
		t.Fatal("dev-b should not be in the cleared ledger")
	}
}

func TestStillThereSince_CutoffBoundary(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := HazardReport{StillThereLedger: []Confirmation{{DeviceID: "dev-a", At: at}}}

	if !r.StillThereSince("dev-a", at) {
		t.Fatal("an entry exactly at the cutoff must still block")
	}
	if r.StillThereSince("dev-a", at.Add(time.Millisecond)) {
		t.Fatal("an entry older than the cutoff must not block")
	}
	if r.StillThereSince("dev-b", at.Add(-time.Hour)) {
		t.Fatal("unknown device must not block")
	}
}

func TestActive(t *testing.T) {
	cases := []struct {
		name     string
		resolved bool
		archived bool
		want     bool
	}{
		{"open", false, false, true},
		{"resolved", true, false, false},
		{"archived", false, true, false},
		{"resolved and archived", true, true, false},
	}
	for _, tc := range cases {
		r := HazardReport{Resolved: tc.resolved, Archived: tc.archived}
		if r.Active() != tc.want {
			t.Errorf("%s: Active() = %v, want %v", tc.name, r.Active(), tc.want)
		}
	}
}

func TestClone_NoAliasing(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orig := HazardReport{
		ID:               "haz-1",
		ClearedLedger:    []Confirmation{{DeviceID: "dev-a", At: at}},
		StillThereLedger: []Confirmation{{DeviceID: "dev-b", At: at}},
		ArchivedAt:       &at,
	}

	clone := orig.Clone()
	clone.ClearedLedger[0].DeviceID = "changed"
	clone.StillThereLedger[0].DeviceID = "changed"
	*clone.ArchivedAt = at.Add(time.Hour)

	if orig.ClearedLedger[0].DeviceID != "dev-a" {
		t.Fatal("clone aliases the cleared ledger")
	}
	if orig.StillThereLedger[0].DeviceID != "dev-b" {
		t.Fatal("clone aliases the still-there ledger")
	}
	if !orig.ArchivedAt.Equal(at) {
		t.Fatal("clone aliases ArchivedAt")
	}
}

func TestFixedGenerator_SequenceAndExhaustion(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	if gen.NewID() != "a" || gen.NewID() != "b" {
		t.Fatal("FixedGenerator must return ids in order")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("exhausted generator must panic")
		}
	}()
	gen.NewID()
}
