package session

import (
	"testing"
	"time"
)

func TestActivityTracker_TouchAndRead(t *testing.T) {
	tr := NewActivityTracker()

	if _, ok := tr.LastActivity("u1"); ok {
		t.Fatal("expected no record before first Touch")
	}

	before := time.Now()
	tr.Touch("u1")

	ts, ok := tr.LastActivity("u1")
	if !ok {
		t.Fatal("expected record after Touch")
	}
	if ts.Before(before.Add(-time.Second)) {
		t.Errorf("timestamp too old: %v", ts)
	}
}

func TestActivityTracker_Remove(t *testing.T) {
	tr := NewActivityTracker()

	tr.Touch("u1")
	tr.Remove("u1")
	tr.Remove("u1") // idempotent

	if _, ok := tr.LastActivity("u1"); ok {
		t.Error("expected record gone after Remove")
	}
}

func TestActivityTracker_PerUser(t *testing.T) {
	tr := NewActivityTracker()

	tr.Touch("u1")
	tr.Touch("u2")
	tr.Remove("u1")

	if _, ok := tr.LastActivity("u2"); !ok {
		t.Error("removing u1 must not affect u2")
	}
}
