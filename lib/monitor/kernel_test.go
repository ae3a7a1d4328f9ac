// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

import (
	"testing"
	"time"
)

func TestQueuePairsMoves(t *testing.T) {
	now := time.Now()
	var q eventQueue

	from := &RawEvent{WD: 1, Mask: InMovedFrom, Cookie: 42, Name: "foo", Time: now}
	to := &RawEvent{WD: 1, Mask: InMovedTo, Cookie: 42, Name: "bar", Time: now}
	q.push(from)
	q.push(to)

	ev := q.pop(now)
	if ev != from {
		t.Fatalf("expected the moved-from event, got %v", ev)
	}
	if ev.Pair != to || to.Pair != from {
		t.Error("pair not linked both ways")
	}
	if q.len() != 0 {
		t.Errorf("moved-to half still queued, %d events left", q.len())
	}
}

func TestQueuePairsAcrossInterveningEvents(t *testing.T) {
	now := time.Now()
	var q eventQueue

	from := &RawEvent{WD: 1, Mask: InMovedFrom, Cookie: 7, Name: "a", Time: now}
	mod := &RawEvent{WD: 1, Mask: InModify, Name: "b", Time: now}
	to := &RawEvent{WD: 2, Mask: InMovedTo, Cookie: 7, Name: "a", Time: now}
	q.push(from)
	q.push(mod)
	q.push(to)

	if ev := q.pop(now); ev != from || ev.Pair != to {
		t.Fatalf("expected paired moved-from first, got %v", ev)
	}
	if ev := q.pop(now); ev != mod {
		t.Fatalf("expected the modify event next, got %v", ev)
	}
	if q.len() != 0 {
		t.Errorf("%d events left", q.len())
	}
}

func TestQueueHoldsUnpairedMove(t *testing.T) {
	now := time.Now()
	var q eventQueue

	from := &RawEvent{WD: 1, Mask: InMovedFrom, Cookie: 9, Name: "x", Time: now}
	q.push(from)

	if ev := q.pop(now); ev != nil {
		t.Fatalf("unpaired moved-from delivered too early: %v", ev)
	}
	if wait, ok := q.readyIn(now); !ok || wait <= 0 {
		t.Errorf("expected a positive wait, got %v %v", wait, ok)
	}

	later := now.Add(movePairDelay)
	ev := q.pop(later)
	if ev != from {
		t.Fatalf("expected the moved-from event after the delay, got %v", ev)
	}
	if ev.Pair != nil {
		t.Error("event unexpectedly paired")
	}
}

func TestQueueDistanceLimit(t *testing.T) {
	now := time.Now()
	var q eventQueue

	from := &RawEvent{WD: 1, Mask: InMovedFrom, Cookie: 3, Name: "x", Time: now}
	q.push(from)
	for i := 0; i <= movePairDistance; i++ {
		q.push(&RawEvent{WD: 1, Mask: InModify, Name: "y", Time: now})
	}

	// Too many interceding events; the head is given up on immediately.
	if ev := q.pop(now); ev != from {
		t.Fatalf("expected the moved-from event, got %v", ev)
	}
}

func TestQueueNoPairingByCookieMismatch(t *testing.T) {
	now := time.Now()
	var q eventQueue

	from := &RawEvent{WD: 1, Mask: InMovedFrom, Cookie: 1, Name: "a", Time: now}
	to := &RawEvent{WD: 1, Mask: InMovedTo, Cookie: 2, Name: "b", Time: now}
	q.push(from)
	q.push(to)

	if ev := q.pop(now.Add(movePairDelay)); ev != from || ev.Pair != nil {
		t.Fatalf("expected unpaired moved-from, got %v", ev)
	}
	if ev := q.pop(now.Add(movePairDelay)); ev != to {
		t.Fatalf("expected the moved-to event, got %v", ev)
	}
}
