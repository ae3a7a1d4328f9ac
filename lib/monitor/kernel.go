// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

import (
	"context"
	"errors"
	"time"
)

// Limits on how long, and how many interceding events, the moved-from half
// of a move is held back waiting for its moved-to counterpart.
const (
	movePairDelay    = 10 * time.Millisecond
	movePairDistance = 100
)

// Reads from the kernel descriptor outpace delivery under load; the buffer
// absorbs bursts so the reader goroutine rarely blocks.
const rawBuffer = 500

// ErrUnsupportedPlatform is returned by New on systems without a usable
// kernel change notification facility.
var ErrUnsupportedPlatform = errors.New("file system monitoring is not supported on this platform")

// Source delivers raw kernel events and manages kernel watches. The
// production implementation wraps an inotify descriptor; tests substitute a
// fake.
type Source interface {
	Serve(ctx context.Context) error
	Watch(path string, mask uint32) (int32, error)
	Ignore(wd int32) error
}

// eventQueue orders raw events for delivery and correlates the two halves
// of a move by cookie. Only an unpaired moved-from event at the head is held
// back, within the pairing limits; everything else is deliverable at once.
type eventQueue struct {
	events []*RawEvent
}

func (q *eventQueue) push(ev *RawEvent) {
	q.events = append(q.events, ev)
}

func (q *eventQueue) len() int {
	return len(q.events)
}

// ready reports whether the head event may be delivered at time now.
func (q *eventQueue) ready(now time.Time) bool {
	head := q.events[0]
	if head.Mask&InMovedFrom == 0 || head.Pair != nil {
		return true
	}
	if len(q.events) > movePairDistance {
		return true
	}
	return now.Sub(head.Time) >= movePairDelay
}

// tryPairHead searches the queue for the moved-to counterpart of the head
// and links the two. The counterpart leaves the queue; it is delivered as
// the head's pair, never on its own.
func (q *eventQueue) tryPairHead() {
	head := q.events[0]
	if head.Mask&InMovedFrom == 0 || head.Pair != nil {
		return
	}
	for i := 1; i < len(q.events); i++ {
		cand := q.events[i]
		if cand.Cookie == head.Cookie && cand.Mask&InMovedTo != 0 {
			q.events = append(q.events[:i], q.events[i+1:]...)
			head.Pair = cand
			cand.Pair = head
			return
		}
	}
}

// pop returns the head event if it may be delivered at time now, attempting
// to pair an unpaired moved-from head first. It returns nil when the queue
// is empty or the head is still waiting out the pairing window.
func (q *eventQueue) pop(now time.Time) *RawEvent {
	if len(q.events) == 0 {
		return nil
	}
	if !q.ready(now) {
		q.tryPairHead()
		if !q.ready(now) {
			return nil
		}
	}
	head := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]
	return head
}

// readyIn returns how long until the head event becomes deliverable, and
// whether there is a waiting head at all. Zero means deliverable now.
func (q *eventQueue) readyIn(now time.Time) (time.Duration, bool) {
	if len(q.events) == 0 {
		return 0, false
	}
	if q.ready(now) {
		return 0, true
	}
	return q.events[0].Time.Add(movePairDelay).Sub(now), true
}

// backend is the thin platform layer owning the kernel facility descriptor.
// read blocks until at least one event is available.
type backend interface {
	read() ([]*RawEvent, error)
	addWatch(path string, mask uint32) (int32, error)
	rmWatch(wd int32) error
	close() error
}

// kernelSource drains the kernel facility on a reader goroutine, runs the
// pairing queue, and hands deliverable events to the callback one at a
// time. The callback takes the monitor mutex itself; no lock is held while
// reading from the kernel.
type kernelSource struct {
	b  backend
	cb func(*RawEvent)
	q  eventQueue
}

func newKernelSource(cb func(*RawEvent)) (*kernelSource, error) {
	b, err := newBackend()
	if err != nil {
		return nil, err
	}
	return &kernelSource{b: b, cb: cb}, nil
}

func (s *kernelSource) String() string {
	return "monitor.kernelSource"
}

func (s *kernelSource) Watch(path string, mask uint32) (int32, error) {
	return s.b.addWatch(path, mask)
}

func (s *kernelSource) Ignore(wd int32) error {
	return s.b.rmWatch(wd)
}

func (s *kernelSource) Serve(ctx context.Context) error {
	raw := make(chan *RawEvent, rawBuffer)
	errc := make(chan error, 1)
	go s.readLoop(ctx, raw, errc)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		now := time.Now()
		for {
			ev := s.q.pop(now)
			if ev == nil {
				break
			}
			s.cb(ev)
		}

		var timeC <-chan time.Time
		if wait, ok := s.q.readyIn(time.Now()); ok {
			timer.Reset(wait)
			timeC = timer.C
		}

		select {
		case ev := <-raw:
			s.q.push(ev)
		case <-timeC:
			timeC = nil
		case err := <-errc:
			s.b.close()
			return err
		case <-ctx.Done():
			// Closing the descriptor unblocks the reader.
			s.b.close()
			return ctx.Err()
		}

		if timeC != nil && !timer.Stop() {
			<-timer.C
		}
	}
}

func (s *kernelSource) readLoop(ctx context.Context, raw chan<- *RawEvent, errc chan<- error) {
	for {
		evs, err := s.b.read()
		if err != nil {
			errc <- err
			return
		}
		for _, ev := range evs {
			select {
			case raw <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
