// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package monitor converts low-level kernel change notifications into a
// small, stable set of high-level events and routes them to per-directory
// subscriptions.
package monitor

import (
	"context"
	"errors"
	stdsync "sync"

	"github.com/thejerf/suture/v4"

	"github.com/pathmon/pathmon/lib/sync"
)

// BufferSize is the per-subscription event channel depth. Events beyond it
// are dropped rather than blocking dispatch.
const BufferSize = 64

var errEmptyPath = errors.New("empty directory path")

// Monitor owns the subscription registries and drives event translation and
// dispatch. One coarse mutex covers the active-watch index, the missing-path
// index and the cancelled flags: dispatch must observe a consistent view of
// which subscriptions are live, and the critical sections are short.
type Monitor struct {
	*suture.Supervisor
	src     Source
	watches *watchRegistry
	missing *missingTracker
	mut     sync.Mutex
}

// New returns a monitor backed by the platform kernel facility. It fails
// when the facility is unavailable. Run the monitor by calling Serve, or by
// adding it to a supervisor.
func New() (*Monitor, error) {
	m := newMonitor()
	src, err := newKernelSource(m.onRawEvent)
	if err != nil {
		return nil, err
	}
	m.attach(src)
	return m, nil
}

func newMonitor() *Monitor {
	m := &Monitor{
		Supervisor: suture.New("monitor", suture.Spec{
			PassThroughPanics: true,
		}),
		watches: newWatchRegistry(),
		mut:     sync.NewMutex(),
	}
	m.missing = newMissingTracker(m)
	m.Add(m.missing)
	return m
}

func (m *Monitor) attach(src Source) {
	m.src = src
	m.Add(src)
}

// Subscribe registers interest in changes to entries under dir. When name is
// non-empty only events concerning that entry are delivered. A directory
// that cannot be watched yet, typically because it does not exist, is not an
// error: the subscription lands in the missing-path set and a Created event
// is synthesized once the path appears.
func (m *Monitor) Subscribe(dir, name string) (*Subscription, error) {
	if dir == "" {
		return nil, errEmptyPath
	}

	sub := &Subscription{
		dir:    dir,
		name:   name,
		events: make(chan Event, BufferSize),
	}

	m.mut.Lock()
	defer m.mut.Unlock()

	if !m.watches.start(m.src, sub) {
		m.missing.add(sub)
	}
	return sub, nil
}

// Unsubscribe cancels the subscription and closes its event channel. It is
// idempotent and never blocks on event delivery. Cancellation and dispatch
// exclude each other on the monitor mutex, so no event is delivered after
// Unsubscribe returns.
func (m *Monitor) Unsubscribe(sub *Subscription) {
	m.mut.Lock()
	defer m.mut.Unlock()

	if sub.cancelled {
		return
	}
	l.Debugln("cancelling subscription for", sub.dir)
	sub.cancelled = true
	m.missing.remove(sub)
	m.watches.stop(m.src, sub)
	close(sub.events)
}

// onRawEvent is the kernel source callback. For a correlated move pair only
// the moved-from half arrives here; a counterpart belonging to a different
// watched directory produces its own independent event from that
// directory's perspective.
func (m *Monitor) onRawEvent(ev *RawEvent) {
	m.mut.Lock()
	defer m.mut.Unlock()

	m.handleLocked(ev)
	if ev.Pair != nil && ev.Pair.WD != ev.WD {
		m.handleLocked(ev.Pair)
	}
}

func (m *Monitor) handleLocked(ev *RawEvent) {
	metricRawEventsTotal.Inc()

	w, ok := m.watches.get(ev.WD)
	if !ok {
		// The watch went away while the event was in flight.
		return
	}

	sev, ok := m.reconcileLocked(ev)
	if !ok {
		metricRawEventsUnsupportedTotal.Inc()
		return
	}

	l.Debugln("dispatching", sev.Type, "for", w.path, "name", sev.Name)
	for _, sub := range w.subs {
		if !sub.interested(sev) {
			continue
		}
		m.sendLocked(sub, sev)
	}
}

// sendLocked delivers the event to one subscription, fire and forget. The
// cancelled recheck happens under the same lock that Unsubscribe takes, so a
// racing canceller can never observe a delivery after its return.
func (m *Monitor) sendLocked(sub *Subscription, ev Event) {
	if sub.cancelled {
		return
	}
	select {
	case sub.events <- ev:
		metricEventsDispatchedTotal.Inc()
	default:
		// Slow consumer; dropping beats blocking the kernel drain.
		metricEventsDroppedTotal.Inc()
		l.Debugln("dropping event for slow subscriber of", sub.dir)
	}
}

// Subscription is one watch request: a directory, an optional entry name
// filter, and the channel events are delivered on.
type Subscription struct {
	dir       string
	name      string
	cancelled bool // monotonic false to true, guarded by the monitor mutex
	events    chan Event
}

// C returns the channel events are delivered on. It is closed when the
// subscription is cancelled.
func (s *Subscription) C() <-chan Event {
	return s.events
}

// Directory returns the watched directory path.
func (s *Subscription) Directory() string {
	return s.dir
}

// interested reports whether the event passes the subscription's filter. An
// empty filter matches every entry, including events for the directory
// itself. A named filter matches events carrying that entry name on either
// side of a rename.
func (s *Subscription) interested(ev Event) bool {
	if s.name == "" {
		return true
	}
	if ev.Name == s.name {
		return true
	}
	return ev.Type == Renamed && ev.OtherName == s.name
}

var (
	defaultMonitor *Monitor
	defaultErr     error
	defaultOnce    stdsync.Once
)

// Default returns the process-wide monitor, initializing and starting it on
// first call. The result of that one-time initialization is returned on
// every subsequent call.
func Default() (*Monitor, error) {
	defaultOnce.Do(func() {
		defaultMonitor, defaultErr = New()
		if defaultErr != nil {
			return
		}
		go defaultMonitor.Serve(context.Background())
	})
	return defaultMonitor, defaultErr
}
