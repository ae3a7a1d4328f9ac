// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

import (
	"context"
	"os"
	"time"
)

const missingScanInterval = 4 * time.Second

// missingTracker holds subscriptions whose directories could not be watched
// when they were added and periodically rechecks whether they have become
// watchable. The subscription list is guarded by the monitor mutex, same as
// the active-watch index: a subscription is in at most one of the two sets.
type missingTracker struct {
	m    *Monitor
	subs []*Subscription
}

func newMissingTracker(m *Monitor) *missingTracker {
	return &missingTracker{m: m}
}

func (t *missingTracker) String() string {
	return "monitor.missingTracker"
}

func (t *missingTracker) Serve(ctx context.Context) error {
	ticker := time.NewTicker(missingScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.scan()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// add and remove are called with the monitor mutex held.

func (t *missingTracker) add(sub *Subscription) {
	l.Debugln("tracking missing path", sub.dir)
	t.subs = append(t.subs, sub)
}

func (t *missingTracker) remove(sub *Subscription) {
	for i, s := range t.subs {
		if s == sub {
			last := len(t.subs) - 1
			t.subs[i] = t.subs[last]
			t.subs[last] = nil
			t.subs = t.subs[:last]
			return
		}
	}
}

// scan moves now-existing paths back to the active watch set. Each one is
// announced with a single synthesized Created event to its own subscription;
// other subscribers of the same directory were never in the missing set and
// hear nothing.
func (t *missingTracker) scan() {
	t.m.mut.Lock()
	defer t.m.mut.Unlock()

	kept := t.subs[:0]
	for _, sub := range t.subs {
		if sub.cancelled {
			continue
		}
		if _, err := os.Lstat(sub.dir); err != nil {
			kept = append(kept, sub)
			continue
		}

		l.Debugln("missing path appeared:", sub.dir)
		t.m.sendLocked(sub, Event{
			Type: Created,
			Name: sub.name,
			Time: time.Now(),
		})
		if !t.m.watches.start(t.m.src, sub) {
			// The path raced away again; keep polling.
			kept = append(kept, sub)
		}
	}
	for i := len(kept); i < len(t.subs); i++ {
		t.subs[i] = nil
	}
	t.subs = kept
}
