// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

// A watch ties a watched directory to its kernel watch descriptor and the
// subscriptions interested in it. The descriptor is the authoritative
// identity of the directory; paths can go stale under renames.
type watch struct {
	path string
	wd   int32
	subs []*Subscription
}

// watchRegistry indexes active watches by path and by descriptor. All access
// happens under the monitor mutex.
type watchRegistry struct {
	byPath map[string]*watch
	byWD   map[int32]*watch
}

func newWatchRegistry() *watchRegistry {
	return &watchRegistry{
		byPath: make(map[string]*watch),
		byWD:   make(map[int32]*watch),
	}
}

// start makes sure the subscription's directory is watched and registers the
// subscription with it. It reports false when the kernel watch could not be
// established; the caller then falls back to the missing-path set.
func (r *watchRegistry) start(src Source, sub *Subscription) bool {
	w, ok := r.byPath[sub.dir]
	if !ok {
		wd, err := src.Watch(sub.dir, watchMask)
		if err != nil {
			l.Debugln("start watching", sub.dir, "failed:", err)
			return false
		}
		w = &watch{path: sub.dir, wd: wd}
		r.byPath[sub.dir] = w
		r.byWD[wd] = w
	}
	w.subs = append(w.subs, sub)
	return true
}

// stop deregisters the subscription. The kernel watch is dropped when the
// last subscription for the directory goes away.
func (r *watchRegistry) stop(src Source, sub *Subscription) {
	w, ok := r.byPath[sub.dir]
	if !ok {
		return
	}
	for i, s := range w.subs {
		if s == sub {
			last := len(w.subs) - 1
			w.subs[i] = w.subs[last]
			w.subs[last] = nil
			w.subs = w.subs[:last]
			break
		}
	}
	if len(w.subs) == 0 {
		if err := src.Ignore(w.wd); err != nil {
			l.Debugln("stop watching", w.path, "failed:", err)
		}
		delete(r.byPath, w.path)
		delete(r.byWD, w.wd)
	}
}

func (r *watchRegistry) get(wd int32) (*watch, bool) {
	w, ok := r.byWD[wd]
	return w, ok
}

// path resolves a watch descriptor back to its directory path.
func (r *watchRegistry) path(wd int32) (string, bool) {
	w, ok := r.byWD[wd]
	if !ok {
		return "", false
	}
	return w.path, true
}
