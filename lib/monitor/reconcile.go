// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

// reconcileLocked turns a raw kernel event into the semantic event to
// dispatch for the directory owning ev.WD. Move events need extra care: a
// correlated pair with equal descriptors is a rename within one directory
// and yields a single Renamed event carrying both names, while anything else
// is a move in or out of the directory, with the counterpart location
// attached only when the other side is watched too. Pair recognition goes by
// descriptor equality alone, never by comparing path strings.
func (m *Monitor) reconcileLocked(ev *RawEvent) (Event, bool) {
	if ev.Mask&InMove != 0 {
		if ev.Pair != nil && ev.Pair.WD == ev.WD {
			return Event{
				Type:      Renamed,
				Name:      ev.Name,
				OtherName: ev.Pair.Name,
				Time:      ev.Time,
			}, true
		}

		kind, ok := classify(ev.Mask)
		if !ok {
			return Event{}, false
		}

		// An unresolvable counterpart, either because the pair timed out in
		// the correlation buffer or because its directory is not watched,
		// degrades the event rather than failing it.
		var other string
		if ev.Pair != nil {
			if dir, ok := m.watches.path(ev.Pair.WD); ok {
				other = fullpath(dir, ev.Pair.Name)
			}
		}
		return Event{
			Type:          kind,
			Name:          ev.Name,
			OtherLocation: other,
			Time:          ev.Time,
		}, true
	}

	kind, ok := classify(ev.Mask)
	if !ok {
		return Event{}, false
	}
	return Event{Type: kind, Name: ev.Name, Time: ev.Time}, true
}

func fullpath(dir, name string) string {
	if name == "" {
		return dir + "/"
	}
	return dir + "/" + name
}
