// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

// classify maps a raw kernel mask to the corresponding event type. The
// is-directory bit does not influence the mapping and is stripped first.
// The second return is false for masks that carry no event for subscribers
// (queue overflow, open, close-no-write, access, ignored and anything
// unknown); the caller drops those without emitting.
func classify(mask uint32) (EventType, bool) {
	switch mask &^ InIsDir {
	case InModify:
		return Changed, true
	case InCloseWrite:
		return ChangesDoneHint, true
	case InAttrib:
		return AttributeChanged, true
	case InMoveSelf, InDelete, InDeleteSelf:
		return Deleted, true
	case InCreate:
		return Created, true
	case InMovedFrom:
		return MovedOut, true
	case InMovedTo:
		return MovedIn, true
	case InUnmount:
		return Unmounted, true
	default:
		return 0, false
	}
}
