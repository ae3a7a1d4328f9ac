// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

import "time"

type EventType int

const (
	Changed EventType = 1 << iota
	ChangesDoneHint
	AttributeChanged
	Created
	Deleted
	MovedIn
	MovedOut
	Renamed
	Unmounted

	AllEvents = (1 << iota) - 1
)

func (t EventType) String() string {
	switch t {
	case Changed:
		return "Changed"
	case ChangesDoneHint:
		return "ChangesDoneHint"
	case AttributeChanged:
		return "AttributeChanged"
	case Created:
		return "Created"
	case Deleted:
		return "Deleted"
	case MovedIn:
		return "MovedIn"
	case MovedOut:
		return "MovedOut"
	case Renamed:
		return "Renamed"
	case Unmounted:
		return "Unmounted"
	default:
		return "Unknown"
	}
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Event is the high-level notification delivered to subscribers.
//
// Name is the entry name within the watched directory, empty when the event
// concerns the directory itself. OtherName is the new entry name and is set
// for Renamed only. OtherLocation is the full path of the counterpart entry
// and is set for MovedIn/MovedOut when the other side of the move is watched
// too. At most one of OtherName and OtherLocation is set.
type Event struct {
	Type          EventType `json:"type"`
	Name          string    `json:"name,omitempty"`
	OtherName     string    `json:"otherName,omitempty"`
	OtherLocation string    `json:"otherLocation,omitempty"`
	Time          time.Time `json:"time"`
}
