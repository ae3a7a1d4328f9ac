// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

import "time"

// Raw event mask bits, mirroring the kernel inotify ABI. Declared here
// rather than taken from the syscall package so that the translation layer
// compiles and tests on every platform.
const (
	InAccess       uint32 = 0x00000001
	InModify       uint32 = 0x00000002
	InAttrib       uint32 = 0x00000004
	InCloseWrite   uint32 = 0x00000008
	InCloseNoWrite uint32 = 0x00000010
	InOpen         uint32 = 0x00000020
	InMovedFrom    uint32 = 0x00000040
	InMovedTo      uint32 = 0x00000080
	InCreate       uint32 = 0x00000100
	InDelete       uint32 = 0x00000200
	InDeleteSelf   uint32 = 0x00000400
	InMoveSelf     uint32 = 0x00000800
	InUnmount      uint32 = 0x00002000
	InQOverflow    uint32 = 0x00004000
	InIgnored      uint32 = 0x00008000
	InIsDir        uint32 = 0x40000000

	InMove = InMovedFrom | InMovedTo
)

// watchMask is what we ask the kernel for on every watched directory.
const watchMask = InModify | InAttrib | InMovedFrom | InMovedTo | InDelete |
	InCreate | InDeleteSelf | InUnmount | InMoveSelf | InCloseWrite

// RawEvent is a single kernel notification. Name is the entry the event
// concerns within the watched directory, empty when the event concerns the
// directory itself. Two events sharing a nonzero Cookie are the two halves
// of a move; once the source has correlated them Pair links them both ways
// and only the moved-from half is delivered.
type RawEvent struct {
	WD     int32
	Mask   uint32
	Cookie uint32
	Name   string
	Time   time.Time
	Pair   *RawEvent
}
