// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		mask uint32
		want EventType
	}{
		{InModify, Changed},
		{InCloseWrite, ChangesDoneHint},
		{InAttrib, AttributeChanged},
		{InMoveSelf, Deleted},
		{InDelete, Deleted},
		{InDeleteSelf, Deleted},
		{InCreate, Created},
		{InMovedFrom, MovedOut},
		{InMovedTo, MovedIn},
		{InUnmount, Unmounted},
		// The directory bit never changes the outcome.
		{InModify | InIsDir, Changed},
		{InCreate | InIsDir, Created},
		{InMovedFrom | InIsDir, MovedOut},
	}

	for _, tc := range cases {
		got, ok := classify(tc.mask)
		if !ok {
			t.Errorf("classify(%#x): unexpectedly unsupported", tc.mask)
			continue
		}
		if got != tc.want {
			t.Errorf("classify(%#x) == %v, expected %v", tc.mask, got, tc.want)
		}
	}
}

func TestClassifyUnsupported(t *testing.T) {
	for _, mask := range []uint32{
		InQOverflow,
		InOpen,
		InCloseNoWrite,
		InAccess,
		InIgnored,
		InIgnored | InIsDir,
		0,
		0x00100000, // unknown bit
	} {
		if got, ok := classify(mask); ok {
			t.Errorf("classify(%#x) == %v, expected unsupported", mask, got)
		}
	}
}
