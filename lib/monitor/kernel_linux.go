// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build linux

package monitor

import (
	"fmt"
	stdsync "sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// inotifyBackend owns the inotify descriptor. Reads and watch manipulation
// may happen from different goroutines; the kernel serializes them.
type inotifyBackend struct {
	fd        int
	buf       [unix.SizeofInotifyEvent + unix.NAME_MAX + 1]byte
	closeOnce stdsync.Once
	closeErr  error
}

func newBackend() (backend, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify init: %w", err)
	}
	return &inotifyBackend{fd: fd}, nil
}

func (b *inotifyBackend) read() ([]*RawEvent, error) {
	var n int
	var err error
	for {
		n, err = unix.Read(b.fd, b.buf[:])
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("inotify read: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("inotify read: unexpected EOF")
	}

	now := time.Now()
	var evs []*RawEvent
	for offset := 0; offset < n; {
		sys := (*unix.InotifyEvent)(unsafe.Pointer(&b.buf[offset]))
		name := ""
		if sys.Len > 0 {
			bs := b.buf[offset+unix.SizeofInotifyEvent : offset+unix.SizeofInotifyEvent+int(sys.Len)]
			// The kernel pads the name with NULs to the event length.
			for i, c := range bs {
				if c == 0 {
					bs = bs[:i]
					break
				}
			}
			name = string(bs)
		}
		evs = append(evs, &RawEvent{
			WD:     sys.Wd,
			Mask:   sys.Mask,
			Cookie: sys.Cookie,
			Name:   name,
			Time:   now,
		})
		offset += unix.SizeofInotifyEvent + int(sys.Len)
	}
	return evs, nil
}

func (b *inotifyBackend) addWatch(path string, mask uint32) (int32, error) {
	wd, err := unix.InotifyAddWatch(b.fd, path, mask)
	if err != nil {
		return 0, fmt.Errorf("watch %s: %w", path, err)
	}
	return int32(wd), nil
}

func (b *inotifyBackend) rmWatch(wd int32) error {
	if _, err := unix.InotifyRmWatch(b.fd, uint32(wd)); err != nil {
		return fmt.Errorf("remove watch %d: %w", wd, err)
	}
	return nil
}

func (b *inotifyBackend) close() error {
	b.closeOnce.Do(func() {
		b.closeErr = unix.Close(b.fd)
	})
	return b.closeErr
}
