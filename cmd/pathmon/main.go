// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command pathmon monitors files and directories for changes and prints one
// line per event.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/pathmon/pathmon/lib/monitor"
)

type cli struct {
	Watch watchCmd `cmd:"" default:"withargs" help:"Monitor files and directories for changes"`
}

type watchCmd struct {
	Dirs  []string `name:"dir" short:"d" placeholder:"PATH" help:"Monitor a directory"`
	Files []string `name:"file" short:"f" placeholder:"PATH" help:"Monitor a single file within its directory"`
	Paths []string `arg:"" optional:"" help:"Paths to monitor (directory or file, detected automatically)"`
}

func main() {
	var params cli
	ctx := kong.Parse(&params)
	ctx.FatalIfErrorf(ctx.Run())
}

func (c *watchCmd) Run() error {
	if len(c.Dirs)+len(c.Files)+len(c.Paths) == 0 {
		return fmt.Errorf("must give at least one path to monitor")
	}

	m, err := monitor.New()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go m.Serve(ctx)

	for _, dir := range c.Dirs {
		if err := watchDir(m, dir); err != nil {
			return err
		}
	}
	for _, file := range c.Files {
		if err := watchFile(m, file); err != nil {
			return err
		}
	}
	for _, path := range c.Paths {
		// A path that does not exist yet is monitored as a directory; the
		// monitor picks it up once it appears.
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			err = watchFile(m, path)
			if err != nil {
				return err
			}
			continue
		}
		if err := watchDir(m, path); err != nil {
			return err
		}
	}

	<-ctx.Done()
	return nil
}

func watchDir(m *monitor.Monitor, dir string) error {
	sub, err := m.Subscribe(filepath.Clean(dir), "")
	if err != nil {
		return err
	}
	go printEvents(sub)
	return nil
}

func watchFile(m *monitor.Monitor, file string) error {
	file = filepath.Clean(file)
	sub, err := m.Subscribe(filepath.Dir(file), filepath.Base(file))
	if err != nil {
		return err
	}
	go printEvents(sub)
	return nil
}

func printEvents(sub *monitor.Subscription) {
	for ev := range sub.C() {
		fmt.Println(format(sub.Directory(), ev))
	}
}

func format(base string, ev monitor.Event) string {
	path := base
	if ev.Name != "" {
		path = filepath.Join(base, ev.Name)
	}
	switch ev.Type {
	case monitor.Changed:
		return path + ": changed"
	case monitor.ChangesDoneHint:
		return path + ": changes done"
	case monitor.AttributeChanged:
		return path + ": attributes changed"
	case monitor.Created:
		return path + ": created"
	case monitor.Deleted:
		return path + ": deleted"
	case monitor.Unmounted:
		return path + ": unmounted"
	case monitor.MovedIn:
		if ev.OtherLocation != "" {
			return fmt.Sprintf("%s: moved in (from %s)", path, ev.OtherLocation)
		}
		return path + ": moved in"
	case monitor.MovedOut:
		if ev.OtherLocation != "" {
			return fmt.Sprintf("%s: moved out (to %s)", path, ev.OtherLocation)
		}
		return path + ": moved out"
	case monitor.Renamed:
		return fmt.Sprintf("%s: renamed to %s", path, filepath.Join(base, ev.OtherName))
	default:
		return fmt.Sprintf("%s: %s", path, ev.Type)
	}
}
