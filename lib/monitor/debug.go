// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

import (
	"os"
	"strings"

	"github.com/pathmon/pathmon/lib/logger"
)

var (
	l = logger.DefaultLogger.NewFacility("monitor", "Event translation and dispatch")
)

func init() {
	l.SetDebug("monitor", strings.Contains(os.Getenv("PMTRACE"), "monitor") || os.Getenv("PMTRACE") == "all")
}
