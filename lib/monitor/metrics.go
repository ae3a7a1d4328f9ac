// Copyright (C) 2024 The Pathmon Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRawEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pathmon",
		Subsystem: "monitor",
		Name:      "raw_events_total",
		Help:      "Raw kernel events received",
	})
	metricRawEventsUnsupportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pathmon",
		Subsystem: "monitor",
		Name:      "raw_events_unsupported_total",
		Help:      "Raw kernel events without a high-level interpretation",
	})
	metricEventsDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pathmon",
		Subsystem: "monitor",
		Name:      "events_dispatched_total",
		Help:      "Events delivered to subscriptions",
	})
	metricEventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pathmon",
		Subsystem: "monitor",
		Name:      "events_dropped_total",
		Help:      "Events dropped due to a full subscription buffer",
	})
)
