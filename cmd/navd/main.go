/*
 * LispNav
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

/*
Command navd is a reference host adapter: it wires a navigator.Manager
and a backtrace frame filter onto an in-memory fakehost.Host and prints
every engine log line through a structured zap logger, to show what a
real host-debugger process embedding this engine would set up at
startup. It never touches a real inferior process.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"devt.de/krotik/lispnav/backtrace"
	"devt.de/krotik/lispnav/config"
	"devt.de/krotik/lispnav/hostdbg/fakehost"
	"devt.de/krotik/lispnav/navigator"
	"devt.de/krotik/lispnav/navmetrics"
	"devt.de/krotik/lispnav/util"
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "navd: could not build zap logger:", err)
		os.Exit(1)
	}
	defer zl.Sync()

	log := util.NewZapLogger(zl)

	host := fakehost.New()
	backtrace.RegisterFilter(host)

	m, err := navigator.Init(host, log, navmetrics.NewNullRecorder(), nil)
	if err != nil {
		log.LogError(err)
		os.Exit(1)
	}
	defer m.Teardown()

	log.LogInfo(fmt.Sprintf("navd: session %s ready", m.ID))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	poll := time.Duration(config.Int(config.RecoveryPollMillis)) * time.Millisecond
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			log.LogInfo("navd: shutting down")
			return
		case <-ticker.C:
			// Nothing to drain on the in-memory host; a real adapter
			// would pump its debugger's event queue here and dispatch
			// inferior stops into the subscribed callback.
		}
	}
}
