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
Command navcli is a minimal cobra-based exerciser for debugcmd's
verbs, run against an in-memory fakehost.Host rather than a real
inferior process — enough to show the Manager API has a real textual
caller, not a production debugging tool.
*/
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"devt.de/krotik/lispnav/backtrace"
	"devt.de/krotik/lispnav/debugcmd"
	"devt.de/krotik/lispnav/hostdbg/fakehost"
	"devt.de/krotik/lispnav/navigator"
	"devt.de/krotik/lispnav/navmetrics"
	"devt.de/krotik/lispnav/util"
)

var (
	host  *fakehost.Host
	mgr   *navigator.Manager
	debug debugcmd.Debugger
)

var rootCmd = &cobra.Command{
	Use:   "navcli",
	Short: "navcli drives the Lisp navigation engine's verbs against an in-memory session",
}

func runVerb(name string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, ok := debugcmd.Commands[name]
		if !ok {
			return fmt.Errorf("navcli: no such command %q", name)
		}

		res, err := c.Run(debug, args)
		if err != nil {
			return err
		}
		if res == nil {
			return nil
		}

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
}

func init() {
	host = fakehost.New()
	backtrace.RegisterFilter(host)

	var err error
	mgr, err = navigator.Init(host, util.NewStdOutLogger(), navmetrics.NewNullRecorder(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "navcli: could not initialise navigator:", err)
		os.Exit(1)
	}
	debug = debugcmd.NewDebugger(mgr, host)

	for name, c := range debugcmd.Commands {
		rootCmd.AddCommand(&cobra.Command{
			Use:           name,
			Short:         c.DocString(),
			RunE:          runVerb(name),
			SilenceUsage:  true,
			SilenceErrors: false,
		})
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
