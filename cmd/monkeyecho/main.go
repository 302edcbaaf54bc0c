// monkeyecho is a stand-in application under test. It answers every event
// packet read from stdin with the same event on stdout.
package main

import (
	"fmt"
	"os"

	"github.com/danmuck/monkeywire/internal/config"
	"github.com/danmuck/monkeywire/internal/logging"
	"github.com/danmuck/monkeywire/internal/monkey"
	"github.com/spf13/pflag"
)

func main() {
	logging.ConfigureRuntime()
	maxPending := pflag.Int("max-pending", config.DefaultMaxPendingBytes, "max unparsed bytes held from stdin; 0 is unbounded")
	pflag.Parse()
	if *maxPending < 0 {
		fmt.Fprintf(os.Stderr, "monkeyecho: --max-pending must not be negative\n")
		os.Exit(2)
	}
	if err := monkey.Echo(os.Stdin, os.Stdout, *maxPending); err != nil {
		fmt.Fprintf(os.Stderr, "monkeyecho: %v\n", err)
		os.Exit(1)
	}
}
