package main

import (
	"os"

	"github.com/finboard/ledger-engine/cmd/ledgerd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
