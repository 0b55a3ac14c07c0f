// Package main is the entry point for modbusdump, a passive Modbus/TCP sniffer.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/modbusdump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
