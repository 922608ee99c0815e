// Command towncore loads a town dataset into the registry and reports on it
// or serves it over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "towncore:", err)
		os.Exit(1)
	}
}
