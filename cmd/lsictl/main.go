// Command lsictl scores learning style questionnaires offline and inspects
// classifier artifacts.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
