// Command inkplay is a reference host for the ink runtime: it loads a
// compiled story and either plays it interactively on stdin/stdout or
// dumps its container tree for debugging.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
