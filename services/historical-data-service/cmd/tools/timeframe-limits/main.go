// Command timeframe-limits prints the history limits per timeframe and checks
// date ranges against them.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var inputErr *inputError
		if errors.As(err, &inputErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
