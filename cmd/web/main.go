// Command web runs the call reporting dashboard HTTP server.
package main

import (
	"fmt"
	"os"

	"callpulse/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "callpulse: %v\n", err)
		os.Exit(1)
	}
}
