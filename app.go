// Command whackerhero renders MIDI files as falling-note Boomwhacker videos.
//
// Usage:
//
//	whackerhero [flags] <midi> [dest]
//
// Commands:
//
//	snapshot   - Render a single frame as PNG
//	serve      - Serve a form to start renders from a browser
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"whackerhero/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
