// Command test-hotkey is a manual test for the dismiss hotkey listener.
// Run it, then press Ctrl+Shift+D to see events.
// Press Ctrl+C to exit.
//
// Usage:
//
//	go run ./cmd/test-hotkey [--keys ctrl+shift+d]
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chaz8081/gbwatch/internal/hotkey"
)

func main() {
	combo := flag.String("keys", "ctrl+shift+d", "key combination, joined with +")
	flag.Parse()

	keys := strings.Split(*combo, "+")
	fmt.Printf("Listening for %s...\n", strings.Join(keys, "+"))
	fmt.Println("Press Ctrl+C to exit.")

	listener := hotkey.NewListener(keys)

	// Handle Ctrl+C
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\nShutting down...")
		listener.Stop()
	}()

	// Read events
	go func() {
		n := 0
		for ev := range listener.Events() {
			n++
			fmt.Printf(">>> DISMISS #%d (%s)\n", n, strings.Join(ev.Keys, "+"))
		}
		fmt.Println("Event channel closed.")
	}()

	// Blocks until stopped
	listener.Start()
	fmt.Println("Done.")
}
