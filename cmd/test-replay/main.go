// Command test-replay is a manual test for the framer and session. It
// feeds a captured Gadgetbridge byte stream through the same pipeline the
// BLE server uses, with dialogs going to the log and a silent motor.
//
// Usage:
//
//	go run ./cmd/test-replay [--chunk 20] [--ack] [capture.txt]
//
// With no file, stdin is read.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chaz8081/gbwatch/internal/ble/protocol"
	"github.com/chaz8081/gbwatch/internal/bridge"
	"github.com/chaz8081/gbwatch/internal/clock"
	"github.com/chaz8081/gbwatch/internal/haptic"
	"github.com/chaz8081/gbwatch/internal/notify"
	"github.com/chaz8081/gbwatch/internal/ui"
	"github.com/chaz8081/gbwatch/internal/watch"
)

func main() {
	chunk := flag.Int("chunk", protocol.DefaultChunkBytes, "bytes per simulated BLE write")
	ack := flag.Bool("ack", false, "acknowledge each dialog as soon as it is shown")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if *chunk <= 0 {
		*chunk = len(data)
	}

	events := watch.NewEventGroup()
	motor := &haptic.Silent{}
	surface := ui.NewLogUI()
	presenter := notify.NewPresenter(surface, watch.NewActuator(events, &watch.Display{}, motor))
	rtc := clock.NewRTC(nil)
	session := bridge.NewSession(presenter, rtc)
	framer := protocol.NewFramer(func(line string) {
		session.HandleMessage(line)
		if *ack {
			surface.AckCurrent()
		}
	})
	framer.OnError = func(err error) {
		fmt.Printf("Framer: %v\n", err)
	}

	fmt.Printf("Replaying %d bytes in %d-byte writes...\n", len(data), *chunk)
	for i := 0; i < len(data); i += *chunk {
		end := min(i+*chunk, len(data))
		framer.Feed(data[i:end])
	}
	if n := framer.Len(); n > 0 {
		fmt.Printf("%d bytes left unterminated\n", n)
	}

	st := session.Stats()
	fmt.Println()
	fmt.Printf("Frames:        %d\n", st.Frames)
	fmt.Printf("Notifications: %d\n", st.Notifications)
	fmt.Printf("Time syncs:    %d\n", st.TimeSyncs)
	fmt.Printf("Other:         %d\n", st.Other)
	fmt.Printf("Unhandled:     %d\n", st.Unhandled)
	fmt.Printf("Haptic pulses: %d\n", motor.Pulses())
	if st.TimeSyncs > 0 {
		fmt.Printf("RTC:           %s\n", rtc.Read().Format(time.DateTime))
	}
	if p := presenter.Pending(); presenter.State() == notify.Showing {
		fmt.Printf("On screen:     #%d from %s\n", p.ID, p.Source)
	}
}
