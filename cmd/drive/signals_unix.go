//go:build unix

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"drivesim/internal/sim"
)

// forwardControls maps SIGUSR1 to a recording toggle, SIGUSR2 to a pause
// toggle and SIGHUP to a scenario reset
func forwardControls(ctx context.Context, commands chan<- sim.Command) {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigs)
		for {
			var cmd sim.Command
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				switch sig {
				case syscall.SIGUSR1:
					cmd = sim.ToggleRecord
				case syscall.SIGUSR2:
					cmd = sim.TogglePause
				default:
					cmd = sim.Reset
				}
			}
			select {
			case commands <- cmd:
			case <-ctx.Done():
				return
			default:
				log.Printf("control %v dropped, loop busy", cmd)
			}
		}
	}()
}
