//go:build !unix

package main

import (
	"context"

	"drivesim/internal/sim"
)

// forwardControls is a no-op where the control signals do not exist
func forwardControls(context.Context, chan<- sim.Command) {}
