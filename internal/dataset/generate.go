package dataset

import (
	"fmt"
	"math/rand"

	"drivesim/internal/env"
)

type zoneMask uint8

const (
	zoneLeft zoneMask = 1 << iota
	zoneCenter
	zoneRight
)

// pattern describes one family of synthetic readings: which thirds of the
// fan are blocked, how close the blocking obstacle is and what the right
// response is
type pattern struct {
	action  env.Action
	blocked zoneMask
	near    int
	far     int // exclusive
	count   int
}

var patterns = []pattern{
	{action: env.ActionContinue, count: 50},
	{action: env.ActionBrake, blocked: zoneCenter, near: 50, far: 100, count: 10},
	{action: env.ActionEvadeLeft, blocked: zoneCenter | zoneRight, near: 50, far: 150, count: 20},
	{action: env.ActionEvadeRight, blocked: zoneCenter | zoneLeft, near: 50, far: 150, count: 20},
	{action: env.ActionEvadeRight, blocked: zoneLeft, near: 50, far: 150, count: 10},
	{action: env.ActionEvadeLeft, blocked: zoneRight, near: 50, far: 150, count: 10},
}

// Generator produces labelled samples without running the simulation
type Generator struct {
	rays     int
	maxRange float64
	maxSpeed float64
	rng      *rand.Rand
}

// NewGenerator creates a generator for a fan of rays sensor rays
func NewGenerator(rays int, maxRange, maxSpeed float64, rng *rand.Rand) (*Generator, error) {
	if rays < 3 {
		return nil, fmt.Errorf("dataset: need at least 3 rays, got %d", rays)
	}
	if maxRange <= 0 {
		return nil, fmt.Errorf("dataset: max range must be positive, got %v", maxRange)
	}
	return &Generator{rays: rays, maxRange: maxRange, maxSpeed: maxSpeed, rng: rng}, nil
}

// PatternSize is the number of samples one repetition of Generate produces
func PatternSize() int {
	n := 0
	for _, p := range patterns {
		n += p.count
	}
	return n
}

// Generate returns repeat copies of every pattern family
func (g *Generator) Generate(repeat int) []Sample {
	out := make([]Sample, 0, repeat*PatternSize())
	for r := 0; r < repeat; r++ {
		for _, p := range patterns {
			for i := 0; i < p.count; i++ {
				out = append(out, g.sample(p))
			}
		}
	}
	return out
}

func (g *Generator) sample(p pattern) Sample {
	third := g.rays / 3
	rays := make([]float64, g.rays)
	for i := range rays {
		rays[i] = g.maxRange
		var zone zoneMask
		switch {
		case i < third:
			zone = zoneLeft
		case i < 2*third:
			zone = zoneCenter
		default:
			zone = zoneRight
		}
		if p.blocked&zone != 0 {
			d := float64(p.near + g.rng.Intn(p.far-p.near))
			if d < g.maxRange {
				rays[i] = d
			}
		}
	}
	return Sample{
		Rays:   rays,
		Speed:  Round1(g.rng.Float64() * g.maxSpeed),
		Action: p.action,
	}
}
