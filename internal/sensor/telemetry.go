package sensor

import (
	"math"
	"math/rand"

	"drivesim/internal/geom"
)

// Telemetry is a noisy GPS fix plus the longitudinal IMU acceleration
type Telemetry struct {
	GPS      geom.Vec2
	IMUAccel float64
}

// Positioning produces telemetry from the true vehicle state
type Positioning struct {
	GPSNoise float64 // uniform noise amplitude on each GPS axis
	IMUScale float64
	rng      *rand.Rand
}

// NewPositioning creates a positioning sensor drawing noise from rng
func NewPositioning(gpsNoise, imuScale float64, rng *rand.Rand) *Positioning {
	return &Positioning{GPSNoise: gpsNoise, IMUScale: imuScale, rng: rng}
}

// Read samples the sensor for the given true pose and acceleration
func (p *Positioning) Read(pos geom.Vec2, heading, accel float64) Telemetry {
	noise := func() float64 {
		return (p.rng.Float64()*2 - 1) * p.GPSNoise
	}
	t := Telemetry{GPS: geom.Vec2{X: pos.X + noise(), Y: pos.Y + noise()}}
	if p.IMUScale != 0 {
		t.IMUAccel = accel * math.Cos(heading) / p.IMUScale
	}
	return t
}
