package env

import (
	"math"

	"drivesim/internal/geom"
)

// Vehicle is the pose and kinematic state of the ego vehicle
type Vehicle struct {
	Pos     geom.Vec2
	Heading float64 // radians, 0 = +x
	Speed   float64 // [0, MaxSpeed]
	Accel   float64 // set by the last applied action
}

// Kinematics holds the per-action control constants
type Kinematics struct {
	MaxSpeed      float64
	TurnRate      float64 // rad/s while evading
	EvadeAccel    float64
	BrakeAccel    float64
	CruiseAccel   float64 // continue, road clear beyond FarDistance
	CoastAccel    float64 // continue, clear beyond NearDistance
	ApproachAccel float64 // continue, obstacle within NearDistance
	FarDistance   float64
	NearDistance  float64
	CenteringGain float64 // fraction of the heading error removed per tick
}

// Apply steers the vehicle for action a, then integrates speed and position
// over dt. center is the nearest distance in the center sensor zone.
func (k Kinematics) Apply(v Vehicle, a Action, center, dt float64) Vehicle {
	switch a {
	case ActionEvadeLeft:
		v.Heading -= k.TurnRate * dt
		v.Accel = k.EvadeAccel
	case ActionEvadeRight:
		v.Heading += k.TurnRate * dt
		v.Accel = k.EvadeAccel
	case ActionBrake:
		v.Accel = k.BrakeAccel
	case ActionContinue:
		switch {
		case center > k.FarDistance:
			v.Accel = k.CruiseAccel
		case center > k.NearDistance:
			v.Accel = k.CoastAccel
		default:
			v.Accel = k.ApproachAccel
		}
		v.Heading += (0 - v.Heading) * k.CenteringGain
	}
	return k.Integrate(v, dt)
}

// Integrate advances speed (clamped to [0, MaxSpeed]) and position
func (k Kinematics) Integrate(v Vehicle, dt float64) Vehicle {
	v.Speed = math.Max(0, math.Min(k.MaxSpeed, v.Speed+v.Accel*dt))
	v.Pos = v.Pos.Add(geom.Heading(v.Heading).Scale(v.Speed * dt))
	return v
}
