package drone

import "math"

const (
	gravity  = 9.81  // m/s²
	liftGain = 0.25  // thrust per throttle percent
	tiltLoss = 0.005 // lift attenuation per degree of combined tilt
)

// Integrate advances the simplified vertical rigid-body model by dt
// seconds. Lift scales with throttle and is attenuated by combined pitch
// and roll tilt; the attenuation factor is clamped to [0, 1] so extreme
// attitudes cannot produce negative or amplified lift. Altitude is clamped
// to the ground with velocity zeroed on contact.
func Integrate(att *Attitude, dt float64) {
	tilt := 1 - tiltLoss*(math.Abs(att.Pitch)+math.Abs(att.Roll))
	tilt = math.Min(1, math.Max(0, tilt))

	accel := att.Throttle*liftGain*tilt - gravity
	att.Velocity += accel * dt
	att.Altitude += att.Velocity * dt

	if att.Altitude < 0 {
		att.Altitude = 0
		att.Velocity = 0
	}
}

// CutActuation zeroes every control input, leaving only the passive motion
// state. Used when the failsafe engages.
func CutActuation(att *Attitude) {
	att.Throttle = 0
	att.Pitch = 0
	att.Roll = 0
}
