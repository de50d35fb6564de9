package drone

import (
	"math"
	"testing"
)

func TestIntegrate_ClimbsUnderThrottle(t *testing.T) {
	// Full throttle, level attitude: lift (25 m/s²) beats gravity.
	att := Attitude{Throttle: 100}

	for i := 0; i < 100; i++ {
		Integrate(&att, 0.01)
	}

	if att.Altitude <= 0 {
		t.Errorf("Expected positive altitude under full throttle, got %.3f", att.Altitude)
	}
	if att.Velocity <= 0 {
		t.Errorf("Expected positive climb rate under full throttle, got %.3f", att.Velocity)
	}
}

func TestIntegrate_GroundClamp(t *testing.T) {
	testCases := []struct {
		name string
		att  Attitude
	}{
		{"free fall from rest", Attitude{Altitude: 0.001}},
		{"descending through ground", Attitude{Altitude: 0.01, Velocity: -5}},
		{"idle on the ground", Attitude{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			att := tc.att
			for i := 0; i < 200; i++ {
				Integrate(&att, 0.01)

				if att.Altitude < 0 {
					t.Fatalf("Altitude went negative: %.6f", att.Altitude)
				}
			}

			if att.Altitude != 0 {
				t.Errorf("Expected drone settled on the ground, altitude %.6f", att.Altitude)
			}
			if att.Velocity != 0 {
				t.Errorf("Expected velocity zeroed on ground contact, got %.6f", att.Velocity)
			}
		})
	}
}

func TestIntegrate_TiltAttenuatesLift(t *testing.T) {
	level := Attitude{Throttle: 100}
	tilted := Attitude{Throttle: 100, Pitch: 15, Roll: 15}

	Integrate(&level, 0.01)
	Integrate(&tilted, 0.01)

	if tilted.Velocity >= level.Velocity {
		t.Errorf("Tilted airframe should climb slower: level %.4f, tilted %.4f",
			level.Velocity, tilted.Velocity)
	}
}

func TestIntegrate_TiltFactorClamped(t *testing.T) {
	// Combined tilt beyond 200 degrees would make the raw attenuation
	// factor negative; clamped to zero it leaves gravity as the only force.
	att := Attitude{Throttle: 100, Pitch: 150, Roll: 150, Altitude: 100}

	Integrate(&att, 0.01)

	wantVelocity := -gravity * 0.01
	if math.Abs(att.Velocity-wantVelocity) > 1e-9 {
		t.Errorf("Expected pure gravity acceleration %.4f, got velocity %.4f", wantVelocity, att.Velocity)
	}
}

func TestCutActuation(t *testing.T) {
	att := Attitude{Throttle: 80, Pitch: 15, Roll: -15, Yaw: 90, Altitude: 12, Velocity: 1.5}

	CutActuation(&att)

	if att.Throttle != 0 || att.Pitch != 0 || att.Roll != 0 {
		t.Errorf("Control inputs not zeroed: %+v", att)
	}
	if att.Altitude != 12 || att.Velocity != 1.5 || att.Yaw != 90 {
		t.Errorf("Passive motion state should be untouched: %+v", att)
	}
}
