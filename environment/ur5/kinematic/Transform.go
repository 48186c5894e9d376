package kinematic

import (
	"math"

	"github.com/samuelfneumann/ur5reach/environment/ur5"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// dh returns the homogeneous transform of one Denavit-Hartenberg link,
// Rz(θ) Tz(d) Tx(a) Rx(α)
func dh(theta, d, a, alpha float64) *mat.Dense {
	ct, st := math.Cos(theta), math.Sin(theta)
	ca, sa := math.Cos(alpha), math.Sin(alpha)

	return mat.NewDense(4, 4, []float64{
		ct, -st * ca, st * sa, a * ct,
		st, ct * ca, -ct * sa, a * st,
		0, sa, ca, d,
		0, 0, 0, 1,
	})
}

// translation returns a homogeneous transform translating by p
func translation(p r3.Vec) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, p.X,
		0, 1, 0, p.Y,
		0, 0, 1, p.Z,
		0, 0, 0, 1,
	})
}

// poseOf extracts the position and roll-pitch-yaw orientation of a
// homogeneous transform
func poseOf(tf mat.Matrix) ur5.Pose {
	position := r3.Vec{X: tf.At(0, 3), Y: tf.At(1, 3), Z: tf.At(2, 3)}

	roll := math.Atan2(tf.At(2, 1), tf.At(2, 2))
	pitch := math.Atan2(-tf.At(2, 0),
		math.Hypot(tf.At(2, 1), tf.At(2, 2)))
	yaw := math.Atan2(tf.At(1, 0), tf.At(0, 0))

	return ur5.Pose{
		Position:    position,
		Orientation: r3.Vec{X: roll, Y: pitch, Z: yaw},
	}
}
