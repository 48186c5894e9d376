package ur5

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	NumJoints  int = 6
	ActionDims int = NumJoints - 1 // wrist_3 is not actuated by the agent

	// ActionScale converts one unit of action into radians of joint
	// displacement
	ActionScale float64 = math.Pi / 36
)

// JointNames is the canonical joint order of the arm
var JointNames = [NumJoints]string{
	"shoulder_pan_joint",
	"shoulder_lift_joint",
	"elbow_joint",
	"wrist_1_joint",
	"wrist_2_joint",
	"wrist_3_joint",
}

// Names returns the canonical joint names, each prefixed by prefix
func Names(prefix string) []string {
	names := make([]string, NumJoints)
	for i, name := range JointNames {
		names[i] = prefix + name
	}
	return names
}

// JointConfiguration holds one angle in radians per joint, in the
// order of JointNames
type JointConfiguration [NumJoints]float64

// Home is the default home configuration of the arm, pointing
// straight up
var Home = JointConfiguration{0, -math.Pi / 2, 0, -math.Pi / 2, 0, 0}

// NewJointConfiguration returns the JointConfiguration stored in a
// slice, which must have exactly NumJoints elements
func NewJointConfiguration(angles []float64) (JointConfiguration, error) {
	var j JointConfiguration
	if len(angles) != NumJoints {
		return j, fmt.Errorf("newJointConfiguration: invalid number of "+
			"joints \n\thave(%v) \n\twant(%v)", len(angles), NumJoints)
	}
	copy(j[:], angles)
	return j, nil
}

// Advance returns the configuration reached by applying an action.
// The unactuated final joint receives a zero delta and all deltas are
// scaled by ActionScale. No joint limits are enforced.
func (j JointConfiguration) Advance(action mat.Vector) (JointConfiguration,
	error) {
	if action.Len() != ActionDims {
		return j, fmt.Errorf("advance: %w \n\thave(%v) \n\twant(%v)",
			ErrActionDims, action.Len(), ActionDims)
	}

	next := j
	for i := 0; i < ActionDims; i++ {
		next[i] += action.AtVec(i) * ActionScale
	}
	return next, nil
}
