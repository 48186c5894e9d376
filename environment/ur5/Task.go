package ur5

import (
	"fmt"

	"github.com/samuelfneumann/ur5reach/environment"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
)

// Reward shaping constants of the Reach task
const (
	GoalThreshold      float64 = 0.15 // Success radius around the goal
	DwellThreshold     int     = 20   // Steps in the goal before it is solved
	CollisionThreshold float64 = 0.1  // Minimum wrist_1 to shoulder distance

	DwellBonus      float64 = 1.0
	SolvedBonus     float64 = 10.0
	CollisionReward float64 = -1.0
)

// EpisodeState is the mutable state of a single episode. It is owned
// by exactly one environment.
type EpisodeState struct {
	Joints JointConfiguration
	Goal   Pose

	// Counter counts consecutive credited steps within GoalThreshold
	Counter int

	// Solved is set once Counter exceeds DwellThreshold and cleared
	// when the end effector leaves the goal
	Solved bool
}

// Outcome is the result of evaluating one step of the Reach task
type Outcome struct {
	Reward   float64
	Terminal bool
	Reached  bool
}

// Reach implements the Reach task. In this task the end effector of the
// arm must be brought within GoalThreshold of a goal and held there.
//
// Each step is penalized by the distance to the goal and by the
// magnitude of the action. Every step spent inside the goal region
// earns DwellBonus, and staying for more than DwellThreshold
// consecutive steps earns a one-time SolvedBonus, after which the goal
// is solved and no further dwell bonuses are paid until the end effector
// leaves and re-enters the goal region. Leaving the goal region resets
// the dwell counter and the solved flag, but never revokes bonuses
// already paid.
//
// If wrist_1 comes within CollisionThreshold of the shoulder the
// episode terminates with reward CollisionReward, regardless of any
// other reward earned on that step.
//
// Goals are sampled uniformly from a box centred on a base goal.
type Reach struct {
	environment.Ender
	starter *environment.UniformStarter
	base    r3.Vec
	bounds  r3.Vec
}

// NewReach returns a new Reach task sampling goals within bounds of
// base. Episodes are cut off after cutoff steps if cutoff is positive.
func NewReach(base, bounds r3.Vec, seed uint64, cutoff int) *Reach {
	intervals := []r1.Interval{
		{Min: base.X - bounds.X, Max: base.X + bounds.X},
		{Min: base.Y - bounds.Y, Max: base.Y + bounds.Y},
		{Min: base.Z - bounds.Z, Max: base.Z + bounds.Z},
	}

	return &Reach{
		Ender:   environment.NewStepLimit(cutoff),
		starter: environment.NewUniformStarter(intervals, seed),
		base:    base,
		bounds:  bounds,
	}
}

// Start returns a new goal position as an (x, y, z) vector
func (r *Reach) Start() *mat.VecDense {
	return r.starter.Start()
}

// SampleGoal returns a new goal position
func (r *Reach) SampleGoal() r3.Vec {
	goal := r.Start()
	return r3.Vec{X: goal.AtVec(0), Y: goal.AtVec(1), Z: goal.AtVec(2)}
}

// GoalRegion returns the box that goals are sampled from
func (r *Reach) GoalRegion() (min, max r3.Vec) {
	return r3.Sub(r.base, r.bounds), r3.Add(r.base, r.bounds)
}

// AtGoal returns whether the (x, y, z) displacement of the end effector
// from the goal, given as a 3 x 1 matrix, lies within GoalThreshold.
func (r *Reach) AtGoal(state mat.Matrix) bool {
	rows, c := state.Dims()
	if c != 1 || rows != 3 {
		panic(fmt.Sprintf("atGoal: argument state should be (x, y, z) "+
			"displacement from the goal, got %v x %v", rows, c))
	}
	return mat.Norm(state, 2) < GoalThreshold
}

// Evaluate computes the reward and termination of a step, updating the
// dwell counter and solved flag of state. The argument pos is the end
// effector position in the world frame and collision is the position of
// wrist_1 relative to the shoulder.
func (r *Reach) Evaluate(state *EpisodeState, pos, collision r3.Vec,
	action mat.Vector) Outcome {
	dis := r3.Norm(r3.Sub(state.Goal.Position, pos))

	var out Outcome
	out.Reward = -dis/100 - mat.Norm(action, 2)/1000

	if dis < GoalThreshold {
		if !state.Solved {
			out.Reward += DwellBonus
			out.Reached = true
			state.Counter++

			if state.Counter > DwellThreshold {
				out.Reward += SolvedBonus
				state.Solved = true
			}
		}
	} else {
		state.Counter = 0
		state.Solved = false
	}

	// Collisions override everything computed above
	if r3.Norm(collision) < CollisionThreshold {
		out.Terminal = true
		out.Reward = CollisionReward
		out.Reached = false
	}

	return out
}
