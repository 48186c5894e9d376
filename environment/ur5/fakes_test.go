package ur5

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

type execCall struct {
	joints []string
	points []Waypoint
}

type fakeExecutor struct {
	mu       sync.Mutex
	readyErr error
	block    bool
	execErr  error
	calls    []execCall
}

func (f *fakeExecutor) WaitReady(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.readyErr
}

func (f *fakeExecutor) Execute(_ context.Context, joints []string,
	points []Waypoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.execErr != nil {
		return f.execErr
	}
	f.calls = append(f.calls, execCall{joints, points})
	return nil
}

func (f *fakeExecutor) last() execCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// fakePoses serves fixed poses keyed by target and reference. The
// first notReady lookups fail with ErrFrameNotReady.
type fakePoses struct {
	mu       sync.Mutex
	poses    map[string]Pose
	notReady int
	lookups  int
	err      error
}

func newFakePoses() *fakePoses {
	p := &fakePoses{poses: map[string]Pose{}}
	p.set(ForearmLink, WorldFrame, r3.Vec{X: 0, Y: 0, Z: 1})
	p.set(EndEffectorLink, WorldFrame, r3.Vec{X: 0, Y: 0, Z: 2})
	p.set(Wrist1Link, ShoulderLink, r3.Vec{X: 0, Y: 0, Z: 0.8})
	return p
}

func (f *fakePoses) set(target, reference string, pos r3.Vec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.poses[target+"|"+reference] = Pose{Position: pos}
}

func (f *fakePoses) Lookup(_ context.Context, target,
	reference string) (Pose, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return Pose{}, f.err
	}
	if f.notReady > 0 {
		f.notReady--
		return Pose{}, ErrFrameNotReady
	}
	p, ok := f.poses[target+"|"+reference]
	if !ok {
		return Pose{}, fmt.Errorf("%w: %v", ErrFrameNotReady, target)
	}
	return p, nil
}

type fakeWorld struct {
	ids   []string
	poses []Pose
	err   error
}

func (f *fakeWorld) Replace(_ context.Context, id string, pose Pose) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	f.poses = append(f.poses, pose)
	return nil
}
