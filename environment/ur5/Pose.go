package ur5

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// awaitPose looks up the pose of target relative to reference,
// retrying with exponential backoff until the lookup succeeds, the
// pose timeout elapses, or ctx is done. All lookup errors are retried;
// only ErrFrameNotReady is considered routine.
func (u *UR5) awaitPose(ctx context.Context, target,
	reference string) (Pose, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.cfg.PoseRetryInitial
	b.MaxInterval = u.cfg.PoseRetryMax
	b.MaxElapsedTime = u.cfg.PoseTimeout

	var pose Pose
	attempts := 0
	operation := func() error {
		attempts++
		p, err := u.poses.Lookup(ctx, target, reference)
		if err != nil {
			if errors.Is(err, ErrFrameNotReady) {
				u.logger.Debug("Frame not ready, retrying",
					zap.String("target", target),
					zap.String("reference", reference),
					zap.Int("attempt", attempts))
			} else {
				u.logger.Warn("Pose lookup failed, retrying",
					zap.String("target", target),
					zap.String("reference", reference),
					zap.Int("attempt", attempts),
					zap.Error(err))
			}
			return err
		}
		pose = p
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Pose{}, fmt.Errorf("awaitPose: lookup of %v in %v "+
				"cancelled: %w", target, reference, ctxErr)
		}
		return Pose{}, fmt.Errorf("awaitPose: %w: %v in %v after %v "+
			"attempts: %v", ErrPoseTimeout, target, reference, attempts, err)
	}
	return pose, nil
}
