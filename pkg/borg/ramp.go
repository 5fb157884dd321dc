package borg

import (
	"math"
	"time"
)

// speedRamp changes the drive speed linearly towards a target.
type speedRamp struct {
	startTime  time.Time
	startSpeed float64
	target     float64
	accel      float64
	endTime    time.Time
}

// newSpeedRamp starts ramping from current to target. An accel of 0
// reaches target immediately.
func newSpeedRamp(current float64, now time.Time, target, accel float64) *speedRamp {
	r := &speedRamp{
		startTime:  now,
		startSpeed: current,
		target:     target,
		accel:      math.Abs(accel),
		endTime:    now,
	}
	if r.accel != 0 {
		if diff := math.Abs(target - current); diff > 0 {
			r.endTime = now.Add(time.Duration(diff*1000000/r.accel) * time.Microsecond)
		}
		if current > target {
			r.accel = -r.accel
		}
	}
	return r
}

func (r *speedRamp) speed(now time.Time) float64 {
	if r == nil {
		return 0
	}
	if r.accel == 0 || !now.Before(r.endTime) {
		return r.target
	}
	if now.Before(r.startTime) {
		return r.startSpeed
	}
	return r.startSpeed + r.accel*now.Sub(r.startTime).Seconds()
}

func (r *speedRamp) done(now time.Time) bool {
	return r == nil || !now.Before(r.endTime)
}
