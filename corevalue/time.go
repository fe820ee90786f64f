package corevalue

import "time"

// Time is a duration-since-epoch value measured in seconds, the unit the
// wire codec and the clock scheduler both exchange. It is distinct from
// time.Duration (nanosecond-scale, used for real wall-clock measurement)
// to keep the serialized form a plain float64.
type Time float64

// FromDuration converts a time.Duration to seconds.
func FromDuration(d time.Duration) Time { return Time(d.Seconds()) }

// Duration converts back to a time.Duration.
func (t Time) Duration() time.Duration { return time.Duration(float64(t) * float64(time.Second)) }

func (t Time) Seconds() float64 { return float64(t) }
