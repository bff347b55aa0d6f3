package model

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Left, Right).
type Interval struct {
	Left  time.Time
	Right time.Time
}

// Contains reports whether t falls inside the half-open interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Left) && t.Before(iv.Right)
}

// Overlaps reports whether the closed extent [min, max] intersects the
// interval. File epoch extents are closed on both ends, so a file whose last
// epoch equals Left is still eligible, while one whose first epoch equals
// Right is not.
func (iv Interval) Overlaps(min, max time.Time) bool {
	return min.Before(iv.Right) && !max.Before(iv.Left)
}

// String renders the interval in the compact form used for output artifact
// names, e.g. "20230801000000_20230802000000".
func (iv Interval) String() string {
	const layout = "20060102150405"
	return iv.Left.UTC().Format(layout) + "_" + iv.Right.UTC().Format(layout)
}

// Intervals is an ordered sequence of processing intervals.
type Intervals []Interval

// Validate checks that the intervals are well-formed, ascending, and pairwise
// non-overlapping. An empty sequence is valid (a default gets derived).
func (ivs Intervals) Validate() error {
	for i, iv := range ivs {
		if !iv.Left.Before(iv.Right) {
			return fmt.Errorf("interval %d: left bound %v is not before right bound %v", i, iv.Left, iv.Right)
		}
		if i > 0 && ivs[i-1].Right.After(iv.Left) {
			return fmt.Errorf("interval %d overlaps interval %d", i, i-1)
		}
	}
	return nil
}

// IntervalRange builds count consecutive intervals of width freq starting at
// start, mirroring the usual way daily or hourly batches are declared.
func IntervalRange(start time.Time, freq time.Duration, count int) Intervals {
	out := make(Intervals, 0, count)
	left := start
	for i := 0; i < count; i++ {
		right := left.Add(freq)
		out = append(out, Interval{Left: left, Right: right})
		left = right
	}
	return out
}
