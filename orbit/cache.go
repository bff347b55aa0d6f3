package orbit

import (
	"time"

	"github.com/signalsfoundry/gnssvod/core"
)

type cacheKey struct {
	epoch int64
	sv    string
}

type lookAngle struct {
	az, el float64
}

// Cache holds precomputed look angles covering a time span at a fixed
// sampling interval. The caller owns the cache and passes it between
// successive interval runs; as long as the next run's span and interval are
// covered, the geometry is not recomputed.
type Cache struct {
	Start    time.Time
	End      time.Time
	Interval time.Duration

	angles map[cacheKey]lookAngle
}

// Covers reports whether the cache spans [start, end] at the given sampling
// interval.
func (c *Cache) Covers(start, end time.Time, interval time.Duration) bool {
	if c == nil || c.Interval != interval {
		return false
	}
	return !start.Before(c.Start) && !end.After(c.End)
}

// snap aligns an epoch to the cache's sampling interval.
func (c *Cache) snap(epoch time.Time) int64 {
	step := int64(c.Interval)
	return epoch.UTC().UnixNano() / step * step
}

// LookAngles serves angles from the precomputed set. Epochs are aligned to
// the sampling interval; epochs or SVs outside the cache miss. Implements
// core.LookAngleProvider.
func (c *Cache) LookAngles(epoch time.Time, sv string) (float64, float64, bool) {
	a, ok := c.angles[cacheKey{epoch: c.snap(epoch), sv: sv}]
	if !ok {
		return 0, 0, false
	}
	return a.az, a.el, true
}

// Precompute evaluates the provider for every SV at every sampling step of
// [start, end] and packs the results into a Cache.
func Precompute(p core.LookAngleProvider, svs []string, start, end time.Time, interval time.Duration) *Cache {
	c := &Cache{Start: start, End: end, Interval: interval, angles: map[cacheKey]lookAngle{}}
	for epoch := start; !epoch.After(end); epoch = epoch.Add(interval) {
		for _, sv := range svs {
			if az, el, ok := p.LookAngles(epoch, sv); ok {
				c.angles[cacheKey{epoch: c.snap(epoch), sv: sv}] = lookAngle{az: az, el: el}
			}
		}
	}
	return c
}

// Ensure returns prev when it already covers the requested span and
// interval, and a freshly precomputed cache otherwise.
func Ensure(prev *Cache, p core.LookAngleProvider, svs []string, start, end time.Time, interval time.Duration) *Cache {
	if prev.Covers(start, end, interval) {
		return prev
	}
	return Precompute(p, svs, start, end, interval)
}
