package cache

import "sync/atomic"

// counters tallies lookups for Stats. The zero value is ready to use.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
	l1     atomic.Int64
	l2     atomic.Int64
}

func (c *counters) hit()  { c.hits.Add(1) }
func (c *counters) miss() { c.misses.Add(1) }

// snapshot returns the current tallies with HitRate filled in
func (c *counters) snapshot(items int64) *Stats {
	s := &Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		L1Hits:    c.l1.Load(),
		L2Hits:    c.l2.Load(),
		ItemCount: items,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
