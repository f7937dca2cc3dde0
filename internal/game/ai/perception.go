package ai

import (
	"time"

	"github.com/cory-johannsen/verdict/internal/game/entity"
)

// LookupFunc returns every entity carrying tag.
type LookupFunc func(tag string) []*entity.Entity

// Perception caches target lookups per tag and refreshes them every interval.
// Cached entities may die between scans; controllers check liveness each tick.
type Perception struct {
	lookup   LookupFunc
	interval time.Duration
	elapsed  time.Duration
	cache    map[string][]*entity.Entity
}

// NewPerception creates a Perception over lookup.
//
// Precondition: lookup must be non-nil. interval <= 0 rescans on every Advance.
func NewPerception(lookup LookupFunc, interval time.Duration) *Perception {
	return &Perception{lookup: lookup, interval: interval, cache: make(map[string][]*entity.Entity)}
}

// Advance moves the perception clock by dt and drops the cache when the
// rescan interval has elapsed.
func (p *Perception) Advance(dt time.Duration) {
	p.elapsed += dt
	if p.elapsed >= p.interval {
		p.elapsed = 0
		clear(p.cache)
	}
}

// Invalidate forces the next Candidates call for every tag to rescan.
func (p *Perception) Invalidate() {
	clear(p.cache)
}

// Candidates returns the entities carrying tag as of the last scan.
//
// Postcondition: Returns a non-nil slice the caller must not modify.
func (p *Perception) Candidates(tag string) []*entity.Entity {
	if c, ok := p.cache[tag]; ok {
		return c
	}
	found := p.lookup(tag)
	if found == nil {
		found = []*entity.Entity{}
	}
	p.cache[tag] = found
	return found
}
