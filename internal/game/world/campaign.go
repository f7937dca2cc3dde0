package world

import "fmt"

// Campaign is an ordered chain of levels linked by Level.Next.
//
// Invariant: every Next link names a level in the campaign.
type Campaign struct {
	levels map[string]*Level
	start  string
}

// NewCampaign indexes levels and validates the chain starting at startID.
//
// Precondition: levels must be non-empty with unique IDs.
// Postcondition: Returns a Campaign or a non-nil error.
func NewCampaign(levels []*Level, startID string) (*Campaign, error) {
	c := &Campaign{levels: make(map[string]*Level, len(levels)), start: startID}
	for _, l := range levels {
		if _, dup := c.levels[l.ID]; dup {
			return nil, fmt.Errorf("world.NewCampaign: duplicate level ID %q", l.ID)
		}
		c.levels[l.ID] = l
	}
	if _, ok := c.levels[startID]; !ok {
		return nil, fmt.Errorf("world.NewCampaign: start level %q not found", startID)
	}
	if err := c.validateLinks(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Campaign) validateLinks() error {
	for id, l := range c.levels {
		if l.Next == "" {
			continue
		}
		if _, ok := c.levels[l.Next]; !ok {
			return fmt.Errorf("world.Campaign: level %q leads to unknown level %q", id, l.Next)
		}
	}
	seen := make(map[string]bool)
	for id := c.start; id != ""; id = c.levels[id].Next {
		if seen[id] {
			return fmt.Errorf("world.Campaign: level chain loops at %q", id)
		}
		seen[id] = true
	}
	return nil
}

// Start returns the first level.
func (c *Campaign) Start() *Level { return c.levels[c.start] }

// Level returns the level with id.
func (c *Campaign) Level(id string) (*Level, bool) {
	l, ok := c.levels[id]
	return l, ok
}

// Next returns the level after id, or false at the end of the chain.
func (c *Campaign) Next(id string) (*Level, bool) {
	l, ok := c.levels[id]
	if !ok || l.Next == "" {
		return nil, false
	}
	return c.levels[l.Next], true
}

// Len returns the number of levels.
func (c *Campaign) Len() int { return len(c.levels) }
