package container

// Diagnostics is a snapshot of the container's build state.
type Diagnostics struct {
	ID      string            `json:"id"`
	Running bool              `json:"running"`
	Named   []string          `json:"named"`
	Failed  map[string]string `json:"failed,omitempty"`
	// Awaiting lists objects whose AfterConfiguration is still deferred.
	Awaiting []string   `json:"awaiting,omitempty"`
	Cycles   [][]string `json:"cycles,omitempty"`
	Services int        `json:"services"`
}

// Diagnostics reports the container's build state. Cycles lists the
// reference cycles between named objects found while building.
func (c *Container) Diagnostics() Diagnostics {
	d := Diagnostics{
		ID:      c.id,
		Running: c.Running(),
		Named:   c.Names(),
		Cycles:  c.graph.Cycles(),
	}
	d.Awaiting = c.arena.awaiting(c)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.failed) > 0 {
		d.Failed = make(map[string]string, len(c.failed))
		for name, err := range c.failed {
			d.Failed[name] = err.Error()
		}
	}
	d.Services = len(c.lifecycle)
	return d
}

// Dependencies returns, for each named object that referenced others through
// `named:`, the sorted names it depends on.
func (c *Container) Dependencies() map[string][]string {
	out := make(map[string][]string)
	for _, name := range c.graph.Names() {
		if deps := c.graph.References(name); len(deps) > 0 {
			out[name] = deps
		}
	}
	return out
}

