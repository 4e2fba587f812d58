package sim

// Pin records the level of a direction output
type Pin struct {
	high    bool
	changes int
}

func (p *Pin) Set(high bool) {
	if p.high != high {
		p.changes++
	}
	p.high = high
}

// High reports the current level
func (p *Pin) High() bool {
	return p.high
}

// Changes counts level transitions
func (p *Pin) Changes() int {
	return p.changes
}
