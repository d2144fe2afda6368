package replication

// Tick is the authority's send counter stamped on every outbound update.
// It wraps; comparisons use the half-range rule, so ordering is correct as
// long as two compared ticks are less than 2^31 apart.
type Tick uint32

// After reports whether t was produced after other.
func (t Tick) After(other Tick) bool {
	return int32(t-other) > 0
}

// AtLeast reports whether t is other or newer.
func (t Tick) AtLeast(other Tick) bool {
	return int32(t-other) >= 0
}
