package forgedeck

// NoSelection is returned by [Clamp] when there is nothing to select.
const NoSelection = -1

// Clamp bounds index to [0, n-1]. When n is zero there is no valid index and
// Clamp returns NoSelection and false.
func Clamp(index, n int) (int, bool) {
	if n <= 0 {
		return NoSelection, false
	}
	if index < 0 {
		return 0, true
	}
	if index > n-1 {
		return n - 1, true
	}
	return index, true
}

// resolve returns the index dc should display: the dial override when one is
// active, otherwise the persisted server index, clamped to the cache.
func (p *Plugin) resolve(dc *deckContext) (int, bool) {
	index := dc.prefs.ServerIndex
	if dc.overriding {
		index = dc.override
	}
	return Clamp(index, p.cache.Len())
}
