package flowent

// childSlot binds one animation to its place in the schedule: the track it
// belongs to, the explicit due time for time-placed track heads, and the
// link to its successor in the same track's chain. Chains are singly linked;
// nothing ever walks a track backward.
type childSlot struct {
	track     int
	animation Animation
	timeIndex float64
	timed     bool
	next      *childSlot
}

// dueTime is the effective time index used for dispatch ordering. Sequential
// track heads are due immediately at loop start.
func (s *childSlot) dueTime() float64 {
	if !s.timed {
		return 0
	}
	return s.timeIndex
}

// sortSlots orders track heads ascending by effective time index using an
// in-place partition-exchange sort with the pivot at the high end. The sort
// is not stable: the relative start order of tracks sharing a time index is
// unspecified.
func sortSlots(slots []*childSlot) {
	quickSortSlots(slots, 0, len(slots)-1)
}

func quickSortSlots(slots []*childSlot, lo, hi int) {
	if lo >= hi {
		return
	}
	p := partitionSlots(slots, lo, hi)
	quickSortSlots(slots, lo, p-1)
	quickSortSlots(slots, p+1, hi)
}

func partitionSlots(slots []*childSlot, lo, hi int) int {
	pivot := slots[hi].dueTime()
	i := lo
	for j := lo; j < hi; j++ {
		if slots[j].dueTime() < pivot {
			slots[i], slots[j] = slots[j], slots[i]
			i++
		}
	}
	slots[i], slots[hi] = slots[hi], slots[i]
	return i
}
