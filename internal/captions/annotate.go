package captions

import (
	"container/heap"
	"slices"
	"sort"
)

// ActiveCue returns the first cue, in slice order, whose inclusive frame range
// contains frame.
func ActiveCue(frame int, cues []Cue) (Cue, bool) {
	for _, cue := range cues {
		if cue.StartFrame <= frame && frame <= cue.EndFrame {
			return cue, true
		}
	}
	return Cue{}, false
}

// CueIndex answers ActiveCue queries in logarithmic time. The frame axis is cut
// into elementary intervals at every cue boundary and each interval stores the
// lowest-index cue covering it, so overlap resolution matches ActiveCue.
type CueIndex struct {
	cues   []Cue
	bounds []int // sorted interval starts
	owner  []int // cue index per interval, -1 when none
}

// NewCueIndex builds an index over cues. The slice is copied.
func NewCueIndex(cues []Cue) *CueIndex {
	idx := &CueIndex{cues: slices.Clone(cues)}

	order := make([]int, 0, len(cues))
	points := make([]int, 0, len(cues)*2)
	for i, cue := range idx.cues {
		if cue.EndFrame < cue.StartFrame {
			continue
		}
		order = append(order, i)
		points = append(points, cue.StartFrame, cue.EndFrame+1)
	}
	if len(order) == 0 {
		return idx
	}
	slices.Sort(points)
	idx.bounds = slices.Compact(points)
	sort.SliceStable(order, func(a, b int) bool {
		return idx.cues[order[a]].StartFrame < idx.cues[order[b]].StartFrame
	})

	idx.owner = make([]int, len(idx.bounds))
	active := &minIndexHeap{}
	next := 0
	for i, at := range idx.bounds {
		for next < len(order) && idx.cues[order[next]].StartFrame == at {
			heap.Push(active, order[next])
			next++
		}
		for active.Len() > 0 && idx.cues[(*active)[0]].EndFrame < at {
			heap.Pop(active)
		}
		if active.Len() > 0 {
			idx.owner[i] = (*active)[0]
		} else {
			idx.owner[i] = -1
		}
	}
	return idx
}

// Lookup returns the active cue for frame.
func (idx *CueIndex) Lookup(frame int) (Cue, bool) {
	if idx == nil || len(idx.bounds) == 0 {
		return Cue{}, false
	}
	// Last interval whose start is <= frame.
	i := sort.SearchInts(idx.bounds, frame+1) - 1
	if i < 0 {
		return Cue{}, false
	}
	owner := idx.owner[i]
	if owner < 0 {
		return Cue{}, false
	}
	return idx.cues[owner], true
}

// Len reports the number of cues held by the index.
func (idx *CueIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.cues)
}

type minIndexHeap []int

func (h minIndexHeap) Len() int           { return len(h) }
func (h minIndexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minIndexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minIndexHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *minIndexHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
