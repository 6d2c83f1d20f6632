package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into column blocks of variable width and assign them to
	// the pool of tracers.
	//
	// This function returns the block width assignment for each tracer
	// in the input list. The widths always add up to frameW.
	Schedule(tracers []Tracer, frameW uint32) []uint32
}

// The naive scheduler splits the frame into equally wide blocks. Any columns
// left over by the integer division are assigned to the last tracer.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (naiveScheduler) Schedule(tracers []Tracer, frameW uint32) []uint32 {
	return evenSplit(len(tracers), frameW)
}

func evenSplit(numTracers int, frameW uint32) []uint32 {
	if numTracers == 0 {
		return nil
	}

	blockAssignment := make([]uint32, numTracers)
	blockW := frameW / uint32(numTracers)
	for idx := range blockAssignment {
		blockAssignment[idx] = blockW
	}
	blockAssignment[numTracers-1] += frameW - blockW*uint32(numTracers)
	return blockAssignment
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable width using feedback collected from
// the previous frame.
//
// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockW,w_i / time,w_i) / Σ(blockW_i / time_i)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameW uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) || !haveFrameStats(tracers) {
		sch.blockAssignment = speedSplit(tracers, frameW)
		return sch.blockAssignment
	}

	// Use last frame statistics
	var total float64
	var stats *Stats
	for _, tr := range tracers {
		stats = tr.Stats()
		total += float64(stats.BlockW) / float64(stats.RenderTime)
	}

	scaler := float64(frameW) / total
	for idx, tr := range tracers {
		stats = tr.Stats()
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(stats.BlockW)/float64(stats.RenderTime)*scaler)))
	}
	balance(sch.blockAssignment, frameW)

	return sch.blockAssignment
}

// Distribute columns according to each tracer's speed estimate.
func speedSplit(tracers []Tracer, frameW uint32) []uint32 {
	if len(tracers) == 0 {
		return nil
	}

	var total float64
	for _, tr := range tracers {
		total += float64(tr.Speed())
	}
	if total == 0 {
		return evenSplit(len(tracers), frameW)
	}

	scaler := float64(frameW) / total
	blockAssignment := make([]uint32, len(tracers))
	for idx, tr := range tracers {
		blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.Speed())*scaler)))
	}
	balance(blockAssignment, frameW)
	return blockAssignment
}

// Returns true if every tracer rendered a non-empty block in the last frame.
func haveFrameStats(tracers []Tracer) bool {
	for _, tr := range tracers {
		stats := tr.Stats()
		if stats == nil || stats.BlockW == 0 || stats.RenderTime <= 0 {
			return false
		}
	}
	return true
}

// Adjust block assignment so that the widths add up to frameW. Missing columns
// are appended to the first tracer; excess columns are taken from the widest
// blocks.
func balance(blockAssignment []uint32, frameW uint32) {
	var scheduled uint32
	for _, w := range blockAssignment {
		scheduled += w
	}

	if scheduled <= frameW {
		blockAssignment[0] += frameW - scheduled
		return
	}

	for excess := scheduled - frameW; excess > 0; excess-- {
		widest := 0
		for idx, w := range blockAssignment {
			if w > blockAssignment[widest] {
				widest = idx
			}
		}
		blockAssignment[widest]--
	}
}
