package scene

import (
	"math"
	"time"

	"github.com/achilleasa/cpupath/log"
	"github.com/achilleasa/cpupath/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The BVH builder will not attempt to calculate split candidates
	// if the node bbox along an axis is less than this threshold.
	minSideLength = 1e-3

	// If the split step (calculated as side length / (1024 * depth+1))
	// is less than this threshold the BVH builder will not evaluate
	// split candidates.
	minSplitStep = 1e-5

	// Padding added to surface bounding boxes so rays grazing a surface
	// are never culled by the box test.
	bboxPadding = 1e-6
)

// The BoundedSurface interface is implemented by surfaces that can be
// partitioned by the bvh builder.
type BoundedSurface interface {
	Surface

	BBox() [2]types.Vec3
	Centroid() types.Vec3
}

// Bvh nodes are comprised of two Vec3 and two multipurpose int32 parameters
// whose value depends on the node type:
//
// - For inner nodes both are > 0 and point to the L/R child nodes
// - For leafs the left value is <= 0 and holds the negated index of the
// first leaf surface while the right value holds the surface count.
type BvhNode struct {
	Min   types.Vec3
	lData int32

	Max   types.Vec3
	rData int32
}

// Set left and right child node indices.
func (n *BvhNode) SetChildNodes(left, right uint32) {
	n.lData = int32(left)
	n.rData = int32(right)
}

// Set surface index and count.
func (n *BvhNode) SetSurfaces(first, count uint32) {
	n.lData = -int32(first)
	n.rData = int32(count)
}

// Returns true if this is a leaf node.
func (n *BvhNode) IsLeaf() bool {
	return n.lData <= 0
}

// Test whether the ray overlaps the node bbox within (tMin, tMax).
func (n *BvhNode) hitBBox(r types.Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		invD := 1.0 / r.Dir[axis]
		t0 := (n.Min[axis] - r.Origin[axis]) * invD
		t1 := (n.Max[axis] - r.Origin[axis]) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return false
		}
	}
	return true
}

// Statistics for a built bvh tree.
type BvhStats struct {
	Nodes     int
	Leafs     int
	MaxDepth  int
	BuildTime time.Duration
}

// A bounding volume hierarchy over the bounded scene surfaces. Surfaces that
// do not expose a bbox are tested linearly for every ray.
type Bvh struct {
	// Bvh nodes stored as a contiguous list; the root is at index 0.
	nodes []BvhNode

	// Bounded surfaces ordered so that each leaf references a contiguous range.
	surfaces []Surface

	// Surfaces without a bbox.
	unbounded []Surface

	stats BvhStats
}

// Find the closest hit within (tMin, tMax).
func (b *Bvh) Hit(r types.Ray, tMin, tMax float64) (HitRecord, bool) {
	var (
		closest     HitRecord
		hitAnything bool
	)

	for _, surface := range b.unbounded {
		if rec, ok := surface.Hit(r, tMin, tMax); ok {
			tMax = rec.T
			closest = rec
			hitAnything = true
		}
	}

	if len(b.nodes) == 0 {
		return closest, hitAnything
	}

	var stack [64]uint32
	stack[0] = 0
	depth := 1
	for depth > 0 {
		depth--
		node := &b.nodes[stack[depth]]
		if !node.hitBBox(r, tMin, tMax) {
			continue
		}

		if node.IsLeaf() {
			first := int(-node.lData)
			for _, surface := range b.surfaces[first : first+int(node.rData)] {
				if rec, ok := surface.Hit(r, tMin, tMax); ok {
					tMax = rec.T
					closest = rec
					hitAnything = true
				}
			}
			continue
		}

		stack[depth] = uint32(node.rData)
		stack[depth+1] = uint32(node.lData)
		depth += 2
	}

	return closest, hitAnything
}

// Get tree statistics.
func (b *Bvh) Stats() BvhStats {
	return b.stats
}

type splitScore struct {
	axis       Axis
	splitPoint float64

	leftCount, rightCount int
	score                 float64
}

// Returns true if this candidate should be preferred over other when both
// have the same score. Makes the tree layout independent of the order in
// which candidates are scored.
func (s splitScore) before(other splitScore) bool {
	if s.axis != other.axis {
		return s.axis < other.axis
	}
	return s.splitPoint < other.splitPoint
}

type bvhBuilder struct {
	logger log.Logger

	nodes    []BvhNode
	surfaces []Surface

	// The minimum number of items that are required for creating a leaf.
	minLeafItems int

	// A channel for receiving score results.
	scoreChan chan splitScore

	stats BvhStats
}

// Construct a BVH from a set of surfaces.
//
// The builder uses SAH for scoring splits:
// score = num_surfaces * node bbox face area.
//
// The minLeafItems param should be used to specified the minimum number of
// items that can form a leaf. The BVH builder will automatically generate leafs
// if the incoming work length is <= minLeafItems.
func BuildBvh(surfaces []Surface, minLeafItems int) *Bvh {
	if minLeafItems < 1 {
		minLeafItems = 1
	}

	bvh := &Bvh{}
	workList := make([]BoundedSurface, 0, len(surfaces))
	for _, surface := range surfaces {
		if bounded, ok := surface.(BoundedSurface); ok {
			workList = append(workList, bounded)
		} else {
			bvh.unbounded = append(bvh.unbounded, surface)
		}
	}

	b := &bvhBuilder{
		logger:       log.New("bvh builder"),
		nodes:        make([]BvhNode, 0),
		surfaces:     make([]Surface, 0, len(workList)),
		minLeafItems: minLeafItems,
		scoreChan:    make(chan splitScore),
	}

	start := time.Now()
	if len(workList) != 0 {
		b.partition(workList, 0)
	}
	b.stats.BuildTime = time.Since(start)
	b.logger.Debugf(
		"BVH tree build time: %s, maxDepth: %d, nodes: %d, leafs: %d",
		b.stats.BuildTime, b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs,
	)

	bvh.nodes = b.nodes
	bvh.surfaces = b.surfaces
	bvh.stats = b.stats
	return bvh
}

// Partition worklist and return node index.
func (b *bvhBuilder) partition(workList []BoundedSurface, depth int) uint32 {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	var node BvhNode
	node.Min, node.Max = workListBBox(workList)

	// Do we have enough items for partitioning? If not create a leaf. The
	// traversal stack depth also caps the tree depth.
	if len(workList) <= b.minLeafItems || depth >= 30 {
		return b.createLeaf(&node, workList)
	}

	// Calc current node score
	bestScore := scorePartition(workList)
	var bestSplit *splitScore

	// Try partioning along each axis and select the split with best score
	pendingScores := 0

	// Run axis split tests in parallel
	side := node.Max.Sub(node.Min)
	for axis := XAxis; axis <= ZAxis; axis++ {
		// Skip axis if bbox dimension is too small
		if side[axis] < minSideLength {
			continue
		}

		// Split candidates get sparser the deeper we go
		splitStep := side[axis] / (1024.0 / float64(depth+1))
		if splitStep < minSplitStep {
			continue
		}

		for splitPoint := node.Min[axis]; splitPoint < node.Max[axis]; splitPoint += splitStep {
			pendingScores++
			go func(axis Axis, splitPoint float64) {
				lCount, rCount, score := scoreSplit(workList, axis, splitPoint)
				b.scoreChan <- splitScore{
					axis:       axis,
					splitPoint: splitPoint,

					leftCount:  lCount,
					rightCount: rCount,
					score:      score,
				}
			}(axis, splitPoint)
		}
	}

	// Process all scores and pick the best split
	for ; pendingScores > 0; pendingScores-- {
		candidate := <-b.scoreChan
		if candidate.score < bestScore || (bestSplit != nil && candidate.score == bestScore && candidate.before(*bestSplit)) {
			bestScore = candidate.score
			bestSplit = &candidate
		}
	}

	// If we can't find a split that improves the current node score create a leaf
	if bestSplit == nil {
		return b.createLeaf(&node, workList)
	}

	// split work list into two sets
	leftWorkList := make([]BoundedSurface, 0, bestSplit.leftCount)
	rightWorkList := make([]BoundedSurface, 0, bestSplit.rightCount)
	for _, item := range workList {
		if item.Centroid()[bestSplit.axis] < bestSplit.splitPoint {
			leftWorkList = append(leftWorkList, item)
		} else {
			rightWorkList = append(rightWorkList, item)
		}
	}

	// Add node to list
	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.Nodes++

	// Partition children and update node indices
	leftNodeIndex := b.partition(leftWorkList, depth+1)
	rightNodeIndex := b.partition(rightWorkList, depth+1)
	b.nodes[nodeIndex].SetChildNodes(leftNodeIndex, rightNodeIndex)

	return uint32(nodeIndex)
}

// Setup the given node item as a leaf node containing all items in the work list.
// Returns the index to the node in the bvh node array.
func (b *bvhBuilder) createLeaf(node *BvhNode, workList []BoundedSurface) uint32 {
	node.SetSurfaces(uint32(len(b.surfaces)), uint32(len(workList)))
	for _, item := range workList {
		b.surfaces = append(b.surfaces, item)
	}

	// append node to list
	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, *node)

	// update stats
	b.stats.Nodes++
	b.stats.Leafs++

	return uint32(nodeIndex)
}

// Score a BVH split based on the surface area heuristic. The SAH calculates
// the split score using the formula (lower score is better):
//
// left count * left BBOX area + rightCount * right BBOX area.
//
// SAH avoids splits that generate empty partitions by assigning the worst
// possible score (MaxFloat64) when it enounters such cases.
func scoreSplit(workList []BoundedSurface, axis Axis, splitPoint float64) (leftCount, rightCount int, score float64) {
	lmin, lmax := emptyBBox()
	rmin, rmax := emptyBBox()

	for _, item := range workList {
		itemBBox := item.BBox()
		if item.Centroid()[axis] < splitPoint {
			leftCount++
			lmin = minVec3(lmin, itemBBox[0])
			lmax = maxVec3(lmax, itemBBox[1])
		} else {
			rightCount++
			rmin = minVec3(rmin, itemBBox[0])
			rmax = maxVec3(rmax, itemBBox[1])
		}
	}

	// Make sure that we don't generate empty partitions
	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat64
	}

	score = float64(leftCount)*halfArea(lmax.Sub(lmin)) + float64(rightCount)*halfArea(rmax.Sub(rmin))
	return leftCount, rightCount, score
}

// Calculate score for a partitioned workList using formula:
// count * BBOX area
//
// If the workList is empty, then this method returns the worst possible
// score (MaxFloat64).
func scorePartition(workList []BoundedSurface) float64 {
	if len(workList) == 0 {
		return math.MaxFloat64
	}

	min, max := workListBBox(workList)
	return float64(len(workList)) * halfArea(max.Sub(min))
}

func workListBBox(workList []BoundedSurface) (types.Vec3, types.Vec3) {
	min, max := emptyBBox()
	for _, item := range workList {
		itemBBox := item.BBox()
		min = minVec3(min, itemBBox[0])
		max = maxVec3(max, itemBBox[1])
	}
	return min, max
}

func emptyBBox() (types.Vec3, types.Vec3) {
	return types.XYZ(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64),
		types.XYZ(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64)
}

func halfArea(side types.Vec3) float64 {
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}

func minVec3(a, b types.Vec3) types.Vec3 {
	return types.XYZ(math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2]))
}

func maxVec3(a, b types.Vec3) types.Vec3 {
	return types.XYZ(math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2]))
}
