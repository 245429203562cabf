package geometry

import (
	"fmt"
	"sort"

	"github.com/lumenray/lumen/pkg/core"
)

// BuildConfig controls BVH construction
type BuildConfig struct {
	LeafSize int // Create a leaf at or below this entity count
	MaxDepth int // Hard recursion limit; deeper subtrees become leaves
}

// DefaultBuildConfig returns sensible default values
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		LeafSize: 4,
		MaxDepth: 16,
	}
}

// FlatNode is a runtime BVH node in the flattened array. Leaf nodes reference
// a contiguous range of the entity order table; internal nodes reference two
// child slots.
type FlatNode struct {
	Bounds core.AABB
	Start  int32 // Leaf: first index into the order table
	Count  int32 // Leaf: number of entities in the range
	Left   int32 // Internal: child node indices (-1 on leaves)
	Right  int32
	Leaf   bool
}

// BVH is a flattened bounding volume hierarchy over a read-only entity
// buffer. The root always resides at node index 0.
type BVH struct {
	Nodes    []FlatNode
	Entities []*Entity // The global entity buffer, not reordered
	Order    []int32   // Permutation of entity indices referenced by leaf ranges
	Center   core.Vec3 // World center, from the root bounds
	Radius   float64   // World radius, from the root bounds
}

// buildNode is the recursive build-time representation
type buildNode struct {
	bounds      core.AABB
	leaf        bool
	start       int
	count       int
	left, right *buildNode
}

type bvhBuilder struct {
	cfg       BuildConfig
	order     []int32
	bounds    []core.AABB
	centroids []core.Vec3
	nodeCount int
	maxDepth  int

	flat []FlatNode
	next int32
}

// BuildBVH constructs a flattened BVH over the given entity buffer. The
// entities slice is captured read-only and must not change while any
// traversal is in flight. Zero entities produce a single degenerate empty
// leaf; construction never fails.
func BuildBVH(entities []*Entity, cfg BuildConfig) *BVH {
	b := &bvhBuilder{
		cfg:       cfg,
		order:     make([]int32, len(entities)),
		bounds:    make([]core.AABB, len(entities)),
		centroids: make([]core.Vec3, len(entities)),
	}
	for i, e := range entities {
		b.order[i] = int32(i)
		b.bounds[i] = e.Bounds()
		b.centroids[i] = b.bounds[i].Center()
	}

	root := b.partition(0, len(entities), 0)

	// Flatten by a backward post-order walk: children are written before
	// their parent at decreasing indices, which pins the root to index 0.
	b.flat = make([]FlatNode, b.nodeCount)
	b.next = int32(b.nodeCount)
	rootIdx := b.flatten(root)
	if rootIdx != 0 {
		panic(fmt.Sprintf("geometry: BVH root flattened to index %d, want 0", rootIdx))
	}

	bvh := &BVH{
		Nodes:    b.flat,
		Entities: entities,
		Order:    b.order,
	}
	rootBounds := b.flat[0].Bounds
	if rootBounds.IsValid() {
		bvh.Center = rootBounds.Center()
		bvh.Radius = rootBounds.Max.Subtract(bvh.Center).Length()
	} else {
		// Empty scene fallback
		bvh.Radius = 100.0
	}
	return bvh
}

// partition recursively splits the order range [lo, hi) along the axis of
// greatest centroid extent at the median centroid
func (b *bvhBuilder) partition(lo, hi, depth int) *buildNode {
	b.nodeCount++
	if depth > b.maxDepth {
		b.maxDepth = depth
	}

	bounds := core.EmptyAABB()
	centroidBounds := core.EmptyAABB()
	for i := lo; i < hi; i++ {
		idx := b.order[i]
		bounds = bounds.Union(b.bounds[idx])
		centroidBounds = centroidBounds.Union(core.NewAABB(b.centroids[idx], b.centroids[idx]))
	}

	count := hi - lo
	if count <= b.cfg.LeafSize || depth >= b.cfg.MaxDepth {
		return &buildNode{bounds: bounds, leaf: true, start: lo, count: count}
	}

	axis := centroidBounds.LongestAxis()
	span := b.order[lo:hi]
	sort.Slice(span, func(i, j int) bool {
		return b.centroids[span[i]].Axis(axis) < b.centroids[span[j]].Axis(axis)
	})

	mid := lo + count/2
	return &buildNode{
		bounds: bounds,
		left:   b.partition(lo, mid, depth+1),
		right:  b.partition(mid, hi, depth+1),
	}
}

// flatten writes the subtree rooted at n into the flat array in backward
// post-order and returns the node's final index
func (b *bvhBuilder) flatten(n *buildNode) int32 {
	var left, right int32 = -1, -1
	if !n.leaf {
		left = b.flatten(n.left)
		right = b.flatten(n.right)
	}
	b.next--
	b.flat[b.next] = FlatNode{
		Bounds: n.bounds,
		Start:  int32(n.start),
		Count:  int32(n.count),
		Left:   left,
		Right:  right,
		Leaf:   n.leaf,
	}
	return b.next
}

// Per-entity crossing collection limits. Convex primitives cross a ray at
// most twice; the headroom covers future concave shapes.
const (
	maxCrossingsPerEntity = 4
	crossingEpsilon       = 1e-6
)

// TraverseScratch holds the growable traversal stacks and hit buffer,
// reusable across calls to avoid per-sample allocation churn. One scratch
// per worker; not safe for concurrent use.
type TraverseScratch struct {
	nodes      *indexStack
	candidates *indexStack
	hits       []EntityHit
}

// NewTraverseScratch creates an empty traversal scratch
func NewTraverseScratch() *TraverseScratch {
	return &TraverseScratch{
		nodes:      newIndexStack(),
		candidates: newIndexStack(),
		hits:       make([]EntityHit, 0, 16),
	}
}

// IntersectAll returns every entity intersection along the ray in [tMin, tMax],
// sorted ascending by distance with ties broken by entity buffer order.
// Participating-media resolution needs the full ordered crossing list, not
// just the nearest surface. The returned slice is owned by the scratch and
// valid until the next call.
func (bvh *BVH) IntersectAll(ray core.Ray, tMin, tMax float64, scratch *TraverseScratch) []EntityHit {
	scratch.nodes.Reset()
	scratch.candidates.Reset()
	scratch.hits = scratch.hits[:0]

	if len(bvh.Nodes) == 0 {
		return nil
	}

	invDir := ray.InverseDirection()

	scratch.nodes.Push(0)
	for !scratch.nodes.Empty() {
		idx := scratch.nodes.Pop()
		node := &bvh.Nodes[idx]
		if !node.Bounds.Hit(ray, invDir, tMin, tMax) {
			continue
		}
		if node.Leaf {
			for i := node.Start; i < node.Start+node.Count; i++ {
				scratch.candidates.Push(bvh.Order[i])
			}
			continue
		}
		scratch.nodes.Push(node.Left)
		scratch.nodes.Push(node.Right)
	}

	// Test every candidate entity, walking each one crossing by crossing
	for !scratch.candidates.Empty() {
		entityIdx := scratch.candidates.Pop()
		entity := bvh.Entities[entityIdx]

		t0 := tMin
		for c := 0; c < maxCrossingsPerEntity; c++ {
			hit, ok := entity.Intersect(ray, t0, tMax)
			if !ok {
				break
			}
			scratch.hits = append(scratch.hits, EntityHit{
				Hit:    hit,
				Entity: entity,
				Index:  int(entityIdx),
			})
			t0 = hit.T + crossingEpsilon
		}
	}

	sort.Slice(scratch.hits, func(i, j int) bool {
		if scratch.hits[i].T != scratch.hits[j].T {
			return scratch.hits[i].T < scratch.hits[j].T
		}
		return scratch.hits[i].Index < scratch.hits[j].Index
	})

	return scratch.hits
}

// Stats summarizes the flattened tree structure
type Stats struct {
	TotalNodes int
	LeafNodes  int
	Entities   int
}

// Stats walks the flat node array and reports tree shape counters
func (bvh *BVH) Stats() Stats {
	s := Stats{TotalNodes: len(bvh.Nodes)}
	for i := range bvh.Nodes {
		if bvh.Nodes[i].Leaf {
			s.LeafNodes++
			s.Entities += int(bvh.Nodes[i].Count)
		}
	}
	return s
}
