package grid

import (
	"math"
	"sort"

	"github.com/masslots/parcelviz/internal/geometry"
)

// leafSize is the maximum number of entries per index node.
const leafSize = 16

// Index is an immutable bounding-box index over a set of geometries,
// bulk-loaded once with sort-tile-recursive packing. Query answers "which
// entries' bounding boxes overlap this rectangle" without exact geometry
// tests; callers must follow up with a precise intersection check against
// the candidates. The index is read-only after construction and safe for
// concurrent queries.
type Index struct {
	nodes []indexNode
	root  int
}

type indexNode struct {
	rect    geometry.Rect
	leaf    bool
	entries []indexEntry
}

type indexEntry struct {
	rect geometry.Rect
	// ref is the caller's item index at leaf level, a node index otherwise.
	ref int
}

// NewIndex builds an index from precomputed bounding boxes. The box slice
// index is the identifier returned by Query. An empty input yields an
// index whose queries always return nil.
func NewIndex(boxes []geometry.Rect) *Index {
	ix := &Index{}
	if len(boxes) == 0 {
		return ix
	}

	entries := make([]indexEntry, len(boxes))
	for i, b := range boxes {
		entries[i] = indexEntry{rect: b, ref: i}
	}
	packSTR(entries)

	// Pack leaves, then parent levels, until one node remains.
	level := ix.packLevel(entries, true)
	for len(level) > 1 {
		parents := make([]indexEntry, 0, (len(level)+leafSize-1)/leafSize)
		for _, n := range level {
			parents = append(parents, indexEntry{rect: ix.nodes[n].rect, ref: n})
		}
		level = ix.packLevel(parents, false)
	}
	ix.root = level[0]
	return ix
}

// packLevel groups consecutive entries into nodes of at most leafSize and
// returns the new node indices.
func (ix *Index) packLevel(entries []indexEntry, leaf bool) []int {
	var created []int
	for start := 0; start < len(entries); start += leafSize {
		end := start + leafSize
		if end > len(entries) {
			end = len(entries)
		}
		chunk := make([]indexEntry, end-start)
		copy(chunk, entries[start:end])

		rect := chunk[0].rect
		for _, e := range chunk[1:] {
			rect = rect.Union(e.rect)
		}
		ix.nodes = append(ix.nodes, indexNode{rect: rect, leaf: leaf, entries: chunk})
		created = append(created, len(ix.nodes)-1)
	}
	return created
}

// packSTR orders entries with sort-tile-recursive packing: sort by center
// X, slice into vertical strips, sort each strip by center Y. Consecutive
// runs then form spatially coherent nodes.
func packSTR(entries []indexEntry) {
	sort.Slice(entries, func(i, j int) bool {
		xi, _ := entries[i].rect.Center()
		xj, _ := entries[j].rect.Center()
		return xi < xj
	})

	leaves := int(math.Ceil(float64(len(entries)) / leafSize))
	strips := int(math.Ceil(math.Sqrt(float64(leaves))))
	if strips < 1 {
		strips = 1
	}
	stripLen := strips * leafSize

	for start := 0; start < len(entries); start += stripLen {
		end := start + stripLen
		if end > len(entries) {
			end = len(entries)
		}
		strip := entries[start:end]
		sort.Slice(strip, func(i, j int) bool {
			_, yi := strip[i].rect.Center()
			_, yj := strip[j].rect.Center()
			return yi < yj
		})
	}
}

// Query returns the indices of all entries whose bounding box overlaps the
// query rectangle. The result may include entries whose exact geometry does
// not intersect; it never omits one that does.
func (ix *Index) Query(r geometry.Rect) []int {
	if len(ix.nodes) == 0 {
		return nil
	}
	var hits []int
	ix.search(ix.root, r, &hits)
	sort.Ints(hits)
	return hits
}

func (ix *Index) search(node int, r geometry.Rect, hits *[]int) {
	n := &ix.nodes[node]
	if !n.rect.Intersects(r) {
		return
	}
	for _, e := range n.entries {
		if !e.rect.Intersects(r) {
			continue
		}
		if n.leaf {
			*hits = append(*hits, e.ref)
		} else {
			ix.search(e.ref, r, hits)
		}
	}
}
