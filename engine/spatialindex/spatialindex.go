// Package spatialindex implements the SpatialIndex described in spec §4.3: a
// bulk-load, tick-scoped 2-D index rebuilt once per Aura phase and queried
// for "agents within rectangle R" the rest of the tick.
//
// The structure is a cell-bucketed grid, generalised from the teacher's own
// chunk cache (server/world/world.go's chunks map[ChunkPos]*Column and
// server/world/tick.go's activeColumns/columnWithinAreas rectangle test)
// from fixed 16x16 voxel columns to a configurable 2-D cell size. Cell
// coordinates are hashed with cespare/xxhash to key the bucket map, the same
// family of fast non-cryptographic hash the teacher pulls in (indirectly,
// for protocol framing) and that this module puts to direct use here.
package spatialindex

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// AgentRef identifies an indexed agent. It is opaque to the index; callers
// typically pass an agent id.
type AgentRef int64

// Entry is a single snapshot published by the Aura-phase rebuild: an
// agent's identity and its current position.
type Entry struct {
	Agent AgentRef
	Pos   mgl64.Vec2
}

type cellCoord struct {
	cx, cz int32
}

func (c cellCoord) hash() uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.cx))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.cz))
	return xxhash.Sum64(buf[:])
}

// Index is a bulk-rebuilt 2-D spatial index. The zero value is not usable;
// construct with New. An Index is read-only for the whole Aura phase and is
// never consulted during Tick, matching the spec's phase discipline.
type Index struct {
	cellSize float64
	// buckets is keyed purely by the cell-coordinate hash to keep rebuild
	// allocation simple and Rebuild a single pass.
	buckets map[uint64][]Entry
}

// New constructs an Index with the given cell size (world units per grid
// cell). Smaller cells cost more buckets but tighten query precision;
// cellSize should be on the order of the typical query rectangle's smallest
// dimension.
func New(cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Index{cellSize: cellSize, buckets: make(map[uint64][]Entry)}
}

func (idx *Index) cellOf(p mgl64.Vec2) cellCoord {
	return cellCoord{
		cx: int32(p[0] / idx.cellSize),
		cz: int32(p[1] / idx.cellSize),
	}
}

// Rebuild discards the previous structure and builds a new one from the
// snapshot of (agent, x, y) triples gathered from every spatial agent's
// current position. O(n).
func (idx *Index) Rebuild(snapshot []Entry) {
	buckets := make(map[uint64][]Entry, len(snapshot)/4+1)
	for _, e := range snapshot {
		h := idx.cellOf(e.Pos).hash()
		buckets[h] = append(buckets[h], e)
	}
	idx.buckets = buckets
}

// QueryRect returns all indexed agents whose position lies within the
// inclusive rectangle [min, max], excluding the agent identified by exclude
// (pass an id that cannot occur, e.g. -1, to exclude nothing). Order is
// unspecified; callers sort if they need determinism. O(cells overlapped +
// matches).
func (idx *Index) QueryRect(min, max mgl64.Vec2, exclude AgentRef) []AgentRef {
	if min[0] > max[0] || min[1] > max[1] {
		return nil
	}
	minCell := idx.cellOf(min)
	maxCell := idx.cellOf(max)

	var out []AgentRef
	for cx := minCell.cx; cx <= maxCell.cx; cx++ {
		for cz := minCell.cz; cz <= maxCell.cz; cz++ {
			h := cellCoord{cx, cz}.hash()
			for _, e := range idx.buckets[h] {
				if e.Agent == exclude {
					continue
				}
				if e.Pos[0] < min[0] || e.Pos[0] > max[0] || e.Pos[1] < min[1] || e.Pos[1] > max[1] {
					continue
				}
				out = append(out, e.Agent)
			}
		}
	}
	return out
}

// Len returns the number of agents currently indexed.
func (idx *Index) Len() int {
	n := 0
	for _, b := range idx.buckets {
		n += len(b)
	}
	return n
}
