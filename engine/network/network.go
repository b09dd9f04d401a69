// Package network defines the road-network consumer interface (spec §6):
// nodes, segments, lanes, links, turnings and crossings, all addressed by
// integer index into arenas rather than pointers, per the Design Note
// "Raw pointer graphs ⇒ arena with integer indices" — grounded on the
// original source's geospatial model (dev/Basic/shared/geospatial), whose
// RoadSegment/Link/TurningGroup classes hold exactly this data but wire it
// together with raw C++ pointers and back-pointers. The engine never loads
// AIMSUN/SOCI (out of scope); network.InMemory exists so the simulation
// core, its tests and the bundled demo scenario have a real Network without
// a network-loader dependency.
package network

import "github.com/go-gl/mathgl/mgl64"

// NodeID, SegmentID, LinkID, TurningID and CrossingID are arena
// indices, not pointers: -1 (or the zero value where noted) means absent.
type (
	NodeID     int32
	SegmentID  int32
	LinkID     int32
	TurningID  int32
	CrossingID int32
)

// Node is an intersection or end point, grounded on
// dev/Basic/shared/geospatial's Node (location only; lane connectivity
// lives on Turning/TurningGroup, not on Node itself).
type Node struct {
	ID       NodeID
	Pos      mgl64.Vec2
	Signaled bool // true if a SignalController Role is attached to this node
}

// Lane is one traffic lane within a Segment, numbered right-to-left as in
// the original source's RoadSegment::getLane (SimMobility lane indexing,
// as opposed to AIMSUN's left-to-right convention, handled at load time by
// getAdjustedLaneId — out of scope here since no AIMSUN loader exists).
type Lane struct {
	Index      int
	WidthM     float64
	IsVehicle  bool // false for a bus/pedestrian-only lane
}

// Segment is a stretch of road with uniform lane numbering, unidirectional,
// grounded on RoadSegment: start/end Node, parent Link, Lanes, MaxSpeed.
type Segment struct {
	ID          SegmentID
	Link        LinkID
	Start, End  NodeID
	LengthM     float64
	MaxSpeedKPH float64
	Lanes       []Lane
}

// Link groups Segments with consistent lane numbering between two Nodes,
// grounded on RoadSegment.getLink/setParentLink.
type Link struct {
	ID         LinkID
	Start, End NodeID
	Segments   []SegmentID
}

// Turning connects a (fromSegment, fromLane) to a (toSegment, toLane) across
// a Node, grounded on TurningGroup's per-lane turningPaths map, flattened
// from a map-of-maps into one record per path.
type Turning struct {
	ID               TurningID
	Node             NodeID
	FromSegment      SegmentID
	FromLane         int
	ToSegment        SegmentID
	ToLane           int
	ConflictApproach int64 // stable id used by SignalController link mappings
}

// Crossing is a pedestrian crossing at a Node, grounded on
// dev/Basic/geospatial/aimsun/Crossing.hpp.
type Crossing struct {
	ID   CrossingID
	Node NodeID
	Near mgl64.Vec2
	Far  mgl64.Vec2
}

// Network is the read-only road-network consumer interface. Everything is
// addressed by arena index; implementations never hand out pointers into
// their own storage (callers get copies), so a Network can be shared
// read-only across all Workers without synchronization.
type Network interface {
	Node(id NodeID) (Node, bool)
	Segment(id SegmentID) (Segment, bool)
	Link(id LinkID) (Link, bool)
	Turning(id TurningID) (Turning, bool)
	Crossing(id CrossingID) (Crossing, bool)

	// TurningsFrom returns every Turning originating at (node, fromSegment),
	// the set a Role must choose among at an intersection.
	TurningsFrom(node NodeID, fromSegment SegmentID) []Turning

	// SegmentsOf returns a Link's Segments in traversal order.
	SegmentsOf(link LinkID) []Segment

	// CrossingsAt returns every Crossing at a Node, consumed by
	// engine/signal when deriving a Phase's crossing color sequences.
	CrossingsAt(node NodeID) []Crossing
}
