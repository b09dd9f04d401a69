// Package tripchain implements the TripChain sequencer (spec §4.8): the
// ordered list of Trips and Activities a Person-like agent works through
// over a simulation day, and the SubTrip sequencing within each Trip.
//
// original_source's Person.hpp sequences with std::vector iterators
// (currTripChainItem, currSubTrip, nextTripChainItem, nextSubTrip) kept in
// sync by hand. The spec's redesign flag replaces that with integer
// positions (itemPos, subTripPos): Advance is then a pure function of two
// ints and the chain length, which is what engine/agent.Role
// implementations driving a trip chain actually need — no aliasing, no
// invalidation on copy. The Trip/Activity sum type follows the "Class
// hierarchies vs. sum types" Design Note also named in engine/agent: a
// tagged union (Item) rather than the original's TripChainItem subclass
// pair (Trip : TripChainItem, Activity : TripChainItem).
package tripchain

// Activity is a stationary period at a Node, such as work or shopping.
type Activity struct {
	Description string
	LocationID  int64
	StartTimeMs int64
	EndTimeMs   int64
}

// SubTrip is one leg of a Trip: a single mode from an origin to a
// destination Node. A Trip with public-transit sub-trips may expand a
// single planned SubTrip into several (e.g. walk-to-stop, bus, walk-from-
// stop) via an ODToSubTripsExpander supplied by the caller; this package
// only sequences whatever SubTrips are already present.
type SubTrip struct {
	Mode        string
	OriginID    int64
	DestID      int64
	StartTimeMs int64
}

// Trip is an ordered sequence of SubTrips from the Trip's overall origin to
// its overall destination.
type Trip struct {
	OriginID  int64
	DestID    int64
	SubTrips  []SubTrip
}

// ItemKind distinguishes an Item's payload.
type ItemKind uint8

const (
	ItemTrip ItemKind = iota
	ItemActivity
)

// Item is one element of a Chain: either a Trip or an Activity, never both.
type Item struct {
	Kind     ItemKind
	Trip     Trip
	Activity Activity
}

// ODToSubTripsExpander expands a single planned road SubTrip into the
// concrete sequence of SubTrips a public-transit itinerary requires (walk,
// wait, ride, walk), given matched origin-destination trip legs. Supplied
// by the roleplugin behavioral model; this package only calls it, it never
// implements transit matching itself (out of scope per spec Non-goals).
type ODToSubTripsExpander interface {
	Expand(planned SubTrip) []SubTrip
}

// Chain is a Person's full trip chain: an ordered list of Items, advanced
// one SubTrip (within a Trip) or one whole Activity at a time.
//
// The zero value is an empty, exhausted Chain; construct a populated one
// with New.
type Chain struct {
	items      []Item
	itemPos    int
	subTripPos int
}

// New constructs a Chain over items, positioned at the first Item (and, if
// it is a Trip, its first SubTrip).
func New(items []Item) *Chain {
	return &Chain{items: items}
}

// Len reports the number of top-level Items in the chain.
func (c *Chain) Len() int { return len(c.items) }

// AtEnd reports whether the sequencer has advanced past the last Item.
func (c *Chain) AtEnd() bool { return c.itemPos >= len(c.items) }

// CurrentItem returns the Item at itemPos and true, or the zero Item and
// false if AtEnd.
func (c *Chain) CurrentItem() (Item, bool) {
	if c.AtEnd() {
		return Item{}, false
	}
	return c.items[c.itemPos], true
}

// CurrentSubTrip returns the current Trip's SubTrip at subTripPos and true,
// or false if the current Item is not a Trip, or AtEnd.
func (c *Chain) CurrentSubTrip() (SubTrip, bool) {
	item, ok := c.CurrentItem()
	if !ok || item.Kind != ItemTrip {
		return SubTrip{}, false
	}
	if c.subTripPos >= len(item.Trip.SubTrips) {
		return SubTrip{}, false
	}
	return item.Trip.SubTrips[c.subTripPos], true
}

// ItemPos and SubTripPos expose the raw integer position, for callers that
// need to persist/restore sequencer state (e.g. across a Role swap) without
// re-deriving it.
func (c *Chain) ItemPos() int    { return c.itemPos }
func (c *Chain) SubTripPos() int { return c.subTripPos }

// Seek restores a previously observed position. An itemPos past the last
// Item clamps to AtEnd (and a negative one to 0) rather than panicking,
// since a chain mutated between the
// original observation and the Seek (e.g. transit expansion inserting
// SubTrips) can legitimately shrink.
func (c *Chain) Seek(itemPos, subTripPos int) {
	if itemPos < 0 {
		itemPos = 0
	}
	c.itemPos = itemPos
	c.subTripPos = subTripPos
	if c.itemPos > len(c.items) {
		c.itemPos = len(c.items)
	}
}

// Advance moves to the next SubTrip within the current Trip, or the next
// Item if the current Trip's SubTrips (or the current Activity) are
// exhausted. It returns false once the chain is exhausted (AtEnd becomes
// true).
func (c *Chain) Advance() bool {
	if c.AtEnd() {
		return false
	}
	item := c.items[c.itemPos]
	if item.Kind == ItemTrip {
		c.subTripPos++
		if c.subTripPos < len(item.Trip.SubTrips) {
			return true
		}
	}
	c.itemPos++
	c.subTripPos = 0
	return !c.AtEnd()
}

// ExpandCurrentTrip replaces the current Trip's SubTrips in place using
// expander, applied to each existing SubTrip in turn. Intended to be called
// once, the first time a public-transit Trip becomes current, before any
// Advance. It resets subTripPos to 0 since the expansion changes the
// SubTrip boundaries.
func (c *Chain) ExpandCurrentTrip(expander ODToSubTripsExpander) bool {
	item, ok := c.CurrentItem()
	if !ok || item.Kind != ItemTrip {
		return false
	}
	expanded := make([]SubTrip, 0, len(item.Trip.SubTrips))
	for _, st := range item.Trip.SubTrips {
		expanded = append(expanded, expander.Expand(st)...)
	}
	c.items[c.itemPos].Trip.SubTrips = expanded
	c.subTripPos = 0
	return true
}
