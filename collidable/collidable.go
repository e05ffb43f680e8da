// Package collidable defines the record type maps store and pathfinders
// query against: an identified, flagged convex polygon at a position.
package collidable

import "github.com/lixenwraith/polypath/geom"

// MaxFlagBit is the highest flag bit callers may set. Bit 63 is reserved
// so flag arithmetic (masks, complements) stays within the unsigned range
// without the reserved bit ever flipping sign-adjacent behavior in a port
// to a signed 64-bit flag type.
const MaxFlagBit = 62

// Collidable is an identified, positioned, flagged convex polygon. ID is
// assigned by the owning map on Register and is stable for the
// collidable's lifetime; Position must only change via the owning map's
// Move (spec.md 3 — direct mutation is a contract violation the map
// cannot detect or recover from).
type Collidable struct {
	ID       uint32
	Flags    uint64
	Position geom.Vec2
	Bounds   geom.Polygon
}

// New constructs a Collidable with ID left zero; the owning map assigns it
// on Register.
func New(position geom.Vec2, bounds geom.Polygon, flags uint64) Collidable {
	return Collidable{Position: position, Bounds: bounds, Flags: flags}
}

// WorldAABB returns the collidable's bounding box in world coordinates.
func (c Collidable) WorldAABB() geom.Rect {
	return c.Bounds.WorldAABB(c.Position)
}

// HasAnyFlag reports whether c.Flags shares any bit with mask.
func (c Collidable) HasAnyFlag(mask uint64) bool {
	return c.Flags&mask != 0
}

// Excluded reports whether c should be ignored by a trace or path query,
// per spec.md 4.1's eligibility rule: id in excludeIDs, or flags
// intersecting excludeFlags.
func (c Collidable) Excluded(excludeIDs map[uint32]bool, excludeFlags uint64) bool {
	if excludeIDs != nil && excludeIDs[c.ID] {
		return true
	}
	return c.HasAnyFlag(excludeFlags)
}
