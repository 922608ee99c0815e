// Package domain defines the town record, its identity token and the sentinel
// values and errors shared by the registry, its services and adapters.
package domain

import (
	"math"
	"slices"
)

// TownID identifies a town. It is an opaque token; the registry only compares
// it for equality and orders it lexicographically when a sorted view is asked for.
type TownID string

// Sentinel values returned by keyed queries when the town is unknown.
const (
	// NoID is returned where a TownID was expected but none exists.
	NoID TownID = "----------"
	// NoValue is returned where an integer attribute was expected but none exists.
	NoValue = math.MinInt
	// NoName is returned where a town name was expected but none exists.
	NoName = "-- unknown --"
)

// Coord is an integer grid position.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoCoord is returned for coordinates of an unknown town.
var NoCoord = Coord{X: NoValue, Y: NoValue}

// MaxCoord bounds the absolute value of a coordinate. Within ±MaxCoord every
// distance Manhattan and ManhattanBetween compute fits in an int.
const MaxCoord = math.MaxInt / 4

// InRange reports whether both coordinates lie within ±MaxCoord.
func InRange(x, y int) bool {
	return x >= -MaxCoord && x <= MaxCoord && y >= -MaxCoord && y <= MaxCoord
}

// Manhattan returns |x| + |y|. Both coordinates must be InRange.
func Manhattan(x, y int) int {
	return abs(x) + abs(y)
}

// ManhattanBetween returns the Manhattan distance between two positions. Both
// must be InRange.
func ManhattanBetween(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Town is a registered town. Distance is derived from the coordinates at
// creation time and never changes afterwards. Master and Vassals hold
// identity-keyed edges of the master/vassal hierarchy; a root town has
// Master == NoID.
type Town struct {
	ID       TownID   `json:"id"`
	Name     string   `json:"name"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Distance int      `json:"distance"`
	Tax      int      `json:"tax"`
	Master   TownID   `json:"master"`
	Vassals  []TownID `json:"vassals"`
}

// NewTown builds a root town with its distance derived from x and y.
func NewTown(id TownID, name string, x, y, tax int) Town {
	return Town{
		ID:       id,
		Name:     name,
		X:        x,
		Y:        y,
		Distance: Manhattan(x, y),
		Tax:      tax,
		Master:   NoID,
	}
}

// Coord returns the town position.
func (t Town) Coord() Coord {
	return Coord{X: t.X, Y: t.Y}
}

// HasMaster reports whether the town is a vassal of another town.
func (t Town) HasMaster() bool {
	return t.Master != NoID && t.Master != ""
}

// Clone returns a deep copy so callers cannot alias the vassal slice.
func (t Town) Clone() Town {
	t.Vassals = slices.Clone(t.Vassals)
	return t
}
