package entity

// Type identifies the behaviour an entity follows. The order matters: collision handlers sort the two
// entities of a pair by type before matching on it.
type Type uint8

const (
	TypeNull Type = iota
	TypeSpace
	TypeHero
	TypeWall
	TypeFamiliar
	TypeMonstar
	TypeSword
	TypeStairwell
)

var typeNames = [...]string{
	TypeNull:      "null",
	TypeSpace:     "space",
	TypeHero:      "hero",
	TypeWall:      "wall",
	TypeFamiliar:  "familiar",
	TypeMonstar:   "monstar",
	TypeSword:     "sword",
	TypeStairwell: "stairwell",
}

// String ...
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Flags is a bit set of entity properties.
type Flags uint32

const (
	// FlagCollides marks an entity as solid.
	FlagCollides Flags = 1 << iota
	// FlagNonspatial marks an entity that exists outside the spatial index, such as a sword in its
	// owner's hand.
	FlagNonspatial
	// FlagMoveable marks an entity the solver may move.
	FlagMoveable
	// FlagZSupported is set while an entity rests on the ground.
	FlagZSupported
	// FlagTraversable marks an entity whose volume movers may stand inside but not leave.
	FlagTraversable

	// FlagSimming is set on the stored copy of an entity while a simulation region owns it.
	FlagSimming Flags = 1 << 30
)
