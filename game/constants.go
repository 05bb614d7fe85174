package game

const (
	HeroSpeed = float32(50)
	HeroDrag  = float32(8)

	SwordThrowSpeed = float32(5)
	SwordRange      = float32(5)

	FamiliarSpeed        = float32(50)
	FamiliarDrag         = float32(8)
	FamiliarAcceleration = float32(0.5)
	FamiliarSeekRadius   = float32(10)
	FamiliarStopRadius   = float32(3)

	HeroHitPoints    = 3
	MonstarHitPoints = 3

	// StairWalkableTiles is how many tiles a stairwell spans along Y.
	StairWalkableTiles = 2
	// RoomHeightFactor scales the tile depth to get the height of a room's space.
	RoomHeightFactor = float32(0.9)
	// StairHeightFactor scales the tile depth to get the height of a stairwell's volume.
	StairHeightFactor = float32(1.1)
)
