package snake

// Point is a board cell, X grows right and Y grows down
type Point struct {
	X, Y int
}

// Add returns p moved by d on a w×h torus
func (p Point) Add(d Direction, w, h int) Point {
	return Point{
		X: wrap(p.X+d.DX, w),
		Y: wrap(p.Y+d.DY, h),
	}
}

// wrap maps v into [0, n)
func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Direction is a unit vector along one axis
type Direction struct {
	DX, DY int
}

var (
	Up    = Direction{0, -1}
	Down  = Direction{0, 1}
	Left  = Direction{-1, 0}
	Right = Direction{1, 0}
)

// Opposite returns the reverse vector
func (d Direction) Opposite() Direction {
	return Direction{-d.DX, -d.DY}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}
