package snake

import (
	"fmt"
	"math/rand"
)

// Board limits, large enough for any terminal
const (
	MinSize = 2
	MaxSize = 200
)

// State is one session's board. Only the tick loop mutates it
type State struct {
	Width, Height int

	// Snake is ordered head first, cells are unique
	Snake []Point
	Food  Point
	Score int

	// Dir is the heading applied on the next Step
	Dir Direction

	// GameOver is monotonic
	GameOver bool

	// Won is set when the snake fills the board and no food cell remains
	Won bool

	// heading is the direction of the last completed move, the reversal reference
	heading Direction
	body    map[Point]struct{}
	rng     *rand.Rand
}

// StepResult reports what one Step did
type StepResult struct {
	Ate      bool
	Collided bool
}

// NewState places a one-cell snake at the board center heading right, and spawns food
func NewState(width, height int, rng *rand.Rand) (*State, error) {
	if width < MinSize || height < 1 || width > MaxSize || height > MaxSize || width*height < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBoard, width, height)
	}

	s := &State{
		Width:   width,
		Height:  height,
		Dir:     Right,
		heading: Right,
		rng:     rng,
	}
	s.setSnake([]Point{{X: width / 2, Y: height / 2}})
	s.spawnFood()
	return s, nil
}

// setSnake replaces the body and rebuilds the occupancy set
func (s *State) setSnake(cells []Point) {
	s.Snake = append(s.Snake[:0], cells...)
	s.body = make(map[Point]struct{}, len(cells)+1)
	for _, c := range cells {
		s.body[c] = struct{}{}
	}
}

// Head returns the first snake cell
func (s *State) Head() Point {
	return s.Snake[0]
}

// Occupied reports whether p is a snake cell
func (s *State) Occupied(p Point) bool {
	_, ok := s.body[p]
	return ok
}

// Turn sets the heading for the next Step, rejecting the exact reverse of the last move
func (s *State) Turn(d Direction) bool {
	if d == s.heading.Opposite() {
		return false
	}
	s.Dir = d
	return true
}

// Apply folds a drained intent batch in arrival order
// Direction intents go through Turn; a quit anywhere in the batch ends the game
func (s *State) Apply(batch []Intent) (quit bool) {
	for _, in := range batch {
		switch in {
		case IntentUp:
			s.Turn(Up)
		case IntentDown:
			s.Turn(Down)
		case IntentLeft:
			s.Turn(Left)
		case IntentRight:
			s.Turn(Right)
		case IntentQuit:
			quit = true
		}
	}
	if quit {
		s.GameOver = true
	}
	return quit
}

// Step advances one cell along Dir on the torus
// On collision the snake is left untouched and GameOver is set
func (s *State) Step() StepResult {
	if s.GameOver {
		return StepResult{}
	}

	head := s.Head().Add(s.Dir, s.Width, s.Height)
	s.heading = s.Dir

	if s.Occupied(head) {
		s.GameOver = true
		return StepResult{Collided: true}
	}

	s.Snake = append(s.Snake, Point{})
	copy(s.Snake[1:], s.Snake)
	s.Snake[0] = head
	s.body[head] = struct{}{}

	if head == s.Food {
		s.Score++
		if !s.spawnFood() {
			s.GameOver = true
			s.Won = true
		}
		return StepResult{Ate: true}
	}

	tail := s.Snake[len(s.Snake)-1]
	s.Snake = s.Snake[:len(s.Snake)-1]
	delete(s.body, tail)
	return StepResult{}
}

// spawnFood samples uniformly until a free cell is hit, falling back to an explicit free list
// when the board is dense. Returns false when no free cell exists
func (s *State) spawnFood() bool {
	cells := s.Width * s.Height
	free := cells - len(s.body)
	if free <= 0 {
		return false
	}

	for range 4 * cells / free {
		p := Point{X: s.rng.Intn(s.Width), Y: s.rng.Intn(s.Height)}
		if !s.Occupied(p) {
			s.Food = p
			return true
		}
	}

	candidates := make([]Point, 0, free)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if p := (Point{X: x, Y: y}); !s.Occupied(p) {
				candidates = append(candidates, p)
			}
		}
	}
	s.Food = candidates[s.rng.Intn(len(candidates))]
	return true
}
