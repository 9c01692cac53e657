// Package navigate moves between questions inside an ordered subset of
// question indices (bookmarked, incorrect or incomplete questions).
package navigate

import "fmt"

// Direction is a relative navigation request.
type Direction int

const (
	First Direction = iota
	Prev
	Next
	Last
)

// ParseDirection converts the wire name of a direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "first":
		return First, nil
	case "prev":
		return Prev, nil
	case "next":
		return Next, nil
	case "last":
		return Last, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) String() string {
	switch d {
	case First:
		return "first"
	case Prev:
		return "prev"
	case Next:
		return "next"
	case Last:
		return "last"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Target returns the index a direction points at over the full range
// [0, n) starting from current. The result may be out of range; callers
// reject those.
func Target(current, n int, dir Direction) int {
	switch dir {
	case First:
		return 0
	case Prev:
		return current - 1
	case Next:
		return current + 1
	case Last:
		return n - 1
	}
	return current
}

// Step returns the element of subset that dir points at relative to
// current. subset must be sorted ascending. ok is false when there is no
// movement: no element in that direction, an empty subset, or a subset of
// one element, which cannot be navigated away from.
func Step(subset []int, current int, dir Direction) (next int, ok bool) {
	if len(subset) <= 1 {
		return current, false
	}
	switch dir {
	case First:
		return subset[0], true
	case Last:
		return subset[len(subset)-1], true
	case Prev:
		for i := len(subset) - 1; i >= 0; i-- {
			if subset[i] < current {
				return subset[i], true
			}
		}
	case Next:
		for _, v := range subset {
			if v > current {
				return v, true
			}
		}
	}
	return current, false
}
