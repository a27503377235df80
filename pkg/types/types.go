package types

import "fmt"

// MaxNameLen is the longest sensor name, in bytes, kept by the store.
// Longer names are truncated on a UTF-8 boundary.
const MaxNameLen = 254

// Record is one parsed input row: a sensor value observed at a time of day.
type Record struct {
	// Time is minutes since midnight.
	Time  int
	Name  string
	Value float64
}

// Reading is the latest known state of one sensor inside a Group.
type Reading struct {
	Name  string
	Time  int // minutes since midnight of the last update
	Value float64
}

// Group identifies which collection a Reading currently belongs to.
type Group int

const (
	Valid Group = iota
	OutOfRange
	Stuck
)

// Groups lists every Group in lookup and reporting order.
var Groups = []Group{Valid, OutOfRange, Stuck}

// String returns the long group name used in logs.
func (g Group) String() string {
	switch g {
	case Valid:
		return "valid"
	case OutOfRange:
		return "out_of_range"
	case Stuck:
		return "stuck"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Label returns the short status label used in the text report.
func (g Group) Label() string {
	switch g {
	case Valid:
		return "Valid"
	case OutOfRange:
		return "OOR"
	case Stuck:
		return "Stuck"
	default:
		return "ERROR"
	}
}

// ClockString renders minutes since midnight as HHMM, e.g. 570 -> "0930".
func ClockString(minutes int) string {
	return fmt.Sprintf("%02d%02d", minutes/60, minutes%60)
}
