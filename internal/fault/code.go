package fault

import "fmt"

// Code is a classified fault identifier carried by the fault signal.
type Code int

// Fixed codes raised by the fault detector, one per anomaly class.
const (
	CodeTimingViolation   Code = 700
	CodeMemoryCorruption  Code = 800
	CodeValidationFailure Code = 900
)

// Intrinsic codes raised by the primary worker fall in [IntrinsicMin, IntrinsicMax).
const (
	IntrinsicMin Code = 100
	IntrinsicMax Code = 199
)

// Band is the range a code belongs to.
type Band string

const (
	BandIntrinsic  Band = "intrinsic"
	BandTiming     Band = "timing"
	BandCorruption Band = "corruption"
	BandValidation Band = "validation"
	BandUnknown    Band = "unknown"
)

// BandInfo describes one band of the fault code table.
type BandInfo struct {
	Band    Band
	Min     Code
	Max     Code
	Meaning string
	Action  Action
}

// Bands is the fault code table, ordered by code.
var Bands = []BandInfo{
	{BandIntrinsic, 100, 199, "Intrinsic computation fault", ActionRollback},
	{BandTiming, 700, 799, "Timing violation", ActionTimingAdjust},
	{BandCorruption, 800, 899, "Memory/state corruption", ActionRedundant},
	{BandValidation, 900, 999, "Validation failure", ActionRedundant},
}

// Band classifies c. Bounds are inclusive.
func (c Code) Band() Band {
	for _, b := range Bands {
		if c >= b.Min && c <= b.Max {
			return b.Band
		}
	}
	return BandUnknown
}

// Known reports whether c falls into one of the defined bands.
func (c Code) Known() bool {
	return c.Band() != BandUnknown
}

func (c Code) String() string {
	return fmt.Sprintf("%d", int(c))
}

// Action is the recovery strategy applied to a fault.
type Action string

const (
	ActionRollback     Action = "rollback"
	ActionTimingAdjust Action = "timing-adjust"
	ActionRedundant    Action = "redundant-computation"
)

// SelectAction picks the recovery action for c. Checks run 100–199 first,
// then 700–799; everything else, including unknown codes, falls back to
// redundant computation.
func SelectAction(c Code) Action {
	switch {
	case c >= 100 && c < 200:
		return ActionRollback
	case c >= 700 && c < 800:
		return ActionTimingAdjust
	default:
		return ActionRedundant
	}
}
