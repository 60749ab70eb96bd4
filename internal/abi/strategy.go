package abi

import "fmt"

// StrategyKind names the rewrite applied to a slot.
type StrategyKind uint8

const (
	StrategyNone StrategyKind = iota
	StrategyIndirectCopy
	StrategyIntegerBitcast
	StrategyLongDouble
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyNone:
		return "none"
	case StrategyIndirectCopy:
		return "indirect"
	case StrategyIntegerBitcast:
		return "bitcast"
	case StrategyLongDouble:
		return "longdouble"
	default:
		return fmt.Sprintf("StrategyKind(%d)", k)
	}
}

// Strategy is the rewrite decision for one slot.
type Strategy struct {
	Kind  StrategyKind
	Align int // IndirectCopy only
	Width int // IntegerBitcast only, in bits
}

func (s Strategy) String() string {
	switch s.Kind {
	case StrategyIndirectCopy:
		return fmt.Sprintf("indirect(align=%d)", s.Align)
	case StrategyIntegerBitcast:
		return fmt.Sprintf("bitcast(i%d)", s.Width)
	default:
		return s.Kind.String()
	}
}
