package strategy

import "fmt"

// New builds a Strategy by name. Every variant is a zero-value struct; the
// registry exists so the cmd/ binaries can select one by string flag the
// way the teacher's createStrategy switch does.
func New(name string) (Strategy, error) {
	switch name {
	case "TrendFollowing":
		return TrendFollowing{}, nil
	case "MeanReversion":
		return MeanReversion{}, nil
	case "Breakout":
		return Breakout{}, nil
	case "MACDCrossover":
		return MACDCrossover{}, nil
	case "RSIDivergence":
		return RSIDivergence{}, nil
	case "DynamicPositionSizing":
		return DynamicPositionSizing{Base: TrendFollowing{}}, nil
	case "Wave3":
		return Wave3{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// Names lists every registered strategy, in registration order, for
// --help text and validation error messages.
func Names() []string {
	return []string{
		"TrendFollowing",
		"MeanReversion",
		"Breakout",
		"MACDCrossover",
		"RSIDivergence",
		"DynamicPositionSizing",
		"Wave3",
	}
}
