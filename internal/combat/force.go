package combat

import "fmt"

// UnitType identifies one of the six force classes.
type UnitType string

const (
	UnitGround          UnitType = "ground"
	UnitLightAir        UnitType = "light_air"
	UnitDefensePlatform UnitType = "defense_platform"
	UnitLightCruiser    UnitType = "light_cruiser"
	UnitHeavyCruiser    UnitType = "heavy_cruiser"
	UnitCarrier         UnitType = "carrier"
)

// UnitTypes lists every unit type in canonical order. Rolls, casualty
// allocation and reports always walk unit types in this order.
var UnitTypes = []UnitType{
	UnitGround,
	UnitLightAir,
	UnitDefensePlatform,
	UnitLightCruiser,
	UnitHeavyCruiser,
	UnitCarrier,
}

// spaceUnits are the classes counted for space dominance.
var spaceUnits = []UnitType{UnitLightAir, UnitLightCruiser, UnitHeavyCruiser, UnitCarrier}

// Force is a value-typed vector of unit counts. Every method returns a new
// Force; none of them mutate the receiver.
type Force struct {
	Ground          int `json:"ground" yaml:"ground"`
	LightAir        int `json:"light_air" yaml:"light_air"`
	DefensePlatform int `json:"defense_platform" yaml:"defense_platform"`
	LightCruiser    int `json:"light_cruiser" yaml:"light_cruiser"`
	HeavyCruiser    int `json:"heavy_cruiser" yaml:"heavy_cruiser"`
	Carrier         int `json:"carrier" yaml:"carrier"`
}

// Count returns the number of units of the given type.
func (f Force) Count(unit UnitType) int {
	switch unit {
	case UnitGround:
		return f.Ground
	case UnitLightAir:
		return f.LightAir
	case UnitDefensePlatform:
		return f.DefensePlatform
	case UnitLightCruiser:
		return f.LightCruiser
	case UnitHeavyCruiser:
		return f.HeavyCruiser
	case UnitCarrier:
		return f.Carrier
	default:
		return 0
	}
}

// With returns a copy of f with the count for unit replaced. Negative counts
// are stored as zero.
func (f Force) With(unit UnitType, count int) Force {
	if count < 0 {
		count = 0
	}
	switch unit {
	case UnitGround:
		f.Ground = count
	case UnitLightAir:
		f.LightAir = count
	case UnitDefensePlatform:
		f.DefensePlatform = count
	case UnitLightCruiser:
		f.LightCruiser = count
	case UnitHeavyCruiser:
		f.HeavyCruiser = count
	case UnitCarrier:
		f.Carrier = count
	}
	return f
}

// Add returns the per-type sum of f and other.
func (f Force) Add(other Force) Force {
	out := Force{}
	for _, unit := range UnitTypes {
		out = out.With(unit, f.Count(unit)+other.Count(unit))
	}
	return out
}

// Sub returns the per-type difference, floored at zero.
func (f Force) Sub(other Force) Force {
	out := Force{}
	for _, unit := range UnitTypes {
		out = out.With(unit, f.Count(unit)-other.Count(unit))
	}
	return out
}

// Min returns the per-type minimum of f and limit.
func (f Force) Min(limit Force) Force {
	out := Force{}
	for _, unit := range UnitTypes {
		out = out.With(unit, min(f.Count(unit), limit.Count(unit)))
	}
	return out
}

// Scale multiplies every count by factor and floors the result.
func (f Force) Scale(factor float64) Force {
	out := Force{}
	for _, unit := range UnitTypes {
		out = out.With(unit, floorInt(float64(f.Count(unit))*factor))
	}
	return out
}

// Total returns the number of units across all types.
func (f Force) Total() int {
	total := 0
	for _, unit := range UnitTypes {
		total += f.Count(unit)
	}
	return total
}

// IsEmpty reports whether the force has no units at all.
func (f Force) IsEmpty() bool {
	return f.Total() == 0
}

// SpaceUnits returns the number of space-class units.
func (f Force) SpaceUnits() int {
	total := 0
	for _, unit := range spaceUnits {
		total += f.Count(unit)
	}
	return total
}

// Validate rejects negative unit counts.
func (f Force) Validate() error {
	for _, unit := range UnitTypes {
		if f.Count(unit) < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeUnitCount, unit, f.Count(unit))
		}
	}
	return nil
}

func (f Force) String() string {
	return fmt.Sprintf("ground=%d light_air=%d defense_platform=%d light_cruiser=%d heavy_cruiser=%d carrier=%d",
		f.Ground, f.LightAir, f.DefensePlatform, f.LightCruiser, f.HeavyCruiser, f.Carrier)
}
