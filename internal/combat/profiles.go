package combat

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultProfilesYAML []byte

// UnitCombatProfile is the immutable combat data for one unit type.
type UnitCombatProfile struct {
	AttackModifier    int     `json:"attack_modifier" yaml:"attack_modifier"`
	DefenseThreshold  int     `json:"defense_threshold" yaml:"defense_threshold"`
	HullPoints        int     `json:"hull_points" yaml:"hull_points"`
	UnitsPerHullPoint float64 `json:"units_per_hull_point" yaml:"units_per_hull_point"`
	AttackPower       float64 `json:"attack_power" yaml:"attack_power"`
	DefensePower      float64 `json:"defense_power" yaml:"defense_power"`
}

// ProfileTable is the read-only unit statistics table. It is built once at
// startup and shared by every engagement.
type ProfileTable struct {
	profiles map[UnitType]UnitCombatProfile
}

// NewProfileTable validates the given profiles and returns a table holding a
// private copy of them. A table may omit unit types; referencing an omitted
// type during a battle is reported as ErrMissingUnitProfile.
func NewProfileTable(profiles map[UnitType]UnitCombatProfile) (*ProfileTable, error) {
	table := &ProfileTable{profiles: make(map[UnitType]UnitCombatProfile, len(profiles))}

	for unit, profile := range profiles {
		if !slices.Contains(UnitTypes, unit) {
			return nil, fmt.Errorf("%w: unknown unit type %q", ErrInvalidUnitProfile, unit)
		}
		if profile.HullPoints <= 0 {
			return nil, fmt.Errorf("%w: %s hull_points must be positive", ErrInvalidUnitProfile, unit)
		}
		if profile.UnitsPerHullPoint < 0 || profile.AttackPower < 0 || profile.DefensePower < 0 {
			return nil, fmt.Errorf("%w: %s has negative ratings", ErrInvalidUnitProfile, unit)
		}
		if profile.UnitsPerHullPoint == 0 {
			profile.UnitsPerHullPoint = 1 / float64(profile.HullPoints)
		}
		table.profiles[unit] = profile
	}

	return table, nil
}

// LoadProfiles decodes a YAML unit statistics table keyed by unit type.
func LoadProfiles(r io.Reader) (*ProfileTable, error) {
	var raw map[UnitType]UnitCombatProfile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode unit profiles: %w", err)
	}
	return NewProfileTable(raw)
}

// LoadProfilesFile reads the unit statistics table from path.
func LoadProfilesFile(path string) (*ProfileTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open unit profiles: %w", err)
	}
	defer file.Close()

	return LoadProfiles(file)
}

// DefaultProfiles returns the built-in unit statistics table.
func DefaultProfiles() *ProfileTable {
	var raw map[UnitType]UnitCombatProfile
	if err := yaml.Unmarshal(defaultProfilesYAML, &raw); err != nil {
		panic(fmt.Sprintf("combat: embedded unit profiles are invalid: %v", err))
	}
	table, err := NewProfileTable(raw)
	if err != nil {
		panic(fmt.Sprintf("combat: embedded unit profiles are invalid: %v", err))
	}
	return table
}

// Lookup returns the profile for unit or ErrMissingUnitProfile.
func (t *ProfileTable) Lookup(unit UnitType) (UnitCombatProfile, error) {
	profile, ok := t.profiles[unit]
	if !ok {
		return UnitCombatProfile{}, fmt.Errorf("%w: %s", ErrMissingUnitProfile, unit)
	}
	return profile, nil
}

// Require checks that every unit type present in force has a profile.
func (t *ProfileTable) Require(force Force) error {
	for _, unit := range UnitTypes {
		if force.Count(unit) == 0 {
			continue
		}
		if _, err := t.Lookup(unit); err != nil {
			return err
		}
	}
	return nil
}

// Units returns the unit types described by the table in canonical order.
func (t *ProfileTable) Units() []UnitType {
	units := make([]UnitType, 0, len(t.profiles))
	for _, unit := range UnitTypes {
		if _, ok := t.profiles[unit]; ok {
			units = append(units, unit)
		}
	}
	return units
}

// hull returns the total hull points of a force. Callers must Require the
// force first.
func (t *ProfileTable) hull(force Force) int {
	total := 0
	for _, unit := range UnitTypes {
		if count := force.Count(unit); count > 0 {
			total += count * t.profiles[unit].HullPoints
		}
	}
	return total
}

// meanDefense returns the count-weighted defense threshold of force rounded
// half up, or zero for an empty force.
func (t *ProfileTable) meanDefense(force Force) int {
	units, weighted := 0, 0
	for _, unit := range UnitTypes {
		count := force.Count(unit)
		if count == 0 {
			continue
		}
		units += count
		weighted += count * t.profiles[unit].DefenseThreshold
	}
	if units == 0 {
		return 0
	}
	return (2*weighted + units) / (2 * units)
}
