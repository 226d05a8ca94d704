package service

import (
	"fmt"
	"strings"
)

type unitKind string

const (
	unitKindMass   unitKind = "mass"
	unitKindVolume unitKind = "volume"
)

type unitDef struct {
	kind       unitKind
	toBaseUnit float64
}

var unitTable = map[string]unitDef{
	// mass (base = g)
	"mg":    {kind: unitKindMass, toBaseUnit: 0.001},
	"g":     {kind: unitKindMass, toBaseUnit: 1},
	"gram":  {kind: unitKindMass, toBaseUnit: 1},
	"grams": {kind: unitKindMass, toBaseUnit: 1},
	"kg":    {kind: unitKindMass, toBaseUnit: 1000},
	"oz":    {kind: unitKindMass, toBaseUnit: 28.349523125},
	"lb":    {kind: unitKindMass, toBaseUnit: 453.59237},
	"lbs":   {kind: unitKindMass, toBaseUnit: 453.59237},

	// volume (base = ml)
	"ml":    {kind: unitKindVolume, toBaseUnit: 1},
	"cl":    {kind: unitKindVolume, toBaseUnit: 10},
	"l":     {kind: unitKindVolume, toBaseUnit: 1000},
	"tsp":   {kind: unitKindVolume, toBaseUnit: 4.92892159375},
	"tbsp":  {kind: unitKindVolume, toBaseUnit: 14.78676478125},
	"cup":   {kind: unitKindVolume, toBaseUnit: 236.5882365},
	"fl-oz": {kind: unitKindVolume, toBaseUnit: 29.5735295625},
}

// NormalizeServing converts mass servings to grams and volume servings to
// millilitres. Units outside the table (e.g. "slice", "serving") pass through
// unchanged, since the backend accepts free-form serving units.
func NormalizeServing(size float64, unit string) (float64, string, error) {
	if size < 0 {
		return 0, "", fmt.Errorf("serving size must be >= 0")
	}
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return size, "g", nil
	}
	def, ok := unitTable[u]
	if !ok {
		return size, strings.TrimSpace(unit), nil
	}
	base := "g"
	if def.kind == unitKindVolume {
		base = "ml"
	}
	return size * def.toBaseUnit, base, nil
}

// ToGrams converts a mass amount to grams. Volume units need a positive
// density in g/ml.
func ToGrams(amount float64, unit string, densityGML float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be > 0")
	}
	def, ok := unitTable[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", unit)
	}
	if def.kind == unitKindMass {
		return amount * def.toBaseUnit, nil
	}
	if densityGML <= 0 {
		return 0, fmt.Errorf("density-g-per-ml must be > 0 for volume amounts")
	}
	return amount * def.toBaseUnit * densityGML, nil
}
