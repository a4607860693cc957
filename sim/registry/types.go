// Package registry is the in-memory store of persons, households, dwellings,
// jobs and schools. Records are indexed by integer id and never hold pointers
// to each other; every link is an id that the Registry keeps consistent on both
// sides, together with the vacancy index and the quality-share tracker.
//
// The registry is NOT thread-safe. The scheduler applies events sequentially.
package registry

import (
	"fmt"
	"strings"
)

// NoID marks an unset id reference (homeless household, unemployed person, ...).
const NoID = -1

// AdultAge is the age from which a person counts as an adult for the
// household dissolution invariant.
const AdultAge = 18

// Sex of a person.
type Sex int

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// Opposite returns the other sex.
func (s Sex) Opposite() Sex {
	if s == Female {
		return Male
	}
	return Female
}

// Role of a person inside their household.
type Role int

const (
	RoleSingle Role = iota
	RoleMarried
	RoleChild
)

func (r Role) String() string {
	switch r {
	case RoleMarried:
		return "married"
	case RoleChild:
		return "child"
	default:
		return "single"
	}
}

// Occupation state of a person.
type Occupation int

const (
	Toddler Occupation = iota
	Student
	Employed
	Unemployed
	Retiree
)

func (o Occupation) String() string {
	switch o {
	case Toddler:
		return "toddler"
	case Student:
		return "student"
	case Employed:
		return "employed"
	case Unemployed:
		return "unemployed"
	case Retiree:
		return "retiree"
	default:
		return fmt.Sprintf("occupation(%d)", int(o))
	}
}

// DwellingType classifies the structure a dwelling belongs to.
type DwellingType int

const (
	SFD     DwellingType = iota // single-family detached
	SFA                         // single-family attached
	MF234                       // multi-family, 2-4 units
	MF5plus                     // multi-family, 5+ units
	MH                          // mobile home
)

var dwellingTypeNames = []string{"SFD", "SFA", "MF234", "MF5plus", "MH"}

func (t DwellingType) String() string {
	if t < 0 || int(t) >= len(dwellingTypeNames) {
		return fmt.Sprintf("DwellingType(%d)", int(t))
	}
	return dwellingTypeNames[t]
}

// Valid reports whether t is one of the known dwelling types.
func (t DwellingType) Valid() bool {
	return t >= 0 && int(t) < len(dwellingTypeNames)
}

// DwellingTypes returns all dwelling types in canonical order.
func DwellingTypes() []DwellingType {
	return []DwellingType{SFD, SFA, MF234, MF5plus, MH}
}

// DwellingTypeFromName parses a dwelling type name (case-insensitive).
func DwellingTypeFromName(name string) (DwellingType, error) {
	for i, n := range dwellingTypeNames {
		if strings.EqualFold(n, name) {
			return DwellingType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dwelling type %q; valid: %s", name, strings.Join(dwellingTypeNames, ", "))
}
