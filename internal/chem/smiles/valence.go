package smiles

import (
	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// bracketValences widens the organic table for elements that may be
// hypervalent when written in brackets.
var bracketValences = map[string][]int{
	"Cl": {1, 3, 5, 7},
	"Br": {1, 3, 5, 7},
	"I":  {1, 3, 5, 7},
}

// implicitHydrogens returns the hydrogen count an organic-subset atom would
// receive when written without brackets, given its current bonds.
//
// Aliphatic atoms take the lowest default valence that accommodates their
// bonds.  Aromatic atoms take the lowest default valence less one for the π
// system.
func implicitHydrogens(m *Molecule, atom int) int {
	a := m.Atoms[atom]
	valences := organicValences[a.Element]
	if len(valences) == 0 {
		return 0
	}
	sum := m.bondValence(atom)
	if a.Aromatic {
		h := valences[0] - sum - 1
		if h < 0 {
			return 0
		}
		return h
	}
	for _, v := range valences {
		if v >= sum {
			return v - sum
		}
	}
	return 0
}

// assignImplicitHydrogens fills HCount for atoms written outside brackets.
// It runs on the bonds as written, before aromaticity perception.
func assignImplicitHydrogens(m *Molecule) {
	for i := range m.Atoms {
		if m.Atoms[i].HCount < 0 {
			m.Atoms[i].HCount = implicitHydrogens(m, i)
		}
	}
}

// allowedValences returns the valences atom a may take, lowest first, or nil
// when the element and charge are outside the table and no limit applies.
// Singly charged atoms take the valences of their isoelectronic neighbour.
func allowedValences(a Atom) []int {
	if a.Charge == 0 {
		if a.Bracket {
			if v, ok := bracketValences[a.Element]; ok {
				return v
			}
		}
		return organicValences[a.Element]
	}
	if a.Charge < -1 || a.Charge > 1 {
		return nil
	}
	switch a.Element {
	case "C":
		return []int{3}
	case "B", "N":
		return []int{3 + a.Charge}
	case "P":
		return []int{3 + a.Charge, 5 + a.Charge}
	case "O":
		return []int{2 + a.Charge}
	case "S":
		return []int{2 + a.Charge, 4 + a.Charge}
	}
	return nil
}

// checkValences rejects aliphatic atoms whose bonds and hydrogens exceed the
// largest valence the element allows.  Aromatic atoms are checked during
// kekulization.
func checkValences(m *Molecule) error {
	for i, a := range m.Atoms {
		if a.Aromatic {
			continue
		}
		valences := allowedValences(a)
		if len(valences) == 0 {
			continue
		}
		if used := m.bondValence(i) + a.HCount; used > valences[len(valences)-1] {
			return valenceError(i, a, used)
		}
	}
	return nil
}

func valenceError(atom int, a Atom, used int) error {
	return apperrors.Newf(apperrors.ErrCodeSMILESParse,
		"valence exceeded on atom %d (%s): %d", atom, a.Element, used)
}

// isOrganic reports whether the atom may be written without brackets when
// its hydrogen count matches the implicit count.
func isOrganic(a Atom) bool {
	if _, ok := organicValences[a.Element]; !ok {
		return false
	}
	if a.Aromatic && !aromaticOrganic[a.Element] {
		return false
	}
	return a.Isotope == 0 && a.Charge == 0 && a.Class == 0
}

//Personal.AI order the ending
