package smiles

import (
	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// piRole describes what an aromatic atom needs from the Kekulé assignment.
type piRole int

const (
	piNone     piRole = iota // saturated or lone-pair donor
	piRequired               // must take exactly one double bond
	piOptional               // element outside the valence table
)

// checkKekulizable verifies that every aromatic system admits a Kekulé
// structure: each aromatic atom short of its valence is paired with exactly
// one aromatic neighbour through a double bond.  Systems are solved one
// connected component at a time.
func checkKekulizable(m *Molecule) error {
	roles := make([]piRole, len(m.Atoms))
	for i, a := range m.Atoms {
		if !a.Aromatic {
			continue
		}
		role, err := aromaticRole(m, i)
		if err != nil {
			return err
		}
		roles[i] = role
	}

	matched := make([]bool, len(m.Atoms))
	seen := make([]bool, len(m.Atoms))
	for start, a := range m.Atoms {
		if !a.Aromatic || seen[start] {
			continue
		}
		required, optional := aromaticComponent(m, start, roles, seen)
		if len(required) == 0 {
			continue
		}
		if optional == 0 && len(required)%2 == 1 {
			return kekuleError(required[0])
		}
		if !matchPiBonds(m, required, 0, roles, matched) {
			return kekuleError(required[0])
		}
	}
	return nil
}

// aromaticRole classifies aromatic atom i and rejects atoms whose bonds
// leave no room in the π system.
func aromaticRole(m *Molecule, i int) (piRole, error) {
	a := m.Atoms[i]
	valences := allowedValences(a)
	if len(valences) == 0 {
		return piOptional, nil
	}
	used := m.bondValence(i) + a.HCount

	for _, bi := range m.adj[i] {
		if m.Bonds[bi].Order != BondAromatic && m.Bonds[bi].Order != BondSingle {
			if used > valences[len(valences)-1] {
				return piNone, valenceError(i, a, used)
			}
			return piNone, nil
		}
	}

	for _, v := range valences {
		switch {
		case v == used && a.Element == "C" && a.Charge == 0:
			return piNone, valenceError(i, a, used+1)
		case v == used:
			return piNone, nil
		case v > used:
			return piRequired, nil
		}
	}
	return piNone, valenceError(i, a, used+1)
}

// aromaticComponent collects the atoms joined to start through aromatic
// bonds, returning the ones that need a double bond and a count of the
// optional ones.
func aromaticComponent(m *Molecule, start int, roles []piRole, seen []bool) ([]int, int) {
	var required []int
	optional := 0
	stack := []int{start}
	seen[start] = true
	for len(stack) > 0 {
		at := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch roles[at] {
		case piRequired:
			required = append(required, at)
		case piOptional:
			optional++
		}
		for _, bi := range m.adj[at] {
			b := m.Bonds[bi]
			if b.Order != BondAromatic {
				continue
			}
			if next := b.Other(at); !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return required, optional
}

// matchPiBonds pairs required[k:] with free aromatic neighbours by
// backtracking.
func matchPiBonds(m *Molecule, required []int, k int, roles []piRole, matched []bool) bool {
	for k < len(required) && matched[required[k]] {
		k++
	}
	if k == len(required) {
		return true
	}
	at := required[k]
	for _, bi := range m.adj[at] {
		b := m.Bonds[bi]
		if b.Order != BondAromatic {
			continue
		}
		next := b.Other(at)
		if matched[next] || roles[next] == piNone {
			continue
		}
		matched[at], matched[next] = true, true
		if matchPiBonds(m, required, k+1, roles, matched) {
			return true
		}
		matched[at], matched[next] = false, false
	}
	return false
}

func kekuleError(atom int) error {
	return apperrors.Newf(apperrors.ErrCodeSMILESParse,
		"cannot kekulize aromatic system containing atom %d", atom)
}

//Personal.AI order the ending
