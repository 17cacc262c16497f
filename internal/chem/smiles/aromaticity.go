package smiles

// perceiveAromaticity converts Kekulé rings that satisfy the 4n+2 rule into
// aromatic form.  Single rings are tried first and repeated until no further
// ring converts, since a fused ring may only qualify once its neighbour has.
// Pairs of fused rings sharing a bond are then tried as one system.  Aromatic
// bonds left outside any ring are demoted to single.
func perceiveAromaticity(m *Molecule) {
	for {
		changed := false
		for _, r := range m.Rings {
			if ringIsAromatic(m, r) {
				continue
			}
			if piElectronsAromatic(m, r.Atoms, r.Bonds) {
				markAromatic(m, r.Atoms, r.Bonds)
				changed = true
			}
		}
		for i := 0; i < len(m.Rings); i++ {
			for j := i + 1; j < len(m.Rings); j++ {
				ri, rj := m.Rings[i], m.Rings[j]
				if ringIsAromatic(m, ri) && ringIsAromatic(m, rj) {
					continue
				}
				if !shareBond(ri, rj) {
					continue
				}
				atoms := unionInts(ri.Atoms, rj.Atoms)
				bonds := unionInts(ri.Bonds, rj.Bonds)
				if piElectronsAromatic(m, atoms, bonds) {
					markAromatic(m, atoms, bonds)
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	for i := range m.Bonds {
		if m.Bonds[i].Order == BondAromatic && !m.Bonds[i].InRing {
			m.Bonds[i].Order = BondSingle
		}
	}
}

func ringIsAromatic(m *Molecule, r Ring) bool {
	for _, bi := range r.Bonds {
		if m.Bonds[bi].Order != BondAromatic {
			return false
		}
	}
	return true
}

func markAromatic(m *Molecule, atoms, bonds []int) {
	for _, a := range atoms {
		m.Atoms[a].Aromatic = true
	}
	for _, bi := range bonds {
		m.Bonds[bi].Order = BondAromatic
	}
}

// piElectronsAromatic counts the π electrons each atom donates to the ring
// system and applies Hückel's rule.
func piElectronsAromatic(m *Molecule, atoms, bonds []int) bool {
	inSystem := make(map[int]bool, len(bonds))
	for _, bi := range bonds {
		inSystem[bi] = true
	}
	total := 0
	for _, a := range atoms {
		e, ok := piContribution(m, a, inSystem)
		if !ok {
			return false
		}
		total += e
	}
	return total >= 2 && total%4 == 2
}

// piContribution returns the electrons atom a donates, or false when the
// atom cannot take part in an aromatic system.
func piContribution(m *Molecule, a int, inSystem map[int]bool) (int, bool) {
	atom := m.Atoms[a]
	connections := m.Degree(a) + atom.HCount

	if atom.Aromatic {
		switch atom.Element {
		case "O", "S", "Se", "Te":
			return 2, true
		case "N", "P", "As":
			if connections == 3 && atom.Charge == 0 {
				return 2, true
			}
		}
		return 1, true
	}

	internalDouble, exocyclicDouble := false, false
	exoTarget := ""
	for _, bi := range m.adj[a] {
		b := m.Bonds[bi]
		switch b.Order {
		case BondTriple, BondQuadruple:
			return 0, false
		case BondDouble:
			if inSystem[bi] {
				internalDouble = true
			} else {
				exocyclicDouble = true
				exoTarget = m.Atoms[b.Other(a)].Element
			}
		}
	}
	if internalDouble {
		return 1, true
	}
	if exocyclicDouble {
		switch exoTarget {
		case "O", "N", "S":
			return 0, true
		}
		return 0, false
	}

	switch atom.Element {
	case "N", "P", "As":
		if connections == 3 && atom.Charge == 0 {
			return 2, true
		}
	case "O", "S", "Se", "Te":
		if connections == 2 && atom.Charge == 0 {
			return 2, true
		}
	case "C":
		switch atom.Charge {
		case -1:
			return 2, true
		case 1:
			return 0, true
		}
	case "B":
		if connections == 3 && atom.Charge == 0 {
			return 0, true
		}
	}
	return 0, false
}

func shareBond(a, b Ring) bool {
	for _, x := range a.Bonds {
		for _, y := range b.Bonds {
			if x == y {
				return true
			}
		}
	}
	return false
}

func unionInts(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, s := range [][]int{a, b} {
		for _, v := range s {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

//Personal.AI order the ending
