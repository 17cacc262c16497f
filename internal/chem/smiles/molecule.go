package smiles

// BondOrder is the order of a bond as written or perceived.
type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondQuadruple
	BondAromatic
)

// valence returns the bond's contribution to an atom's valence.  Aromatic
// bonds count once; the extra π electron is accounted for per atom.
func (o BondOrder) valence() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	default:
		return 1
	}
}

// symbol returns the explicit SMILES bond symbol.
func (o BondOrder) symbol() string {
	switch o {
	case BondSingle:
		return "-"
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	case BondAromatic:
		return ":"
	default:
		return ""
	}
}

// Atom is a vertex of the molecular graph.
type Atom struct {
	Element  string // capitalised symbol, "*" for the wildcard
	Number   int
	Aromatic bool
	Bracket  bool // written in brackets in the source
	Isotope  int
	Charge   int
	HCount   int // total attached hydrogens, explicit or implicit
	Class    int
	Chiral   string // parsed, not rendered
}

// Bond is an edge of the molecular graph.
type Bond struct {
	A, B   int
	Order  BondOrder
	InRing bool
}

// Other returns the atom at the opposite end of the bond from atom.
func (b Bond) Other(atom int) int {
	if b.A == atom {
		return b.B
	}
	return b.A
}

// Ring is one ring of the smallest set of smallest rings.
type Ring struct {
	Atoms []int
	Bonds []int
}

// Molecule is a parsed molecular graph.  It is immutable once returned by
// Parse.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond
	Rings []Ring

	adj [][]int // atom index -> incident bond indices
}

func (m *Molecule) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

func (m *Molecule) addBond(a, b int, order BondOrder) int {
	m.Bonds = append(m.Bonds, Bond{A: a, B: b, Order: order})
	idx := len(m.Bonds) - 1
	m.adj[a] = append(m.adj[a], idx)
	m.adj[b] = append(m.adj[b], idx)
	return idx
}

// BondBetween returns the index of the bond joining a and b, or -1.
func (m *Molecule) BondBetween(a, b int) int {
	for _, bi := range m.adj[a] {
		if m.Bonds[bi].Other(a) == b {
			return bi
		}
	}
	return -1
}

// Degree returns the number of explicit neighbours of atom.
func (m *Molecule) Degree(atom int) int {
	return len(m.adj[atom])
}

// bondValence sums the valence contributions of the bonds attached to atom.
func (m *Molecule) bondValence(atom int) int {
	sum := 0
	for _, bi := range m.adj[atom] {
		sum += m.Bonds[bi].Order.valence()
	}
	return sum
}

// components returns the connected components as atom index lists, each in
// ascending index order.
func (m *Molecule) components() [][]int {
	seen := make([]bool, len(m.Atoms))
	var out [][]int
	for start := range m.Atoms {
		if seen[start] {
			continue
		}
		var comp []int
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			a := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, a)
			for _, bi := range m.adj[a] {
				o := m.Bonds[bi].Other(a)
				if !seen[o] {
					seen[o] = true
					stack = append(stack, o)
				}
			}
		}
		out = append(out, comp)
	}
	return out
}

// CountAromaticRings returns the number of rings in the smallest set of
// smallest rings whose bonds are all aromatic.
func (m *Molecule) CountAromaticRings() int {
	n := 0
	for _, r := range m.Rings {
		aromatic := true
		for _, bi := range r.Bonds {
			if m.Bonds[bi].Order != BondAromatic {
				aromatic = false
				break
			}
		}
		if aromatic {
			n++
		}
	}
	return n
}

//Personal.AI order the ending
