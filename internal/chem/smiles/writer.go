package smiles

import (
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// RenderOptions controls SMILES output.
type RenderOptions struct {
	// AllHsExplicit writes every atom in bracket form with its hydrogen
	// count, e.g. [cH] rather than c.
	AllHsExplicit bool
}

// Render writes m as canonical SMILES.  Stereochemistry is not written.
func Render(m *Molecule, opts RenderOptions) (string, error) {
	if m == nil || len(m.Atoms) == 0 {
		return "", apperrors.New(apperrors.ErrCodeSMILESRender, "empty molecule")
	}
	w := newWriter(m, opts)
	return w.render()
}

type writer struct {
	m     *Molecule
	opts  RenderOptions
	ranks []int

	visited  []bool
	usedBond []bool
	children [][]int // atom -> child atoms in write order
	opens    [][]int // atom -> ring-closure bonds opened here
	closes   [][]int // atom -> ring-closure bonds closed here

	labels    map[int]int // ring-closure bond -> label
	labelUsed [MaxRingLabel + 1]bool
	sb        strings.Builder
}

func newWriter(m *Molecule, opts RenderOptions) *writer {
	n := len(m.Atoms)
	return &writer{
		m:        m,
		opts:     opts,
		ranks:    canonicalRanks(m),
		visited:  make([]bool, n),
		usedBond: make([]bool, len(m.Bonds)),
		children: make([][]int, n),
		opens:    make([][]int, n),
		closes:   make([][]int, n),
		labels:   map[int]int{},
	}
}

func (w *writer) render() (string, error) {
	comps := w.m.components()
	starts := make([]int, len(comps))
	for i, comp := range comps {
		best := comp[0]
		for _, a := range comp {
			if w.ranks[a] < w.ranks[best] {
				best = a
			}
		}
		starts[i] = best
	}
	sort.Slice(starts, func(i, j int) bool { return w.ranks[starts[i]] < w.ranks[starts[j]] })

	for i, s := range starts {
		if i > 0 {
			w.sb.WriteByte('.')
		}
		w.walk(s)
		if err := w.write(s); err != nil {
			return "", err
		}
	}
	return w.sb.String(), nil
}

// neighbours returns the bonds of atom ordered by the rank of the far atom.
func (w *writer) neighbours(atom int) []int {
	bonds := append([]int(nil), w.m.adj[atom]...)
	sort.Slice(bonds, func(i, j int) bool {
		return w.ranks[w.m.Bonds[bonds[i]].Other(atom)] < w.ranks[w.m.Bonds[bonds[j]].Other(atom)]
	})
	return bonds
}

// walk is the first pass: a depth-first search that records tree children
// and ring-closure bonds.
func (w *writer) walk(atom int) {
	w.visited[atom] = true
	for _, bi := range w.neighbours(atom) {
		if w.usedBond[bi] {
			continue
		}
		w.usedBond[bi] = true
		o := w.m.Bonds[bi].Other(atom)
		if w.visited[o] {
			w.opens[o] = append(w.opens[o], bi)
			w.closes[atom] = append(w.closes[atom], bi)
			continue
		}
		w.children[atom] = append(w.children[atom], o)
		w.walk(o)
	}
}

// write is the second pass, emitting atoms, ring labels and branches.
func (w *writer) write(atom int) error {
	w.sb.WriteString(w.atomText(atom))

	var freed []int
	for _, bi := range w.closes[atom] {
		label := w.labels[bi]
		w.sb.WriteString(ringLabelText(label))
		freed = append(freed, label)
	}
	for _, bi := range w.opens[atom] {
		label := -1
		for l := 1; l <= MaxRingLabel; l++ {
			if !w.labelUsed[l] {
				label = l
				break
			}
		}
		if label < 0 {
			return apperrors.New(apperrors.ErrCodeSMILESRender, "too many open ring closures")
		}
		w.labelUsed[label] = true
		w.labels[bi] = label
		w.sb.WriteString(w.bondText(bi))
		w.sb.WriteString(ringLabelText(label))
	}
	for _, l := range freed {
		w.labelUsed[l] = false
	}

	kids := w.children[atom]
	for i, c := range kids {
		branch := i < len(kids)-1
		if branch {
			w.sb.WriteByte('(')
		}
		w.sb.WriteString(w.bondText(w.m.BondBetween(atom, c)))
		if err := w.write(c); err != nil {
			return err
		}
		if branch {
			w.sb.WriteByte(')')
		}
	}
	return nil
}

func ringLabelText(l int) string {
	if l < 10 {
		return strconv.Itoa(l)
	}
	return "%" + strconv.Itoa(l)
}

func (w *writer) bondText(bi int) string {
	b := w.m.Bonds[bi]
	bothAromatic := w.m.Atoms[b.A].Aromatic && w.m.Atoms[b.B].Aromatic
	switch b.Order {
	case BondSingle:
		if bothAromatic {
			return "-"
		}
		return ""
	case BondAromatic:
		if bothAromatic {
			return ""
		}
		return ":"
	default:
		return b.Order.symbol()
	}
}

func (w *writer) atomText(atom int) string {
	a := w.m.Atoms[atom]
	sym := a.Element
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	if !w.opts.AllHsExplicit && isOrganic(a) && a.HCount == implicitHydrogens(w.m, atom) {
		return sym
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(sym)
	if a.HCount > 0 {
		sb.WriteByte('H')
		if a.HCount > 1 {
			sb.WriteString(strconv.Itoa(a.HCount))
		}
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString(strconv.Itoa(a.Charge))
	}
	if a.Class > 0 {
		sb.WriteString(":" + strconv.Itoa(a.Class))
	}
	sb.WriteByte(']')
	return sb.String()
}

//Personal.AI order the ending
