package smiles

import (
	"math/bits"
	"sort"
	"strings"
)

// perceiveRings flags ring bonds and computes the smallest set of smallest
// rings.  Candidate cycles follow Horton: for every vertex v and every ring
// bond (x, y) the shortest paths v..x and v..y joined by the bond form a
// cycle when they share only v.  Candidates are taken shortest first and kept
// while linearly independent over GF(2).
func perceiveRings(m *Molecule) {
	markRingBonds(m)

	want := len(m.Bonds) - len(m.Atoms) + len(m.components())
	if want <= 0 {
		return
	}

	candidates := hortonCandidates(m)
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].Bonds) < len(candidates[j].Bonds)
	})

	basis := map[int]edgeSet{}
	for _, c := range candidates {
		if len(m.Rings) == want {
			break
		}
		if reduce(basis, newEdgeSet(len(m.Bonds), c.Bonds)) {
			m.Rings = append(m.Rings, c)
		}
	}
}

// markRingBonds sets InRing on every bond that is not a bridge.
func markRingBonds(m *Molecule) {
	n := len(m.Atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	var visit func(a, parentBond int)
	visit = func(a, parentBond int) {
		disc[a] = timer
		low[a] = timer
		timer++
		for _, bi := range m.adj[a] {
			if bi == parentBond {
				continue
			}
			o := m.Bonds[bi].Other(a)
			if disc[o] < 0 {
				visit(o, bi)
				if low[o] < low[a] {
					low[a] = low[o]
				}
				if low[o] <= disc[a] {
					m.Bonds[bi].InRing = true
				}
			} else {
				if disc[o] < low[a] {
					low[a] = disc[o]
				}
				m.Bonds[bi].InRing = true
			}
		}
	}
	for a := 0; a < n; a++ {
		if disc[a] < 0 {
			visit(a, -1)
		}
	}
}

func hortonCandidates(m *Molecule) []Ring {
	seen := map[string]bool{}
	var out []Ring

	for v := range m.Atoms {
		parentBond, dist := ringBFS(m, v)
		if dist == nil {
			continue
		}
		for bi, b := range m.Bonds {
			if !b.InRing || dist[b.A] < 0 || dist[b.B] < 0 {
				continue
			}
			if parentBond[b.A] == bi || parentBond[b.B] == bi {
				continue
			}
			px := pathTo(m, parentBond, b.A)
			py := pathTo(m, parentBond, b.B)
			if !disjointExceptRoot(px.atoms, py.atoms) {
				continue
			}

			// root..x, then y back towards root.
			atoms := append(reverseInts(px.atoms), py.atoms[:len(py.atoms)-1]...)
			ring := Ring{Atoms: rotateRing(atoms)}
			ring.Bonds = append(append(append(ring.Bonds, px.bonds...), py.bonds...), bi)

			key := newEdgeSet(len(m.Bonds), ring.Bonds).key()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ring)
		}
	}
	return out
}

// ringBFS explores ring bonds from root.  It returns nil distances when root
// is not a ring atom.
func ringBFS(m *Molecule, root int) (parentBond, dist []int) {
	inRing := false
	for _, bi := range m.adj[root] {
		if m.Bonds[bi].InRing {
			inRing = true
			break
		}
	}
	if !inRing {
		return nil, nil
	}

	parentBond = make([]int, len(m.Atoms))
	dist = make([]int, len(m.Atoms))
	for i := range dist {
		dist[i] = -1
		parentBond[i] = -1
	}
	dist[root] = 0
	queue := []int{root}
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		for _, bi := range m.adj[a] {
			if !m.Bonds[bi].InRing {
				continue
			}
			o := m.Bonds[bi].Other(a)
			if dist[o] >= 0 {
				continue
			}
			dist[o] = dist[a] + 1
			parentBond[o] = bi
			queue = append(queue, o)
		}
	}
	return parentBond, dist
}

type treePath struct {
	atoms []int // target first, root last
	bonds []int
}

func pathTo(m *Molecule, parentBond []int, target int) treePath {
	p := treePath{atoms: []int{target}}
	for a := target; parentBond[a] >= 0; {
		bi := parentBond[a]
		p.bonds = append(p.bonds, bi)
		a = m.Bonds[bi].Other(a)
		p.atoms = append(p.atoms, a)
	}
	return p
}

func disjointExceptRoot(a, b []int) bool {
	in := make(map[int]bool, len(a))
	for _, x := range a[:len(a)-1] {
		in[x] = true
	}
	for _, y := range b[:len(b)-1] {
		if in[y] {
			return false
		}
	}
	return true
}

func reverseInts(s []int) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

// rotateRing starts the cycle at its smallest atom index.
func rotateRing(atoms []int) []int {
	if len(atoms) == 0 {
		return atoms
	}
	lo := 0
	for i, a := range atoms {
		if a < atoms[lo] {
			lo = i
		}
	}
	return append(append([]int{}, atoms[lo:]...), atoms[:lo]...)
}

// edgeSet is a bit vector over bond indices.
type edgeSet []uint64

func newEdgeSet(n int, bonds []int) edgeSet {
	s := make(edgeSet, (n+63)/64)
	for _, b := range bonds {
		s[b/64] ^= 1 << uint(b%64)
	}
	return s
}

func (s edgeSet) lowest() int {
	for i, w := range s {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w)
		}
	}
	return -1
}

func (s edgeSet) xor(o edgeSet) {
	for i := range s {
		s[i] ^= o[i]
	}
}

func (s edgeSet) key() string {
	var sb strings.Builder
	for _, w := range s {
		for i := 0; i < 8; i++ {
			sb.WriteByte(byte(w >> (8 * uint(i))))
		}
	}
	return sb.String()
}

// reduce eliminates v against the basis, which is keyed by pivot bit.  It
// reports whether v was independent, in which case it joins the basis.
func reduce(basis map[int]edgeSet, v edgeSet) bool {
	for {
		p := v.lowest()
		if p < 0 {
			return false
		}
		row, ok := basis[p]
		if !ok {
			basis[p] = v
			return true
		}
		v.xor(row)
	}
}

//Personal.AI order the ending
