package smiles

import "sort"

// canonicalRanks assigns every atom a distinct rank that does not depend on
// input atom order, up to graph symmetry.  Atoms start from an invariant
// built from local properties, classes are refined by neighbour ranks until
// stable, and remaining ties are broken one class at a time.
func canonicalRanks(m *Molecule) []int {
	n := len(m.Atoms)
	if n == 0 {
		return nil
	}

	ringCount := make([]int, n)
	for _, r := range m.Rings {
		for _, a := range r.Atoms {
			ringCount[a]++
		}
	}

	keys := make([][]int, n)
	for i, a := range m.Atoms {
		arom := 0
		if a.Aromatic {
			arom = 1
		}
		keys[i] = []int{m.Degree(i), a.Number, a.Isotope, a.Charge, a.HCount, arom, ringCount[i], a.Class}
	}
	ranks := denseRanks(keys)
	ranks = refine(m, ranks)

	for {
		tied := smallestTiedRank(ranks)
		if tied < 0 {
			return ranks
		}
		chosen := -1
		for i, r := range ranks {
			if r == tied {
				chosen = i
				break
			}
		}
		for i := range ranks {
			ranks[i] *= 2
		}
		ranks[chosen]--
		ranks = refine(m, ranks)
	}
}

// refine iterates neighbour-based partition refinement until the number of
// classes stops growing.
func refine(m *Molecule, ranks []int) []int {
	classes := countDistinct(ranks)
	for {
		keys := make([][]int, len(ranks))
		for i := range ranks {
			nb := make([]int, 0, len(m.adj[i]))
			for _, bi := range m.adj[i] {
				b := m.Bonds[bi]
				nb = append(nb, ranks[b.Other(i)]*8+int(b.Order))
			}
			sort.Ints(nb)
			keys[i] = append([]int{ranks[i]}, nb...)
		}
		next := denseRanks(keys)
		c := countDistinct(next)
		if c == classes {
			return next
		}
		ranks, classes = next, c
	}
}

// denseRanks maps keys to 0-based ranks, equal keys sharing a rank.
func denseRanks(keys [][]int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lessInts(keys[idx[a]], keys[idx[b]])
	})
	ranks := make([]int, len(keys))
	r := 0
	for i, k := range idx {
		if i > 0 && lessInts(keys[idx[i-1]], keys[k]) {
			r++
		}
		ranks[k] = r
	}
	return ranks
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func countDistinct(ranks []int) int {
	seen := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		seen[r] = true
	}
	return len(seen)
}

// smallestTiedRank returns the lowest rank shared by two or more atoms, or
// -1 when every rank is distinct.
func smallestTiedRank(ranks []int) int {
	count := map[int]int{}
	for _, r := range ranks {
		count[r]++
	}
	best := -1
	for r, c := range count {
		if c > 1 && (best < 0 || r < best) {
			best = r
		}
	}
	return best
}

//Personal.AI order the ending
