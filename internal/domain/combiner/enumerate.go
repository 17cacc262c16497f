package combiner

import (
	"context"
	"errors"
	"sort"

	"github.com/turtacn/smilescombine/internal/chem/smiles"
	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// ErrStop may be returned from a yield callback to end enumeration early
// without error.
var ErrStop = errors.New("combiner: stop enumeration")

// Placement codes: empty fragment, connector, then substituents from 2.
const (
	codeEmpty     = 0
	codeConnector = 1
	codeFirstSub  = 2
)

// substitutionCap is the largest number of user substituents a placement may
// carry.
func (c *Combiner) substitutionCap(vacant int) int {
	if c.nmax != nil && *c.nmax < vacant {
		return *c.nmax - c.nconnect
	}
	return vacant - c.nconnect
}

// Placements calls yield with every distinct placement of the template, as
// one fragment per site.  For each substituent count i up to the cap it takes
// the i-tuples drawn with repetition from the substituents, appends the
// connector fragments, pads with empty fragments to the site count and
// expands every distinct permutation.  Tuples that are reorderings of one
// another expand to the same permutations, so only nondecreasing tuples are
// expanded and no placement is produced twice.  The slice passed to yield is
// reused between calls.
func (c *Combiner) Placements(ctx context.Context, tpl *Template, yield func([]string) error) error {
	vacant := tpl.VacantSites
	limit := c.substitutionCap(vacant)
	if limit < 0 {
		return apperrors.Newf(apperrors.ErrCodeEnumeration,
			"substitution cap is negative (nconnect=%d, sites=%d)", c.nconnect, vacant)
	}

	connector := c.ConnectorFragment()
	fragment := func(code int) string {
		switch code {
		case codeEmpty:
			return ""
		case codeConnector:
			return connector
		default:
			return c.substituents[code-codeFirstSub]
		}
	}

	nsubs := len(c.substituents)
	codes := make([]int, vacant)
	fragments := make([]string, vacant)

	for i := 0; i <= limit; i++ {
		if i > 0 && nsubs == 0 {
			break
		}
		tuple := make([]int, i)
		for {
			for k := range codes {
				codes[k] = codeEmpty
			}
			for k, s := range tuple {
				codes[k] = codeFirstSub + s
			}
			for k := 0; k < c.nconnect; k++ {
				codes[i+k] = codeConnector
			}
			sort.Ints(codes)

			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				for k, code := range codes {
					fragments[k] = fragment(code)
				}
				if err := yield(fragments); err != nil {
					return err
				}
				if !nextPermutation(codes) {
					break
				}
			}

			if !nextMultiset(tuple, nsubs) {
				break
			}
		}
	}
	return nil
}

// Permutations calls yield with the canonical form of every placement.  The
// sequence may repeat canonical strings; it is identical across calls with
// the same inputs.  Returning ErrStop from yield ends the walk with a nil
// error.
func (c *Combiner) Permutations(ctx context.Context, tpl *Template, yield func(string) error) error {
	err := c.Placements(ctx, tpl, func(fragments []string) error {
		filled, err := tpl.Fill(fragments)
		if err != nil {
			return err
		}
		canonical, err := c.engine.Canonicalize(ctx, filled, smiles.RenderOptions{})
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeUnknown, "canonicalize placement").WithDetail(filled)
		}
		return yield(canonical)
	})
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// nextMultiset advances a nondecreasing tuple over [0, n) to its successor,
// reporting false after the last one.
func nextMultiset(tuple []int, n int) bool {
	k := len(tuple) - 1
	for k >= 0 && tuple[k] == n-1 {
		k--
	}
	if k < 0 {
		return false
	}
	tuple[k]++
	for j := k + 1; j < len(tuple); j++ {
		tuple[j] = tuple[k]
	}
	return true
}

// nextPermutation rearranges s into the next lexicographic permutation,
// skipping equal arrangements, and reports false after the last one.
func nextPermutation(s []int) bool {
	i := len(s) - 2
	for i >= 0 && s[i] >= s[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(s) - 1
	for s[j] <= s[i] {
		j--
	}
	s[i], s[j] = s[j], s[i]
	for l, r := i+1, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
	return true
}

//Personal.AI order the ending
