package combiner

import (
	"context"
	"strings"

	"github.com/turtacn/smilescombine/internal/chem/smiles"
	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// AssignRingOrder shifts the ring-closure labels of every aromatic
// substituent by the number of aromatic rings in the skeleton, so that labels
// in a spliced substituent never reuse one of the skeleton's.  The input slice
// is not modified.  Applying it twice to the same substituents shifts twice.
func AssignRingOrder(ctx context.Context, engine Engine, skeleton string, substituents []string) ([]string, error) {
	out := make([]string, len(substituents))
	copy(out, substituents)
	if len(substituents) == 0 {
		return out, nil
	}

	n, err := engine.AromaticRings(ctx, skeleton)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnknown, "count skeleton aromatic rings").WithDetail(skeleton)
	}
	if n == 0 {
		return out, nil
	}

	for i, sub := range substituents {
		body := unwrapFragment(sub)
		if body == "" {
			continue
		}
		rings, err := engine.AromaticRings(ctx, body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeUnknown, "count substituent aromatic rings").WithDetail(sub)
		}
		if rings == 0 {
			continue
		}
		shifted, err := smiles.ShiftRingLabels(sub, n)
		if err != nil {
			return nil, err
		}
		out[i] = shifted
	}
	return out, nil
}

// unwrapFragment strips the branch parentheses a substituent is written in.
func unwrapFragment(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return s[1 : len(s)-1]
	}
	return s
}

//Personal.AI order the ending
