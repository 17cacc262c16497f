package smiles

import (
	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// ShiftRingLabels adds offset to every ring-closure label in s.  Labels that
// move past 9 are written in the %nn form.
func ShiftRingLabels(s string, offset int) (string, error) {
	if offset == 0 || s == "" {
		return s, nil
	}
	tokens, err := Tokenize(s)
	if err != nil {
		return "", err
	}
	for i := range tokens {
		if tokens[i].Kind != TokenRing {
			continue
		}
		shifted := tokens[i].Ring + offset
		if shifted < 0 || shifted > MaxRingLabel {
			return "", apperrors.Newf(apperrors.ErrCodeRingLabel,
				"ring label %d shifted by %d exceeds %d", tokens[i].Ring, offset, MaxRingLabel).
				WithDetail(s)
		}
		tokens[i].Ring = shifted
	}
	return Join(tokens), nil
}

//Personal.AI order the ending
