package combiner

import (
	"fmt"

	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// Messages carried by SpecificationError.
const (
	msgExceedsSites = "number of connections cannot exceed available sites"
	msgExceedsNMax  = "number of connections cannot exceed maximum allowed substitutions"
)

// SpecificationError reports a placement configuration that can never be
// satisfied.  It is an *AppError with code COMB_001.
type SpecificationError = apperrors.AppError

func newSpecificationError(message string, nconnect, limit int) *SpecificationError {
	return apperrors.New(apperrors.ErrCodeSpecification, message).
		WithDetail(fmt.Sprintf("nconnect=%d limit=%d", nconnect, limit))
}

// IsSpecificationError reports whether err, or any error it wraps, is a
// SpecificationError.
func IsSpecificationError(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeSpecification)
}

//Personal.AI order the ending
