package combiner

import (
	"context"
	"strings"

	"github.com/turtacn/smilescombine/internal/chem/smiles"
	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// Slot marks a substitution site in a template pattern.
const Slot = "{}"

// Template is a skeleton with every substitution site replaced by Slot.
type Template struct {
	Pattern     string
	VacantSites int

	segments []string
}

// NewTemplate wraps a pattern containing Slot markers.
func NewTemplate(pattern string) *Template {
	segments := strings.Split(pattern, Slot)
	return &Template{
		Pattern:     pattern,
		VacantSites: len(segments) - 1,
		segments:    segments,
	}
}

// Fill places one fragment in each slot, in order.
func (t *Template) Fill(fragments []string) (string, error) {
	if len(fragments) != t.VacantSites {
		return "", apperrors.Newf(apperrors.ErrCodeEnumeration,
			"template has %d sites, got %d fragments", t.VacantSites, len(fragments))
	}
	var sb strings.Builder
	sb.WriteString(t.segments[0])
	for i, f := range fragments {
		sb.WriteString(f)
		sb.WriteString(t.segments[i+1])
	}
	return sb.String(), nil
}

// SkeletonTemplate derives the template for the skeleton and validates the
// connector reservation against it.  The template is computed once and
// cached.
func (c *Combiner) SkeletonTemplate(ctx context.Context) (*Template, error) {
	if c.template == nil {
		var (
			tpl *Template
			err error
		)
		if c.autoPlacement {
			tpl, err = c.autoTemplate(ctx)
		} else {
			tpl = NewTemplate(strings.ReplaceAll(c.skeleton, c.ConnectorFragment(), Slot))
		}
		if err != nil {
			return nil, err
		}
		c.template = tpl
		c.vacantSites = tpl.VacantSites
	}

	tpl := c.template
	if c.nconnect > tpl.VacantSites {
		return nil, newSpecificationError(msgExceedsSites, c.nconnect, tpl.VacantSites)
	}
	if c.nmax != nil && c.nconnect > *c.nmax {
		return nil, newSpecificationError(msgExceedsNMax, c.nconnect, *c.nmax)
	}
	return tpl, nil
}

// autoTemplate renders the skeleton with explicit hydrogens and turns every
// aromatic CH into a site.  The slot follows the atom's ring-closure labels so
// that a filled slot reads as a branch.
func (c *Combiner) autoTemplate(ctx context.Context) (*Template, error) {
	explicit, err := c.engine.Canonicalize(ctx, c.skeleton, smiles.RenderOptions{AllHsExplicit: true})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnknown, "render skeleton with explicit hydrogens").
			WithDetail(c.skeleton)
	}
	tokens, err := smiles.Tokenize(explicit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnknown, "tokenize explicit skeleton").
			WithDetail(explicit)
	}

	var sb strings.Builder
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != smiles.TokenAtom {
			sb.WriteString(tok.String())
			continue
		}
		switch tok.Text {
		case "[cH]":
			sb.WriteString("c")
			for i+1 < len(tokens) {
				next := tokens[i+1]
				if next.Kind == smiles.TokenRing {
					sb.WriteString(next.String())
					i++
					continue
				}
				if next.Kind == smiles.TokenBond && i+2 < len(tokens) && tokens[i+2].Kind == smiles.TokenRing {
					sb.WriteString(next.String())
					sb.WriteString(tokens[i+2].String())
					i += 2
					continue
				}
				break
			}
			sb.WriteString(Slot)
		case "[c]":
			sb.WriteString("c")
		default:
			sb.WriteString(tok.Text)
		}
	}
	return NewTemplate(sb.String()), nil
}

//Personal.AI order the ending
