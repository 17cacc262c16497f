package smiles

import (
	"context"
)

// Engine is the native molecular engine: it parses SMILES, perceives rings
// and aromaticity, and writes canonical SMILES.  It holds no state and is
// safe for concurrent use.
type Engine struct{}

// NewEngine returns a ready Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Canonicalize parses s and writes it back in canonical form.
func (e *Engine) Canonicalize(ctx context.Context, s string, opts RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Render(m, opts)
}

// AromaticRings returns the number of aromatic rings in s.
func (e *Engine) AromaticRings(ctx context.Context, s string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return m.CountAromaticRings(), nil
}

//Personal.AI order the ending
