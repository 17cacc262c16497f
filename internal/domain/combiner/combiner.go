// Package combiner enumerates substituent placements on a molecular skeleton
// and collects the unique canonical structures they produce.
//
// A Combiner derives a Template from the skeleton, expands every placement of
// up to nmax substituents plus nconnect connector fragments over the
// template's vacant sites, canonicalizes each filled template with an Engine
// and keeps the first occurrence of every canonical string.
package combiner

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/smilescombine/internal/chem/smiles"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// DefaultConnectAtom is the element used for connector fragments when none
// is configured.
const DefaultConnectAtom = "Br"

// Engine is the molecular capability the combiner depends on.
type Engine interface {
	// Canonicalize parses s and renders it in canonical form.
	Canonicalize(ctx context.Context, s string, opts smiles.RenderOptions) (string, error)
	// AromaticRings returns the number of aromatic rings in s.
	AromaticRings(ctx context.Context, s string) (int, error)
}

// Option configures a Combiner.
type Option func(*Combiner)

// WithNMax caps the total number of substitutions, connectors included.
func WithNMax(n int) Option {
	return func(c *Combiner) { c.nmax = &n }
}

// WithNConnect reserves n sites for connector fragments.
func WithNConnect(n int) Option {
	return func(c *Combiner) { c.nconnect = n }
}

// WithConnectAtom sets the connector element.  In manual placement mode the
// skeleton marks its sites with "(" + atom + ")".
func WithConnectAtom(atom string) Option {
	return func(c *Combiner) { c.connectAtom = atom }
}

// WithAutoPlacement selects between detecting sites on aromatic CH atoms
// (true) and using the connector markers written into the skeleton (false).
func WithAutoPlacement(auto bool) Option {
	return func(c *Combiner) { c.autoPlacement = auto }
}

// WithLogger sets the logger used for run summaries.
func WithLogger(l logging.Logger) Option {
	return func(c *Combiner) { c.logger = l }
}

// Combiner holds one skeleton/substituent configuration.  It is intended for
// sequential use; concurrent calls on one Combiner are not supported.
type Combiner struct {
	engine        Engine
	skeleton      string
	substituents  []string
	nmax          *int
	nconnect      int
	connectAtom   string
	autoPlacement bool
	logger        logging.Logger

	template    *Template
	vacantSites int
	unique      int
}

// Result is the outcome of Combine.
type Result struct {
	Skeleton     string
	Template     string
	VacantSites  int
	Combinations []string
}

// New builds a Combiner.  Substituent ring-closure labels are shifted past
// the skeleton's aromatic rings here, once per Combiner.
func New(ctx context.Context, engine Engine, skeleton string, substituents []string, opts ...Option) (*Combiner, error) {
	if engine == nil {
		return nil, apperrors.InvalidParam("engine is required")
	}
	skeleton = strings.TrimSpace(skeleton)
	if skeleton == "" {
		return nil, apperrors.InvalidParam("skeleton is required")
	}

	c := &Combiner{
		engine:        engine,
		skeleton:      skeleton,
		connectAtom:   DefaultConnectAtom,
		autoPlacement: true,
		logger:        logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.nmax != nil && *c.nmax < 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeValidation, "nmax must be non-negative, got %d", *c.nmax)
	}
	if c.nconnect < 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeValidation, "nconnect must be non-negative, got %d", c.nconnect)
	}
	if strings.TrimSpace(c.connectAtom) == "" {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "connect atom must not be empty")
	}

	subs, err := AssignRingOrder(ctx, engine, skeleton, substituents)
	if err != nil {
		return nil, err
	}
	c.substituents = subs
	return c, nil
}

// Skeleton returns the skeleton SMILES.
func (c *Combiner) Skeleton() string { return c.skeleton }

// Substituents returns the substituents after ring-label adjustment.
func (c *Combiner) Substituents() []string {
	return append([]string(nil), c.substituents...)
}

// VacantSites returns the site count of the last derived template.
func (c *Combiner) VacantSites() int { return c.vacantSites }

// ConnectorFragment returns the fragment placed on reserved sites.
func (c *Combiner) ConnectorFragment() string {
	return "(" + c.connectAtom + ")"
}

// Combine enumerates every placement, canonicalizes it and returns the unique
// structures sorted in descending order.
func (c *Combiner) Combine(ctx context.Context) (*Result, error) {
	tpl, err := c.SkeletonTemplate(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var unique []string
	err = c.Permutations(ctx, tpl, func(canonical string) error {
		if _, ok := seen[canonical]; ok {
			return nil
		}
		seen[canonical] = struct{}{}
		unique = append(unique, canonical)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(unique)))

	c.unique = len(unique)
	c.logger.Info("substituent combination complete",
		logging.String("skeleton", c.skeleton),
		logging.Int("vacant_sites", tpl.VacantSites),
		logging.Int("unique_combinations", len(unique)))

	return &Result{
		Skeleton:     c.skeleton,
		Template:     tpl.Pattern,
		VacantSites:  tpl.VacantSites,
		Combinations: unique,
	}, nil
}

// String summarises the configuration and the last run.
func (c *Combiner) String() string {
	nmax := "unbounded"
	if c.nmax != nil {
		nmax = strconv.Itoa(*c.nmax)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Skeleton SMILES: %s\n", c.skeleton)
	fmt.Fprintf(&sb, "Substituents: [%s]\n", strings.Join(c.substituents, ", "))
	fmt.Fprintf(&sb, "Max number of substitutions: %s\n", nmax)
	fmt.Fprintf(&sb, "Possible substitution sites: %d\n", c.vacantSites)
	fmt.Fprintf(&sb, "Number of unique combinations: %d\n", c.unique)
	if c.nconnect > 0 {
		fmt.Fprintf(&sb, "Connection points: %d\n", c.nconnect)
	}
	return sb.String()
}

//Personal.AI order the ending
