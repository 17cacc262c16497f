package combiner

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/smilescombine/internal/chem/smiles"
	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

type CombinerSuite struct {
	suite.Suite
	ctx    context.Context
	engine *smiles.Engine
}

func TestCombinerSuite(t *testing.T) {
	suite.Run(t, new(CombinerSuite))
}

func (s *CombinerSuite) SetupTest() {
	s.ctx = context.Background()
	s.engine = smiles.NewEngine()
}

func (s *CombinerSuite) canon(smi string) string {
	out, err := s.engine.Canonicalize(s.ctx, smi, smiles.RenderOptions{})
	s.Require().NoError(err, smi)
	return out
}

func (s *CombinerSuite) combine(skeleton string, subs []string, opts ...Option) *Result {
	c, err := New(s.ctx, s.engine, skeleton, subs, opts...)
	s.Require().NoError(err)
	res, err := c.Combine(s.ctx)
	s.Require().NoError(err)
	return res
}

func (s *CombinerSuite) TestAutoTemplate_Benzene() {
	c, err := New(s.ctx, s.engine, "c1ccccc1", nil)
	s.Require().NoError(err)

	tpl, err := c.SkeletonTemplate(s.ctx)
	s.Require().NoError(err)
	s.Equal(6, tpl.VacantSites)
	s.Equal(6, c.VacantSites())
	s.Equal("c1{}c{}c{}c{}c{}c1{}", tpl.Pattern)

	filled, err := tpl.Fill([]string{"(Cl)", "", "", "", "", ""})
	s.Require().NoError(err)
	s.Equal(s.canon("Clc1ccccc1"), s.canon(filled))
}

func (s *CombinerSuite) TestAutoTemplate_SkipsSubstitutedAndHeteroAtoms() {
	c, err := New(s.ctx, s.engine, "c1ncncn1", nil)
	s.Require().NoError(err)
	tpl, err := c.SkeletonTemplate(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, tpl.VacantSites)

	c, err = New(s.ctx, s.engine, "Clc1cc(Cl)ncn1", nil)
	s.Require().NoError(err)
	tpl, err = c.SkeletonTemplate(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, tpl.VacantSites)
}

func (s *CombinerSuite) TestManualTemplate() {
	c, err := New(s.ctx, s.engine, "c1(Br)ccc(Br)cc1", nil, WithAutoPlacement(false))
	s.Require().NoError(err)
	tpl, err := c.SkeletonTemplate(s.ctx)
	s.Require().NoError(err)
	s.Equal("c1{}ccc{}cc1", tpl.Pattern)
	s.Equal(2, tpl.VacantSites)
}

func (s *CombinerSuite) TestManualTemplate_CustomConnectAtom() {
	c, err := New(s.ctx, s.engine, "c1(I)ccc(Br)cc1", nil, WithAutoPlacement(false), WithConnectAtom("I"))
	s.Require().NoError(err)
	tpl, err := c.SkeletonTemplate(s.ctx)
	s.Require().NoError(err)
	s.Equal("c1{}ccc(Br)cc1", tpl.Pattern)
	s.Equal("(I)", c.ConnectorFragment())
}

func (s *CombinerSuite) TestSpecificationErrors() {
	c, err := New(s.ctx, s.engine, "c1ccccc1", nil, WithNConnect(7))
	s.Require().NoError(err)
	_, err = c.Combine(s.ctx)
	s.Require().Error(err)
	s.True(IsSpecificationError(err))
	s.Contains(err.Error(), "cannot exceed available sites")

	c, err = New(s.ctx, s.engine, "c1ccccc1", nil, WithNConnect(2), WithNMax(1))
	s.Require().NoError(err)
	_, err = c.SkeletonTemplate(s.ctx)
	s.Require().Error(err)
	s.True(IsSpecificationError(err))
	s.Contains(err.Error(), "cannot exceed maximum allowed substitutions")

	// Site count is checked regardless of nmax.
	c, err = New(s.ctx, s.engine, "c1(Br)ccc(Br)cc1", nil, WithAutoPlacement(false), WithNConnect(3), WithNMax(10))
	s.Require().NoError(err)
	_, err = c.Combine(s.ctx)
	s.True(IsSpecificationError(err))
}

func (s *CombinerSuite) TestCombine_NoSubstituentsYieldsSkeleton() {
	res := s.combine("c1ccccc1", nil)
	s.Equal([]string{"c1ccccc1"}, res.Combinations)
	s.Equal(6, res.VacantSites)
}

func (s *CombinerSuite) TestCombine_TwoConnectorsOnTwoSites() {
	res := s.combine("Clc1cc(Cl)ncn1", nil, WithNConnect(2))
	s.Equal([]string{s.canon("Brc1nc(Cl)c(Br)c(Cl)n1")}, res.Combinations)
}

func (s *CombinerSuite) TestCombine_SingleSubstitutionOnSymmetricRing() {
	res := s.combine("c1ncncn1", []string{"(C)"}, WithNMax(1))
	s.ElementsMatch([]string{s.canon("c1ncncn1"), s.canon("Cc1ncncn1")}, res.Combinations)
}

func (s *CombinerSuite) TestCombine_DisubstitutedBenzene() {
	res := s.combine("c1ccccc1", []string{"(Cl)"}, WithNMax(2))
	s.ElementsMatch([]string{
		s.canon("c1ccccc1"),
		s.canon("Clc1ccccc1"),
		s.canon("Clc1ccccc1Cl"),
		s.canon("Clc1cccc(Cl)c1"),
		s.canon("Clc1ccc(Cl)cc1"),
	}, res.Combinations)
}

func (s *CombinerSuite) TestCombine_ManualSites() {
	res := s.combine("c1(Br)ccc(Br)cc1", []string{"(N)", "(O)"}, WithAutoPlacement(false))
	s.ElementsMatch([]string{
		s.canon("c1ccccc1"),
		s.canon("Nc1ccccc1"),
		s.canon("Oc1ccccc1"),
		s.canon("Nc1ccc(N)cc1"),
		s.canon("Oc1ccc(O)cc1"),
		s.canon("Nc1ccc(O)cc1"),
	}, res.Combinations)
}

func (s *CombinerSuite) TestCombine_ResultProperties() {
	res := s.combine("c1ccc2ccccc2c1", []string{"(F)", "(OC)"}, WithNMax(2))

	seen := map[string]bool{}
	for _, smi := range res.Combinations {
		s.False(seen[smi], "duplicate %s", smi)
		seen[smi] = true
		s.Equal(smi, s.canon(smi), "not canonical: %s", smi)
	}
	s.True(sort.IsSorted(sort.Reverse(sort.StringSlice(res.Combinations))))
}

func (s *CombinerSuite) TestCombine_AromaticSubstituentRingLabels() {
	res := s.combine("c1ccccc1", []string{"(c1ccccc1)"}, WithNMax(1))
	s.ElementsMatch([]string{s.canon("c1ccccc1"), s.canon("c1ccccc1-c1ccccc1")}, res.Combinations)
}

func (s *CombinerSuite) TestCombine_DoesNotAccumulate() {
	c, err := New(s.ctx, s.engine, "c1ccccc1", []string{"(Cl)"}, WithNMax(1))
	s.Require().NoError(err)
	first, err := c.Combine(s.ctx)
	s.Require().NoError(err)
	second, err := c.Combine(s.ctx)
	s.Require().NoError(err)
	s.Equal(first.Combinations, second.Combinations)
	s.Contains(c.String(), "Number of unique combinations: 2")
}

func (s *CombinerSuite) TestPermutations_Restartable() {
	c, err := New(s.ctx, s.engine, "c1ccncc1", []string{"(C)", "(N)"}, WithNMax(2), WithNConnect(1))
	s.Require().NoError(err)
	tpl, err := c.SkeletonTemplate(s.ctx)
	s.Require().NoError(err)

	collect := func() []string {
		var out []string
		s.Require().NoError(c.Permutations(s.ctx, tpl, func(smi string) error {
			out = append(out, smi)
			return nil
		}))
		return out
	}
	first := collect()
	s.NotEmpty(first)
	s.Equal(first, collect())
}

func (s *CombinerSuite) TestPermutations_Stop() {
	c, err := New(s.ctx, s.engine, "c1ccccc1", []string{"(Cl)"})
	s.Require().NoError(err)
	tpl, err := c.SkeletonTemplate(s.ctx)
	s.Require().NoError(err)

	n := 0
	err = c.Permutations(s.ctx, tpl, func(string) error {
		n++
		if n == 3 {
			return ErrStop
		}
		return nil
	})
	s.NoError(err)
	s.Equal(3, n)
}

func (s *CombinerSuite) TestPermutations_CancelledContext() {
	c, err := New(s.ctx, s.engine, "c1ccccc1", []string{"(Cl)"})
	s.Require().NoError(err)
	tpl, err := c.SkeletonTemplate(s.ctx)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	err = c.Permutations(ctx, tpl, func(string) error { return nil })
	s.ErrorIs(err, context.Canceled)
}

func (s *CombinerSuite) TestString() {
	c, err := New(s.ctx, s.engine, "c1ccccc1", []string{"(Cl)", "(N)"}, WithNMax(2), WithNConnect(1))
	s.Require().NoError(err)
	_, err = c.Combine(s.ctx)
	s.Require().NoError(err)

	out := c.String()
	s.Contains(out, "Skeleton SMILES: c1ccccc1\n")
	s.Contains(out, "Substituents: [(Cl), (N)]\n")
	s.Contains(out, "Max number of substitutions: 2\n")
	s.Contains(out, "Possible substitution sites: 6\n")
	s.Contains(out, "Connection points: 1\n")

	c, err = New(s.ctx, s.engine, "c1ccccc1", nil)
	s.Require().NoError(err)
	s.Contains(c.String(), "Max number of substitutions: unbounded")
	s.NotContains(c.String(), "Connection points")
}

// ─────────────────────────────────────────────────────────────────────────────
// Placements
// ─────────────────────────────────────────────────────────────────────────────

func countPlacements(t *testing.T, c *Combiner, tpl *Template) (total int, bySubs map[int]int) {
	t.Helper()
	bySubs = map[int]int{}
	seen := map[string]bool{}
	err := c.Placements(context.Background(), tpl, func(frags []string) error {
		key := strings.Join(frags, "|")
		require.False(t, seen[key], "placement repeated: %s", key)
		seen[key] = true
		n := 0
		for _, f := range frags {
			if f != "" && f != c.ConnectorFragment() {
				n++
			}
		}
		bySubs[n]++
		total++
		return nil
	})
	require.NoError(t, err)
	return total, bySubs
}

func TestPlacements_ThreeSitesOneSubstituent(t *testing.T) {
	c := &Combiner{substituents: []string{"(S)"}, nmax: intPtr(1), connectAtom: "Br"}
	total, bySubs := countPlacements(t, c, NewTemplate("{}c{}c{}"))
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, bySubs[0])
	assert.Equal(t, 3, bySubs[1])
}

func TestPlacements_MatchesCartesianPowerCount(t *testing.T) {
	// Two substituents over four sites with one connector, cap three.  With
	// the connector on one of 4 sites, i substituents fill i of the remaining
	// 3 sites in 2^i ways: 4, 4*3*2, 4*3*4, 4*1*8.
	c := &Combiner{substituents: []string{"(A)", "(B)"}, nconnect: 1, connectAtom: "Br"}
	total, bySubs := countPlacements(t, c, NewTemplate("{}{}{}{}"))
	assert.Equal(t, 4, bySubs[0])
	assert.Equal(t, 24, bySubs[1])
	assert.Equal(t, 48, bySubs[2])
	assert.Equal(t, 32, bySubs[3])
	assert.Equal(t, 108, total)
}

func TestPlacements_NoSites(t *testing.T) {
	c := &Combiner{substituents: []string{"(A)"}, connectAtom: "Br"}
	total, _ := countPlacements(t, c, NewTemplate("CCO"))
	assert.Equal(t, 1, total)
}

func TestPlacements_NegativeCapIsInvariantViolation(t *testing.T) {
	c := &Combiner{nmax: intPtr(1), nconnect: 2, connectAtom: "Br"}
	err := c.Placements(context.Background(), NewTemplate("{}{}{}"), func([]string) error { return nil })
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEnumeration))
}

func TestTemplateFill_WrongArity(t *testing.T) {
	_, err := NewTemplate("c1{}ccc{}cc1").Fill([]string{"(N)"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEnumeration))
}

func TestNextPermutation_SkipsEqualArrangements(t *testing.T) {
	s := []int{0, 0, 1, 1}
	n := 1
	for nextPermutation(s) {
		n++
	}
	assert.Equal(t, 6, n)
}

func TestNextMultiset(t *testing.T) {
	tuple := make([]int, 2)
	var got [][]int
	for {
		got = append(got, append([]int(nil), tuple...))
		if !nextMultiset(tuple, 3) {
			break
		}
	}
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 2}, {2, 2}}, got)
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction and engine failures
// ─────────────────────────────────────────────────────────────────────────────

type failingEngine struct {
	canonErr error
	ringsErr error
}

func (f failingEngine) Canonicalize(context.Context, string, smiles.RenderOptions) (string, error) {
	return "", f.canonErr
}

func (f failingEngine) AromaticRings(context.Context, string) (int, error) {
	return 0, f.ringsErr
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()
	e := smiles.NewEngine()

	_, err := New(ctx, nil, "c1ccccc1", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))

	_, err = New(ctx, e, "  ", nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))

	_, err = New(ctx, e, "c1ccccc1", nil, WithNMax(-1))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = New(ctx, e, "c1ccccc1", nil, WithNConnect(-2))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = New(ctx, e, "c1ccccc1", nil, WithConnectAtom(""))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestCombine_EngineErrorPropagates(t *testing.T) {
	boom := stderrors.New("engine down")
	c, err := New(context.Background(), failingEngine{canonErr: boom}, "c1ccccc1", nil)
	require.NoError(t, err)

	_, err = c.Combine(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsSpecificationError(err))
}

func TestCombine_InvalidSkeletonKeepsParseCode(t *testing.T) {
	c, err := New(context.Background(), smiles.NewEngine(), "c1cccc", nil)
	require.NoError(t, err)
	_, err = c.Combine(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSMILESParse))
}

// ─────────────────────────────────────────────────────────────────────────────
// Ring order
// ─────────────────────────────────────────────────────────────────────────────

func TestAssignRingOrder(t *testing.T) {
	ctx := context.Background()
	e := smiles.NewEngine()

	cases := []struct {
		name     string
		skeleton string
		in       []string
		want     []string
	}{
		{"one ring", "c1ccccc1", []string{"(c1ccccc1)", "(N)", "(C1CC1)"}, []string{"(c2ccccc2)", "(N)", "(C1CC1)"}},
		{"two rings", "c1ccc2ccccc2c1", []string{"(c1ccncc1)"}, []string{"(c3ccncc3)"}},
		{"fused substituent", "c1ccccc1", []string{"(c1ccc2ccccc2c1)"}, []string{"(c2ccc3ccccc3c2)"}},
		{"aliphatic skeleton", "C1CCCCC1", []string{"(c1ccccc1)"}, []string{"(c1ccccc1)"}},
		{"empty fragment", "c1ccccc1", []string{""}, []string{""}},
		{"no substituents", "c1ccccc1", nil, []string{}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := AssignRingOrder(ctx, e, tc.skeleton, tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAssignRingOrder_DoesNotMutateInput(t *testing.T) {
	in := []string{"(c1ccccc1)"}
	_, err := AssignRingOrder(context.Background(), smiles.NewEngine(), "c1ccccc1", in)
	require.NoError(t, err)
	assert.Equal(t, []string{"(c1ccccc1)"}, in)
}

func TestAssignRingOrder_SplicedSubstituentParses(t *testing.T) {
	ctx := context.Background()
	e := smiles.NewEngine()
	subs, err := AssignRingOrder(ctx, e, "c1ccc2ccccc2c1", []string{"(c1ccccc1)"})
	require.NoError(t, err)

	n, err := e.AromaticRings(ctx, "c1ccc"+subs[0]+"c2ccccc2c1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAssignRingOrder_EngineError(t *testing.T) {
	boom := stderrors.New("no rings for you")
	_, err := AssignRingOrder(context.Background(), failingEngine{ringsErr: boom}, "c1ccccc1", []string{"(N)"})
	assert.ErrorIs(t, err, boom)
}

// ─────────────────────────────────────────────────────────────────────────────
// Output
// ─────────────────────────────────────────────────────────────────────────────

func TestWriteSMILES(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSMILES(&buf, []string{"c1ccccc1", "Clc1ccccc1"}))
	assert.Equal(t, "c1ccccc1\nClc1ccccc1\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteSMILES(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestWriteSMILESFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.smi")
	require.NoError(t, WriteSMILESFile(path, []string{"CCO"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CCO\n", string(data))
}

func TestWriteSMILESFile_ReplacesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phenols.smi")
	require.NoError(t, os.WriteFile(path, []byte("stale\nstale\nstale\n"), 0o644))

	require.NoError(t, WriteSMILESFile(path, []string{"Oc1ccccc1", "Oc1ccc(Cl)cc1"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Oc1ccccc1\nOc1ccc(Cl)cc1\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "phenols.smi", entries[0].Name())
}

func TestWriteSMILESFile_FailureKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phenols.smi")
	require.NoError(t, os.WriteFile(path, []byte("Oc1ccccc1\n"), 0o644))

	// A directory in place of the target makes the final rename fail.
	target := filepath.Join(dir, "busy")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "child"), 0o755))
	err := WriteSMILESFile(target, []string{"CCO"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeOutputWrite))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Oc1ccccc1\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func intPtr(n int) *int { return &n }

//Personal.AI order the ending
