package smiles

import (
	"strings"
	"unicode"

	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

type ringOpening struct {
	atom int
	bond string
	pos  int
}

// Parse reads a SMILES string into a Molecule.  The returned molecule has
// implicit hydrogens assigned, ring membership and the smallest set of
// smallest rings computed, and Kekulé rings satisfying the 4n+2 rule
// converted to aromatic form.  Atoms over their allowed valence and aromatic
// systems with no Kekulé structure are rejected.
func Parse(s string) (*Molecule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, apperrors.New(apperrors.ErrCodeSMILESParse, "empty SMILES")
	}
	tokens, err := Tokenize(s)
	if err != nil {
		return nil, err
	}

	m := &Molecule{}
	prev := -1
	pending := ""
	pendingPos := 0
	var branches []int
	rings := map[int]ringOpening{}
	lastKind := TokenDot

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenAtom:
			atom, err := parseAtomToken(tok)
			if err != nil {
				return nil, err
			}
			idx := m.addAtom(atom)
			if prev >= 0 {
				m.addBond(prev, idx, resolveBondOrder(pending, m.Atoms[prev], atom))
			} else if pending != "" {
				return nil, lexError(pendingPos, "bond %q has no preceding atom", pending)
			}
			pending = ""
			prev = idx

		case TokenBond:
			if prev < 0 {
				return nil, lexError(tok.Pos, "bond %q has no preceding atom", tok.Text)
			}
			if pending != "" {
				return nil, lexError(tok.Pos, "consecutive bond symbols")
			}
			pending, pendingPos = tok.Text, tok.Pos

		case TokenRing:
			if prev < 0 {
				return nil, lexError(tok.Pos, "ring label %d has no preceding atom", tok.Ring)
			}
			open, ok := rings[tok.Ring]
			if !ok {
				rings[tok.Ring] = ringOpening{atom: prev, bond: pending, pos: tok.Pos}
				pending = ""
				break
			}
			delete(rings, tok.Ring)
			sym := open.bond
			if pending != "" {
				if sym != "" && sym != pending && !bothSingle(sym, pending) {
					return nil, lexError(tok.Pos, "ring label %d closes with %q but opened with %q", tok.Ring, pending, sym)
				}
				sym = pending
			}
			if open.atom == prev {
				return nil, lexError(tok.Pos, "ring label %d bonds an atom to itself", tok.Ring)
			}
			if m.BondBetween(open.atom, prev) >= 0 {
				return nil, lexError(tok.Pos, "ring label %d duplicates an existing bond", tok.Ring)
			}
			m.addBond(open.atom, prev, resolveBondOrder(sym, m.Atoms[open.atom], m.Atoms[prev]))
			pending = ""

		case TokenBranchOpen:
			if prev < 0 {
				return nil, lexError(tok.Pos, "branch has no preceding atom")
			}
			if pending != "" {
				return nil, lexError(tok.Pos, "bond symbol before branch")
			}
			branches = append(branches, prev)

		case TokenBranchClose:
			if len(branches) == 0 {
				return nil, lexError(tok.Pos, "unbalanced ')'")
			}
			if lastKind == TokenBranchOpen {
				return nil, lexError(tok.Pos, "empty branch")
			}
			if pending != "" {
				return nil, lexError(tok.Pos, "dangling bond %q", pending)
			}
			prev = branches[len(branches)-1]
			branches = branches[:len(branches)-1]

		case TokenDot:
			if pending != "" {
				return nil, lexError(tok.Pos, "dangling bond %q", pending)
			}
			prev = -1
		}
		lastKind = tok.Kind
	}

	if len(branches) > 0 {
		return nil, apperrors.New(apperrors.ErrCodeSMILESParse, "unbalanced '('")
	}
	if pending != "" {
		return nil, lexError(pendingPos, "dangling bond %q", pending)
	}
	if len(rings) > 0 {
		label := MaxRingLabel + 1
		for l := range rings {
			if l < label {
				label = l
			}
		}
		return nil, lexError(rings[label].pos, "unclosed ring label %d", label)
	}
	if len(m.Atoms) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeSMILESParse, "no atoms")
	}

	assignImplicitHydrogens(m)
	if err := checkValences(m); err != nil {
		return nil, err
	}
	perceiveRings(m)
	perceiveAromaticity(m)
	if err := checkAromaticAtoms(m); err != nil {
		return nil, err
	}
	if err := checkKekulizable(m); err != nil {
		return nil, err
	}
	return m, nil
}

func bothSingle(a, b string) bool {
	single := func(s string) bool { return s == "-" || s == "/" || s == "\\" }
	return single(a) && single(b)
}

// resolveBondOrder maps a bond symbol to an order.  An implicit bond between
// two aromatic atoms is aromatic, otherwise single.
func resolveBondOrder(sym string, a, b Atom) BondOrder {
	switch sym {
	case "=":
		return BondDouble
	case "#":
		return BondTriple
	case "$":
		return BondQuadruple
	case ":":
		return BondAromatic
	case "-", "/", "\\":
		return BondSingle
	}
	if a.Aromatic && b.Aromatic {
		return BondAromatic
	}
	return BondSingle
}

// parseAtomToken builds an Atom from an organic-subset or bracket token.
func parseAtomToken(tok Token) (Atom, error) {
	if !strings.HasPrefix(tok.Text, "[") {
		if tok.Text == "*" {
			return Atom{Element: "*", HCount: -1}, nil
		}
		sym := tok.Text
		aromatic := unicode.IsLower(rune(sym[0]))
		if aromatic {
			sym = strings.ToUpper(sym)
		}
		n, _ := lookupAtomicNumber(sym)
		return Atom{Element: sym, Number: n, Aromatic: aromatic, HCount: -1}, nil
	}
	return parseBracketAtom(tok.Text[1:len(tok.Text)-1], tok.Pos)
}

// parseBracketAtom parses the content inside [...]:
// isotope? symbol chirality? hcount? charge? class?
func parseBracketAtom(content string, pos int) (Atom, error) {
	atom := Atom{Bracket: true}
	i := 0

	for i < len(content) && isDigit(content[i]) {
		atom.Isotope = atom.Isotope*10 + int(content[i]-'0')
		i++
	}

	if i >= len(content) {
		return atom, lexError(pos, "bracket atom %q has no element", content)
	}
	switch {
	case content[i] == '*':
		atom.Element = "*"
		i++
	case unicode.IsLower(rune(content[i])):
		sym := ""
		if i+1 < len(content) && unicode.IsLower(rune(content[i+1])) {
			two := strings.ToUpper(content[i:i+1]) + content[i+1:i+2]
			if aromaticBracket[two] {
				sym = two
			}
		}
		if sym == "" {
			sym = strings.ToUpper(content[i : i+1])
		}
		if !aromaticBracket[sym] {
			return atom, lexError(pos, "element %q cannot be aromatic", sym)
		}
		atom.Element = sym
		atom.Aromatic = true
		i += len(sym)
	case unicode.IsUpper(rune(content[i])):
		sym := content[i : i+1]
		if i+1 < len(content) && unicode.IsLower(rune(content[i+1])) {
			if _, ok := lookupAtomicNumber(sym + content[i+1:i+2]); ok {
				sym += content[i+1 : i+2]
			}
		}
		if _, ok := lookupAtomicNumber(sym); !ok {
			return atom, lexError(pos, "unknown element %q", sym)
		}
		atom.Element = sym
		i += len(sym)
	default:
		return atom, lexError(pos, "bracket atom %q has no element", content)
	}
	atom.Number, _ = lookupAtomicNumber(atom.Element)

	if i < len(content) && content[i] == '@' {
		start := i
		i++
		if i < len(content) && content[i] == '@' {
			i++
		}
		if i+1 < len(content) {
			switch content[i : i+2] {
			case "TH", "AL", "SP", "TB", "OH":
				i += 2
				for i < len(content) && isDigit(content[i]) {
					i++
				}
			}
		}
		atom.Chiral = content[start:i]
	}

	if i < len(content) && content[i] == 'H' {
		i++
		atom.HCount = 1
		if i < len(content) && isDigit(content[i]) {
			atom.HCount = int(content[i] - '0')
			i++
		}
	}

	if i < len(content) && (content[i] == '+' || content[i] == '-') {
		sign := 1
		if content[i] == '-' {
			sign = -1
		}
		c := content[i]
		i++
		mag := 1
		if i < len(content) && isDigit(content[i]) {
			mag = 0
			for i < len(content) && isDigit(content[i]) {
				mag = mag*10 + int(content[i]-'0')
				i++
			}
		} else {
			for i < len(content) && content[i] == c {
				mag++
				i++
			}
		}
		atom.Charge = sign * mag
	}

	if i < len(content) && content[i] == ':' {
		i++
		if i >= len(content) || !isDigit(content[i]) {
			return atom, lexError(pos, "atom class must be numeric")
		}
		for i < len(content) && isDigit(content[i]) {
			atom.Class = atom.Class*10 + int(content[i]-'0')
			i++
		}
	}

	if i != len(content) {
		return atom, lexError(pos, "unexpected %q in bracket atom", content[i:])
	}
	return atom, nil
}

// checkAromaticAtoms rejects lowercase atoms that are not part of any ring.
func checkAromaticAtoms(m *Molecule) error {
	inRing := make([]bool, len(m.Atoms))
	for _, b := range m.Bonds {
		if b.InRing {
			inRing[b.A] = true
			inRing[b.B] = true
		}
	}
	for i, a := range m.Atoms {
		if a.Aromatic && !inRing[i] {
			return apperrors.Newf(apperrors.ErrCodeSMILESParse, "non-ring atom %d marked aromatic", i)
		}
	}
	return nil
}

//Personal.AI order the ending
