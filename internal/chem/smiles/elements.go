package smiles

// elementSymbols is indexed by atomic number; index 0 is the wildcard atom.
var elementSymbols = []string{
	"*",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba",
	"La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra",
	"Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm", "Md", "No", "Lr",
	"Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds", "Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for i, s := range elementSymbols {
		m[s] = i
	}
	return m
}()

// organicValences lists the default valences of the organic subset, lowest
// first.  Atoms outside this table must be written in brackets.
var organicValences = map[string][]int{
	"*":  nil,
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"F":  {1},
	"Cl": {1},
	"Br": {1},
	"I":  {1},
}

// aromaticOrganic lists elements allowed as bare lowercase atoms.
var aromaticOrganic = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
}

// aromaticBracket lists elements allowed as lowercase symbols inside brackets.
var aromaticBracket = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"Se": true, "As": true, "Te": true, "Si": true, "Ge": true, "Sb": true,
}

// lookupAtomicNumber returns the atomic number for a capitalised symbol.
func lookupAtomicNumber(symbol string) (int, bool) {
	n, ok := atomicNumbers[symbol]
	return n, ok
}

// SymbolFor returns the element symbol for an atomic number, or "" when the
// number is out of range.
func SymbolFor(number int) string {
	if number < 0 || number >= len(elementSymbols) {
		return ""
	}
	return elementSymbols[number]
}

//Personal.AI order the ending
