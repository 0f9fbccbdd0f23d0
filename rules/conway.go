package rules

/*
Conway is the classic Game of Life rule in survive/birth notation.

A live cell survives with 2 or 3 live neighbors, a dead cell is born with exactly 3.
*/
const Conway = "23/3"

// ConwayRule returns a freshly parsed Conway rule
func ConwayRule() *Rule {
	return MustParse(Conway)
}
