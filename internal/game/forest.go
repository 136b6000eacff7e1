package game

import (
	"sort"
	"strconv"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// forestSolution is compared against the sorted, concatenated revealed numbers.
const forestSolution = "13579"

// Tree is a forest tree hiding a number.
type Tree struct {
	Position Vec3
	Number   int
}

// ForestProgress is the forest's visible state.
type ForestProgress struct {
	RevealedNumbers []int       `json:"revealedNumbers"` // discovery order
	Solved          bool        `json:"solved"`
	Trees           []TreeState `json:"trees"`
}

type TreeState struct {
	Index    int  `json:"index"`
	Number   int  `json:"number"`
	Revealed bool `json:"revealed"`
}

// ForestPuzzle is solved once every tree number has been revealed.
type ForestPuzzle struct {
	trees    []Tree
	revealed []int
	seen     mapset.Set[int]
	solved   bool
	latch    solveLatch
}

func NewForestPuzzle(trees []Tree, collector FragmentCollector) *ForestPuzzle {
	return &ForestPuzzle{
		trees: append([]Tree(nil), trees...),
		seen:  mapset.New[int](),
		latch: solveLatch{zone: ZoneForest, collector: collector},
	}
}

func (f *ForestPuzzle) Zone() ZoneID { return ZoneForest }

// RevealNumber appends n to the revealed log. Numbers no tree hides and
// numbers already revealed are ignored.
func (f *ForestPuzzle) RevealNumber(n int) bool {
	if !f.hidesNumber(n) || f.seen.Has(n) {
		return false
	}
	f.seen.Put(n)
	f.revealed = append(f.revealed, n)

	if f.latch.observe(f.IsSolved()) {
		f.solved = true
	}
	return true
}

func (f *ForestPuzzle) hidesNumber(n int) bool {
	for _, t := range f.trees {
		if t.Number == n {
			return true
		}
	}
	return false
}

// RevealTree reveals the number bound to tree index.
func (f *ForestPuzzle) RevealTree(index int) bool {
	if index < 0 || index >= len(f.trees) {
		return false
	}
	return f.RevealNumber(f.trees[index].Number)
}

func (f *ForestPuzzle) RegisterInteraction(in Interaction) bool {
	if in.Kind != InteractReveal {
		return false
	}
	return f.RevealNumber(in.Number)
}

// IsSolved sorts the revealed numbers and compares their decimal
// concatenation with "13579"; five numbers are required.
func (f *ForestPuzzle) IsSolved() bool {
	if len(f.revealed) != len(forestSolution) {
		return false
	}
	sorted := append([]int(nil), f.revealed...)
	sort.Ints(sorted)

	var sb strings.Builder
	for _, n := range sorted {
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String() == forestSolution
}

// Trees returns the tree layout.
func (f *ForestPuzzle) Trees() []Tree {
	return f.trees
}

func (f *ForestPuzzle) Progress() ZoneProgress {
	trees := make([]TreeState, len(f.trees))
	for i, t := range f.trees {
		trees[i] = TreeState{Index: i, Number: t.Number, Revealed: f.seen.Has(t.Number)}
	}
	return ZoneProgress{
		Zone:   ZoneForest,
		Solved: f.solved,
		Forest: &ForestProgress{
			RevealedNumbers: append([]int(nil), f.revealed...),
			Solved:          f.solved,
			Trees:           trees,
		},
	}
}
