package ahp

import "sort"

// Judgment is a point on the linguistic comparison scale. Positive values
// mean the row criterion is more important than the column criterion,
// negative values mean it is less important. Zero and -1 are not used.
type Judgment int

// ScaleEntry is one row of the linguistic scale.
type ScaleEntry struct {
	Judgment Judgment `json:"judgment"`
	Value    TFN      `json:"value"`
	Label    string   `json:"label"`
}

var linguisticScale = map[Judgment]ScaleEntry{
	-9: {-9, TFN{1.0 / 9, 1.0 / 9, 1.0 / 8}, "Absolutely less important"},
	-8: {-8, TFN{1.0 / 9, 1.0 / 8, 1.0 / 7}, "Very, very strongly less important"},
	-7: {-7, TFN{1.0 / 8, 1.0 / 7, 1.0 / 6}, "Strongly very less important"},
	-6: {-6, TFN{1.0 / 7, 1.0 / 6, 1.0 / 5}, "Strongly plus less important"},
	-5: {-5, TFN{1.0 / 6, 1.0 / 5, 1.0 / 4}, "Strongly less important"},
	-4: {-4, TFN{1.0 / 5, 1.0 / 4, 1.0 / 3}, "Moderately plus less important"},
	-3: {-3, TFN{1.0 / 4, 1.0 / 3, 1.0 / 2}, "Moderately less important"},
	-2: {-2, TFN{1.0 / 3, 1.0 / 2, 1}, "Weakly or slightly less important"},
	1:  {1, TFN{1, 1, 1}, "Equally important"},
	2:  {2, TFN{1, 2, 3}, "Weakly or slightly more important"},
	3:  {3, TFN{2, 3, 4}, "Moderately more important"},
	4:  {4, TFN{3, 4, 5}, "Moderately plus more important"},
	5:  {5, TFN{4, 5, 6}, "Strongly more important"},
	6:  {6, TFN{5, 6, 7}, "Strongly plus more important"},
	7:  {7, TFN{6, 7, 8}, "Strongly very more important"},
	8:  {8, TFN{7, 8, 9}, "Very, very strongly more important"},
	9:  {9, TFN{8, 9, 9}, "Absolutely more important"},
}

// Fuzzy returns the TFN for a linguistic judgment.
func (j Judgment) Fuzzy() (TFN, bool) {
	e, ok := linguisticScale[j]
	return e.Value, ok
}

// Label returns the human readable label of the judgment.
func (j Judgment) Label() string {
	return linguisticScale[j].Label
}

// Scale lists the linguistic scale ordered from -9 to 9.
func Scale() []ScaleEntry {
	out := make([]ScaleEntry, 0, len(linguisticScale))
	for _, e := range linguisticScale {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Judgment < out[j].Judgment })
	return out
}
