package match

import "sort"

// Candidate is a potential source field for a target field.
type Candidate struct {
	Name      string
	NameScore float64
	Compat    Compatibility
	// Score combines name similarity (60%) and type compatibility (40%).
	Score float64
}

// CandidateList is sorted by Score descending, then by name.
type CandidateList []Candidate

// Thresholds used by Suggest.
const (
	DefaultMinNameScore   = 0.5
	DefaultMaxSuggestions = 3
)

// Rank scores every source name against target. compat may be nil, in which
// case only names are compared and every pair counts as Identical.
func Rank(target string, sources []string, compat func(source string) Compatibility) CandidateList {
	candidates := make(CandidateList, 0, len(sources))

	for _, name := range sources {
		c := Identical
		if compat != nil {
			c = compat(name)
		}

		nameScore := NameScore(name, target)
		candidates = append(candidates, Candidate{
			Name:      name,
			NameScore: nameScore,
			Compat:    c,
			Score:     nameScore*0.6 + c.weight()*0.4,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to DefaultMaxSuggestions source names whose name score
// reaches DefaultMinNameScore, best first.
func Suggest(target string, sources []string, compat func(source string) Compatibility) []string {
	var names []string

	for _, c := range Rank(target, sources, compat) {
		if c.NameScore < DefaultMinNameScore {
			continue
		}

		names = append(names, c.Name)
		if len(names) == DefaultMaxSuggestions {
			break
		}
	}

	return names
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the first n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if there are none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates whose score reaches threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}
