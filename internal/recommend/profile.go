package recommend

import (
	"sort"

	"github.com/abhisek/masteryrank/internal/behavior"
)

// Profile is a learner's content preference derived from history.
type Profile struct {
	Subject    string
	Tags       []string
	Skills     []string
	Difficulty float64 // 0 when no history item had a difficulty
}

// Content similarity weights.
const (
	subjectWeight    = 0.3
	tagWeight        = 0.3
	skillWeight      = 0.3
	difficultyWeight = 0.1
)

// BuildProfile summarizes the catalog items behind a learner's events.
// Every event counts, so repeated interactions weigh more. It returns
// false when none of the events reference a known item.
func BuildProfile(events []behavior.Event, catalog *behavior.Catalog, topTags, topSkills int) (Profile, bool) {
	subjects := make(map[string]int)
	tags := make(map[string]int)
	skills := make(map[string]int)
	var diffSum float64
	var diffCount, matched int

	for _, e := range events {
		it, ok := catalog.Get(e.ItemID)
		if !ok {
			continue
		}
		matched++
		if it.Subject != "" {
			subjects[it.Subject]++
		}
		for _, t := range it.Tags {
			tags[t]++
		}
		for _, s := range it.SkillRefs {
			skills[s]++
		}
		if it.HasDifficulty() {
			diffSum += it.Difficulty
			diffCount++
		}
	}
	if matched == 0 {
		return Profile{}, false
	}

	p := Profile{
		Tags:   topByCount(tags, topTags),
		Skills: topByCount(skills, topSkills),
	}
	if top := topByCount(subjects, 1); len(top) == 1 {
		p.Subject = top[0]
	}
	if diffCount > 0 {
		p.Difficulty = diffSum / float64(diffCount)
	}
	return p, true
}

// ContentSimilarity scores an item against a profile. Sub-signals missing
// on either side are skipped and their weight dropped from the
// normalization; with nothing comparable the score is 0.
func ContentSimilarity(p Profile, it behavior.Item) float64 {
	var score, weight float64

	if p.Subject != "" && it.Subject != "" {
		weight += subjectWeight
		if p.Subject == it.Subject {
			score += subjectWeight
		}
	}
	if len(p.Tags) > 0 && len(it.Tags) > 0 {
		weight += tagWeight
		score += tagWeight * jaccard(p.Tags, it.Tags)
	}
	if len(p.Skills) > 0 && len(it.SkillRefs) > 0 {
		weight += skillWeight
		score += skillWeight * jaccard(p.Skills, it.SkillRefs)
	}
	if p.Difficulty > 0 && it.HasDifficulty() {
		weight += difficultyWeight
		diff := p.Difficulty - it.Difficulty
		if diff < 0 {
			diff = -diff
		}
		score += difficultyWeight * max(0, 1-diff/5)
	}

	if weight == 0 {
		return 0
	}
	return score / weight
}

func jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	union := len(set)
	inter := 0
	seen := make(map[string]bool, len(b))
	for _, v := range b {
		if seen[v] {
			continue
		}
		seen[v] = true
		if set[v] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// topByCount returns up to n keys by descending count, ties by key.
func topByCount(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
