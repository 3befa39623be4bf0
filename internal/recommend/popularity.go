package recommend

import (
	"math"

	"github.com/abhisek/masteryrank/internal/behavior"
)

const defaultAvgScore = 50

// Popularity scores each candidate by log10(practiceCount+1) * avgScore/100,
// normalized by the largest value in the set. Items without an average
// score count as 50. An all-zero set scores 0 throughout.
func Popularity(items []behavior.Item) map[string]float64 {
	raw := make(map[string]float64, len(items))
	var hi float64
	for _, it := range items {
		avg := float64(defaultAvgScore)
		if it.AvgScore != nil {
			avg = *it.AvgScore
		}
		v := math.Log10(float64(it.PracticeCount)+1) * (avg / 100)
		raw[it.ID] = v
		hi = math.Max(hi, v)
	}
	for id, v := range raw {
		if hi > 0 {
			raw[id] = v / hi
		} else {
			raw[id] = 0
		}
	}
	return raw
}

// Diversity scores each candidate by the mean of 1/frequency over its tags,
// where frequency counts candidates carrying the tag. Rare tags score
// higher; untagged items score 0.
func Diversity(items []behavior.Item) map[string]float64 {
	freq := make(map[string]int)
	for _, it := range items {
		for _, t := range uniq(it.Tags) {
			freq[t]++
		}
	}

	out := make(map[string]float64, len(items))
	for _, it := range items {
		tags := uniq(it.Tags)
		if len(tags) == 0 {
			out[it.ID] = 0
			continue
		}
		var sum float64
		for _, t := range tags {
			sum += 1 / float64(freq[t])
		}
		out[it.ID] = sum / float64(len(tags))
	}
	return out
}

func uniq(vals []string) []string {
	if len(vals) < 2 {
		return vals
	}
	seen := make(map[string]bool, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
