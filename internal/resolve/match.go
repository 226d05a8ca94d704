package resolve

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/saadjs/kcal-sync/internal/model"
)

// DefaultMatchThreshold is the minimum score TokenMatcher accepts.
const DefaultMatchThreshold = 0.75

// Match is at most one of Alcohol or Caffeine.
type Match struct {
	Alcohol  *model.AlcoholBeverage
	Caffeine *model.CaffeineProduct
	Score    float64
}

// Matcher decides whether a free-text name/brand pair denotes one of the
// cached specialized products. ok=false is always a safe answer.
type Matcher interface {
	Match(name, brand string, alcohol []model.AlcoholBeverage, caffeine []model.CaffeineProduct) (Match, bool)
}

// TokenMatcher scores by token overlap between the query name and candidate
// name, plus a bonus when the brands share a token. Ties for the best score
// yield no match, as does a best score below Threshold.
type TokenMatcher struct {
	Threshold  float64
	BrandBonus float64
}

func NewTokenMatcher() TokenMatcher {
	return TokenMatcher{Threshold: DefaultMatchThreshold, BrandBonus: 0.15}
}

func (m TokenMatcher) Match(name, brand string, alcohol []model.AlcoholBeverage, caffeine []model.CaffeineProduct) (Match, bool) {
	threshold := m.Threshold
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	query := tokenize(name)
	if len(query) == 0 {
		return Match{}, false
	}
	brandTokens := tokenize(brand)

	best := Match{}
	bestScore := -1.0
	bestKey := ""
	tied := false
	// key identifies a product so a product listed under two categories is
	// not a tie with itself.
	consider := func(score float64, key string, set func(*Match)) {
		switch {
		case score > bestScore+1e-9:
			best = Match{Score: score}
			set(&best)
			bestScore = score
			bestKey = key
			tied = false
		case math.Abs(score-bestScore) <= 1e-9 && key != bestKey:
			tied = true
		}
	}
	for i := range alcohol {
		b := alcohol[i]
		consider(m.score(query, brandTokens, b.Name, b.Brand), fmt.Sprintf("alcohol:%d", b.ID), func(mt *Match) { mt.Alcohol = &b })
	}
	for i := range caffeine {
		p := caffeine[i]
		consider(m.score(query, brandTokens, p.Name, p.Brand), fmt.Sprintf("caffeine:%d", p.ID), func(mt *Match) { mt.Caffeine = &p })
	}
	if tied || bestScore < threshold {
		return Match{}, false
	}
	return best, true
}

// score is the Jaccard overlap of name tokens, plus BrandBonus when the
// brands share a token, capped at 1.
func (m TokenMatcher) score(query, queryBrand []string, name, brand string) float64 {
	cand := tokenize(name)
	if len(cand) == 0 {
		return 0
	}
	set := map[string]bool{}
	for _, t := range cand {
		set[t] = true
	}
	matched := 0
	for _, t := range query {
		if set[t] {
			matched++
		}
	}
	union := len(query) + len(cand) - matched
	score := float64(matched) / math.Max(1, float64(union))
	if matched > 0 && len(queryBrand) > 0 {
		brandSet := map[string]bool{}
		for _, t := range tokenize(brand) {
			brandSet[t] = true
		}
		for _, t := range queryBrand {
			if brandSet[t] {
				score += m.BrandBonus
				break
			}
		}
	}
	return math.Min(1, score)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func tokenize(s string) []string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	parts := strings.Fields(nonAlnum.ReplaceAllString(s, " "))
	seen := map[string]bool{}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
