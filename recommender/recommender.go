// Package recommender scores coffee beans against questionnaire answers.
// It has no I/O; callers assemble the catalog and persist results.
package recommender

import (
	"errors"
	"math"
	"sort"
	"strings"
)

const neutralAxis = 2.5

var ErrNoCandidates = errors.New("レコメンドを生成できませんでした。")

// Bean is a scoring candidate. Nil axes are treated as neutral.
type Bean struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Roast      string   `json:"roast,omitempty"`
	Acidity    *float64 `json:"acidity,omitempty"`
	Bitterness *float64 `json:"bitterness,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// Profile is the taste target derived from answers, on a 1..4 scale
// for acidity/bitterness and 1..3 for roast.
type Profile struct {
	Acidity    float64 `json:"acidity"`
	Bitterness float64 `json:"bitterness"`
	Roast      float64 `json:"roast"`
}

func likesAcidity(a Answers) bool   { return strings.Contains(a[KeyAcidity], "好き") }
func dislikesAcidity(a Answers) bool { return strings.Contains(a[KeyAcidity], "苦手") }

func likesBitter(a Answers) bool {
	v := a[KeyBitterness]
	return strings.Contains(v, "深め") || strings.Contains(v, "ビター")
}

func likesLight(a Answers) bool { return strings.Contains(a[KeyBitterness], "軽め") }

func ProfileFor(a Answers) Profile {
	p := Profile{Acidity: neutralAxis, Bitterness: neutralAxis, Roast: 2}

	switch {
	case likesAcidity(a):
		p.Acidity = 4
	case dislikesAcidity(a):
		p.Acidity = 1
	}

	switch {
	case likesBitter(a):
		p.Bitterness = 4
		p.Roast = 3
	case likesLight(a):
		p.Bitterness = 1.5
	}

	if likesAcidity(a) && likesLight(a) {
		p.Roast = 1
	}

	timing := a[KeyTiming]
	if strings.Contains(timing, "朝") {
		p.Roast = math.Max(1, p.Roast-0.3)
	}
	if strings.Contains(timing, "夜") {
		p.Roast = math.Min(3, p.Roast+0.3)
	}

	return p
}

// RoastLevel maps a free-form roast label to 1 (light), 2 (medium) or 3 (dark).
func RoastLevel(roast string) float64 {
	lower := strings.ToLower(roast)
	switch {
	case strings.Contains(lower, "light") || strings.Contains(lower, "浅"):
		return 1
	case strings.Contains(lower, "dark") || strings.Contains(lower, "深"):
		return 3
	}
	return 2
}

func axis(v *float64) float64 {
	if v == nil {
		return neutralAxis
	}
	return *v
}

// Score is the weighted distance between a bean and a profile; lower is better.
func Score(b Bean, p Profile) float64 {
	roastDiff := math.Abs(RoastLevel(b.Roast) - p.Roast)
	acidityDiff := math.Abs(axis(b.Acidity) - p.Acidity)
	bitternessDiff := math.Abs(axis(b.Bitterness) - p.Bitterness)
	return roastDiff*2 + acidityDiff + bitternessDiff
}

type Scored struct {
	Bean  Bean
	Score float64
}

// Rank sorts beans by ascending score, keeping input order for ties.
func Rank(beans []Bean, p Profile) []Scored {
	scored := make([]Scored, len(beans))
	for i, b := range beans {
		scored[i] = Scored{Bean: b, Score: Score(b, p)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})
	return scored
}

type Pick struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

type Result struct {
	Primary      *Pick  `json:"primary"`
	Alternatives []Pick `json:"alternatives"`
	Fallback     bool   `json:"fallback"`
}

// Recommend picks the best bean plus up to three alternatives.
func Recommend(a Answers, beans []Bean, fallback bool) (Result, error) {
	if len(beans) == 0 {
		return Result{}, ErrNoCandidates
	}

	ranked := Rank(beans, ProfileFor(a))
	best := ranked[0].Bean
	result := Result{
		Primary:      &Pick{ID: best.ID, Name: best.Name, Reason: Reason(a)},
		Alternatives: []Pick{},
		Fallback:     fallback,
	}

	for i := 1; i < len(ranked) && i <= 3; i++ {
		result.Alternatives = append(result.Alternatives, Pick{ID: ranked[i].Bean.ID, Name: ranked[i].Bean.Name})
	}
	return result, nil
}

// Reason summarises the answers that drove the pick.
func Reason(a Answers) string {
	var parts []string
	switch {
	case likesBitter(a):
		parts = append(parts, "ビター好き")
	case likesLight(a):
		parts = append(parts, "軽め志向")
	}
	if likesAcidity(a) {
		parts = append(parts, "酸味を好む")
	}
	if dislikesAcidity(a) {
		parts = append(parts, "酸味控えめ")
	}
	if t := a[KeyTiming]; t != "" {
		parts = append(parts, t+"に飲むことが多い")
	}
	if v := a[KeyValue]; v != "" {
		parts = append(parts, "求めるのは「"+v+"」")
	}

	if len(parts) == 0 {
		return "回答傾向に基づき選定しました。"
	}
	return strings.Join(parts, " / ")
}

// SelectCatalog chooses the scoring pool. With stock info, out-of-stock menu
// beans are dropped; an empty result falls back to the full menu, and an
// empty or failed menu falls back to FallbackBeans. fallback reports whether
// the pool is anything other than the filtered live menu.
func SelectCatalog(menu []Bean, fetchErr error, stock map[string]int) (beans []Bean, fallback bool) {
	if fetchErr != nil {
		menu = nil
	}

	filtered := menu
	if len(stock) > 0 {
		filtered = make([]Bean, 0, len(menu))
		for _, b := range menu {
			if stock[b.Name] > 0 {
				filtered = append(filtered, b)
			}
		}
	}

	switch {
	case len(filtered) > 0:
		return filtered, false
	case len(menu) > 0:
		return menu, true
	}
	return FallbackBeans(), true
}
