package recommender

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullAnswers() Answers {
	return Answers{
		KeyMood:       "普通",
		KeyAcidity:    "好き",
		KeyBitterness: "軽めが好き",
		KeyTiming:     "朝",
		KeySnack:      "甘い系（チョコ・ケーキ）",
		KeyHoliday:    "ゆったり静かに",
		KeySelf:       "落ち着き",
		KeyValue:      "香り",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, fullAnswers().Validate())

	missing := fullAnswers()
	delete(missing, KeySnack)
	assert.ErrorIs(t, missing.Validate(), ErrIncompleteAnswers)

	blank := fullAnswers()
	blank[KeyValue] = "  "
	assert.ErrorIs(t, blank.Validate(), ErrIncompleteAnswers)
}

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name string
		in   Answers
		want Profile
	}{
		{"acid and light in the morning", fullAnswers(), Profile{Acidity: 4, Bitterness: 1.5, Roast: 1}},
		{"bitter at night", Answers{KeyAcidity: "苦手", KeyBitterness: "深め・ビターが好き", KeyTiming: "夜"}, Profile{Acidity: 1, Bitterness: 4, Roast: 3}},
		{"neutral at night", Answers{KeyAcidity: "普通", KeyBitterness: "ほどほど", KeyTiming: "夜"}, Profile{Acidity: 2.5, Bitterness: 2.5, Roast: 2.3}},
		{"neutral in the morning", Answers{KeyAcidity: "普通", KeyBitterness: "ほどほど", KeyTiming: "朝"}, Profile{Acidity: 2.5, Bitterness: 2.5, Roast: 1.7}},
		{"empty", Answers{}, Profile{Acidity: 2.5, Bitterness: 2.5, Roast: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProfileFor(tt.in)
			assert.InDelta(t, tt.want.Acidity, got.Acidity, 1e-9)
			assert.InDelta(t, tt.want.Bitterness, got.Bitterness, 1e-9)
			assert.InDelta(t, tt.want.Roast, got.Roast, 1e-9)
		})
	}
}

func TestRoastLevel(t *testing.T) {
	assert.Equal(t, 1.0, RoastLevel("Light"))
	assert.Equal(t, 1.0, RoastLevel("浅煎り"))
	assert.Equal(t, 3.0, RoastLevel("DARK"))
	assert.Equal(t, 3.0, RoastLevel("深煎り"))
	assert.Equal(t, 2.0, RoastLevel("Medium"))
	assert.Equal(t, 2.0, RoastLevel(""))
}

func TestScoreTreatsMissingAxesAsNeutral(t *testing.T) {
	p := Profile{Acidity: 4, Bitterness: 1.5, Roast: 1}
	bean := Bean{Name: "Unknown", Roast: "Medium"}

	assert.InDelta(t, 2*1+1.5+1, Score(bean, p), 1e-9)
}

func TestPrimaryHasMinimumScore(t *testing.T) {
	answerSets := []Answers{
		fullAnswers(),
		{KeyAcidity: "苦手", KeyBitterness: "深め・ビターが好き", KeyTiming: "夜", KeyValue: "刺激・インパクト"},
		{KeyAcidity: "普通", KeyBitterness: "ほどほど", KeyTiming: "昼"},
	}

	beans := FallbackBeans()
	for _, a := range answerSets {
		result, err := Recommend(a, beans, true)
		require.NoError(t, err)

		p := ProfileFor(a)
		var primaryScore float64
		lowest := Score(beans[0], p)
		for _, b := range beans {
			s := Score(b, p)
			if s < lowest {
				lowest = s
			}
			if b.ID == result.Primary.ID {
				primaryScore = s
			}
		}
		assert.Equal(t, lowest, primaryScore)
		assert.Len(t, result.Alternatives, 3)
		assert.True(t, result.Fallback)
	}
}

func TestRankKeepsCatalogOrderForTies(t *testing.T) {
	beans := []Bean{
		{ID: "a", Name: "A", Roast: "Medium"},
		{ID: "b", Name: "B", Roast: "Medium"},
		{ID: "c", Name: "C", Roast: "Medium"},
	}

	ranked := Rank(beans, Profile{Acidity: 2.5, Bitterness: 2.5, Roast: 2})
	require.Len(t, ranked, 3)
	assert.Equal(t, "a", ranked[0].Bean.ID)
	assert.Equal(t, "b", ranked[1].Bean.ID)
	assert.Equal(t, "c", ranked[2].Bean.ID)
}

func TestSwappingAxesSwapsOrder(t *testing.T) {
	p := ProfileFor(fullAnswers())
	x := Bean{ID: "x", Roast: "Light", Acidity: ptr(4), Bitterness: ptr(1)}
	y := Bean{ID: "y", Roast: "Dark", Acidity: ptr(1), Bitterness: ptr(4)}

	first := Rank([]Bean{x, y}, p)
	x.Roast, y.Roast = y.Roast, x.Roast
	x.Acidity, y.Acidity = y.Acidity, x.Acidity
	x.Bitterness, y.Bitterness = y.Bitterness, x.Bitterness
	second := Rank([]Bean{x, y}, p)

	assert.Equal(t, "x", first[0].Bean.ID)
	assert.Equal(t, "y", second[0].Bean.ID)
	assert.Equal(t, first[0].Score, second[0].Score)
}

func TestRecommendEmptyCatalog(t *testing.T) {
	_, err := Recommend(fullAnswers(), nil, false)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "軽め志向 / 酸味を好む / 朝に飲むことが多い / 求めるのは「香り」", Reason(fullAnswers()))
	assert.Equal(t, "回答傾向に基づき選定しました。", Reason(Answers{}))
}

func TestSelectCatalog(t *testing.T) {
	menu := []Bean{{ID: "1", Name: "Kenya"}, {ID: "2", Name: "Peru"}}

	t.Run("filters out of stock", func(t *testing.T) {
		beans, fallback := SelectCatalog(menu, nil, map[string]int{"Kenya": 0, "Peru": 300})
		require.Len(t, beans, 1)
		assert.Equal(t, "Peru", beans[0].Name)
		assert.False(t, fallback)
	})

	t.Run("no stock info keeps menu", func(t *testing.T) {
		beans, fallback := SelectCatalog(menu, nil, nil)
		assert.Len(t, beans, 2)
		assert.False(t, fallback)
	})

	t.Run("all out of stock uses full menu", func(t *testing.T) {
		beans, fallback := SelectCatalog(menu, nil, map[string]int{"Kenya": 0})
		assert.Len(t, beans, 2)
		assert.True(t, fallback)
	})

	t.Run("fetch failure uses fallback table", func(t *testing.T) {
		beans, fallback := SelectCatalog(menu, errors.New("timeout"), nil)
		assert.Len(t, beans, 18)
		assert.True(t, fallback)
	})
}

func TestStockZeroBeansNeverRecommendedWhenStockExists(t *testing.T) {
	menu := FallbackBeans()
	stock := map[string]int{}
	for i, b := range menu {
		if i%2 == 0 {
			stock[b.Name] = 500
		} else {
			stock[b.Name] = 0
		}
	}

	beans, _ := SelectCatalog(menu, nil, stock)
	result, err := Recommend(fullAnswers(), beans, false)
	require.NoError(t, err)

	assert.Positive(t, stock[result.Primary.Name])
	for _, alt := range result.Alternatives {
		assert.Positive(t, stock[alt.Name])
	}
}
