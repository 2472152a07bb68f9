package recommender

import (
	"errors"
	"strings"
)

// DeviceCookieName identifies an anonymous visitor across recommender and cart calls.
const (
	DeviceCookieName   = "aurelbel_device_id"
	DeviceCookieMaxAge = 60 * 60 * 24 * 365
)

var ErrIncompleteAnswers = errors.New("8問すべてに回答してください。")

const (
	KeyMood       = "q1_mood"
	KeyAcidity    = "q2_acidity"
	KeyBitterness = "q3_bitterness"
	KeyTiming     = "q4_timing"
	KeySnack      = "q5_snack"
	KeyHoliday    = "q6_holiday"
	KeySelf       = "q7_self"
	KeyValue      = "q8_value"
)

var AnswerKeys = []string{
	KeyMood, KeyAcidity, KeyBitterness, KeyTiming,
	KeySnack, KeyHoliday, KeySelf, KeyValue,
}

// Answers maps a question key to the chosen option text.
type Answers map[string]string

// Validate requires a non-blank answer for every key.
func (a Answers) Validate() error {
	for _, key := range AnswerKeys {
		if strings.TrimSpace(a[key]) == "" {
			return ErrIncompleteAnswers
		}
	}
	return nil
}

type Question struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

var Questions = []Question{
	{ID: KeyMood, Title: "1日のテンションはどちらに近い？", Options: []string{"落ち着いた感じ", "普通", "活動的でエネルギッシュ"}},
	{ID: KeyAcidity, Title: "コーヒーの酸味はどう思う？", Options: []string{"好き", "普通", "苦手"}},
	{ID: KeyBitterness, Title: "苦味への耐性は？", Options: []string{"軽めが好き", "ほどほど", "深め・ビターが好き"}},
	{ID: KeyTiming, Title: "コーヒーを飲むタイミングはいつが多い？", Options: []string{"朝", "昼", "夜"}},
	{ID: KeySnack, Title: "普段よく食べるお菓子は？", Options: []string{"甘い系（チョコ・ケーキ）", "塩気のあるもの（ポテチ etc）", "食べない or バラバラ"}},
	{ID: KeyHoliday, Title: "好きな休日の過ごし方は？", Options: []string{"ゆったり静かに", "買い物など適度に外出", "外に出て活動する"}},
	{ID: KeySelf, Title: "自分を一言で表すなら？", Options: []string{"落ち着き", "バランス型", "自由・行動タイプ"}},
	{ID: KeyValue, Title: "コーヒーに求めるものを1つ選ぶと？", Options: []string{"香り", "味のバランス", "刺激・インパクト"}},
}
