// Package suggest defines the suggestion-provider boundary: given the mood a
// user just logged, a Provider returns a short rhythm-reset exercise and a
// small comfort-food idea, fronted by a themed cat expert character.
//
// The generative provider lives outside this module. What ships here is the
// static fallback provider, which always answers and never fails, plus the
// expert-character roster. Callers attach whatever the provider returned to
// the mood event as an opaque payload.
package suggest

import (
	"context"
	"time"

	"github.com/pawsitive/mood-engine/mood"
)

// =============================================================================
// SEASON
// =============================================================================

type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// SeasonOf maps a time to its season (northern hemisphere, Mar-May spring).
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	default:
		return Winter
	}
}

// =============================================================================
// EXPERT CHARACTERS
// =============================================================================

// Character is one of the themed cat experts. Exactly one is picked per
// suggestion, based on the before-mood category.
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Specialty   string `json:"specialty"`
	RhythmFocus string `json:"rhythm_focus"`
	FoodFocus   string `json:"food_focus"`
	Tone        string `json:"tone"`
	Catchphrase string `json:"catchphrase"`
	Glyph       string `json:"glyph"`
}

var characters = []Character{
	{
		ID: "moon-therapist", Name: "ムーン・セラピスト", Role: "夜の心の専門家",
		Specialty: "沈んだ気持ちにそっと寄り添う月光の癒やし手",
		RhythmFocus: "ゆっくりした呼吸と静かな間", FoodFocus: "温かくやさしい口当たり",
		Tone: "静かで包み込むよう", Catchphrase: "月あかりの下で、ひと休みニャ", Glyph: "🌙",
	},
	{
		ID: "sunshine-coach", Name: "サンシャイン・コーチ", Role: "気分の切り替え職人",
		Specialty: "どんより気分に小さな光を差し込むコーチ",
		RhythmFocus: "姿勢と視線を上げる小さな動き", FoodFocus: "色の明るい食材",
		Tone: "明るく前向き", Catchphrase: "一歩だけ、光のほうへニャ", Glyph: "🌞",
	},
	{
		ID: "sleep-meister", Name: "スリープ・マイスター", Role: "休息の専門家",
		Specialty: "疲れた体に最短の休息を処方するマイスター",
		RhythmFocus: "脱力と短い仮眠のリズム", FoodFocus: "消化にやさしい一品",
		Tone: "ゆったり低め", Catchphrase: "休むのも、立派な仕事ニャ", Glyph: "💤",
	},
	{
		ID: "recovery-trainer", Name: "リカバリー・トレーナー", Role: "回復の専門家",
		Specialty: "こわばった体をほどくストレッチの達人",
		RhythmFocus: "肩と首をゆるめる3動作", FoodFocus: "水分とミネラル補給",
		Tone: "きびきび頼もしい", Catchphrase: "ほぐして、めぐらせるニャ", Glyph: "🤸",
	},
	{
		ID: "breeze-master", Name: "ブリーズ・マスター", Role: "呼吸の専門家",
		Specialty: "ざわつく胸を呼吸で整える風の使い手",
		RhythmFocus: "長い吐息で副交感神経を起こす", FoodFocus: "香りで落ち着く飲み物",
		Tone: "穏やかで確か", Catchphrase: "吐く息に、不安をのせるニャ", Glyph: "🌬️",
	},
	{
		ID: "herb-sommelier", Name: "ハーブ・ソムリエ", Role: "香りの専門家",
		Specialty: "気持ちに合う香りを選び抜くソムリエ",
		RhythmFocus: "香りを味わう一分間", FoodFocus: "ハーブと柑橘の組み合わせ",
		Tone: "上品で軽やか", Catchphrase: "今日の香り、見立てるニャ", Glyph: "🌿",
	},
	{
		ID: "spark-creator", Name: "スパーク・クリエイター", Role: "ひらめきの専門家",
		Specialty: "退屈な時間に小さな火花を起こす発明家",
		RhythmFocus: "指先を使う遊びのリズム", FoodFocus: "食感に変化のあるおやつ",
		Tone: "好奇心いっぱい", Catchphrase: "つまらないは、発明のもとニャ", Glyph: "✨",
	},
	{
		ID: "flavor-alchemist", Name: "フレーバー・アルケミスト", Role: "味の専門家",
		Specialty: "風味を錬金術のように調合する錬金術師",
		RhythmFocus: "味わいに集中するマインドフルネス", FoodFocus: "複雑な風味の組み合わせ",
		Tone: "知的で探究心旺盛", Catchphrase: "風味の魔法で、心を変えるニャ", Glyph: "⚗️",
	},
	{
		ID: "rhythm-keeper", Name: "リズム・キーパー", Role: "ごきげん維持の専門家",
		Specialty: "良い流れを一日キープさせる番人",
		RhythmFocus: "今の調子を保つ小休止", FoodFocus: "軽くつまめる補給食",
		Tone: "リズミカルで陽気", Catchphrase: "その調子、刻んでいくニャ", Glyph: "🎵",
	},
}

// characterRotation maps each before-mood category to its experts. When a
// category has two, the onomatopoeia id picks one deterministically so the
// same mood always meets the same cat.
var characterRotation = map[mood.Category][]string{
	mood.CategoryGloom:    {"moon-therapist", "sunshine-coach"},
	mood.CategoryFatigue:  {"sleep-meister", "recovery-trainer"},
	mood.CategoryAnxiety:  {"breeze-master", "herb-sommelier"},
	mood.CategoryBoredom:  {"spark-creator", "flavor-alchemist"},
	mood.CategoryUplifted: {"rhythm-keeper"},
}

// Characters returns the full expert roster.
func Characters() []Character {
	out := make([]Character, len(characters))
	copy(out, characters)
	return out
}

// CharacterByID looks up an expert by id.
func CharacterByID(id string) (Character, bool) {
	for _, c := range characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// CharacterFor selects the expert for a before-mood selector.
func CharacterFor(o mood.Onomatopoeia) Character {
	ids := characterRotation[o.Category]
	if len(ids) == 0 {
		ids = characterRotation[mood.CategoryBoredom]
	}
	idx := 0
	for _, r := range o.ID {
		idx += int(r)
	}
	c, _ := CharacterByID(ids[idx%len(ids)])
	return c
}

// =============================================================================
// SUGGESTION PAYLOAD
// =============================================================================

// RhythmReset is a short no-equipment exercise: three steps, a shared ritual
// with the cat, and a follow-up line.
type RhythmReset struct {
	Title     string   `json:"title"`
	OneLiner  string   `json:"one_liner"`
	Steps     []string `json:"steps"`
	CatRitual string   `json:"cat_ritual"`
	FollowUp  string   `json:"one_liner_after"`
}

// Meal is a small comfort-food idea: minimal ingredients, three steps.
type Meal struct {
	Empathy     string   `json:"empathy"`
	Menu        string   `json:"menu"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	CatRitual   string   `json:"cat_ritual"`
	OneLiner    string   `json:"one_liner"`
}

type Suggestion struct {
	Character Character   `json:"character"`
	Season    Season      `json:"season"`
	Rhythm    RhythmReset `json:"rhythm"`
	Meal      Meal        `json:"meal"`
}

// Request carries everything a provider may condition on.
type Request struct {
	Onomatopoeia mood.Onomatopoeia
	Scene        mood.Scene
	Season       Season
}

// Provider produces a suggestion for a just-logged mood.
type Provider interface {
	Suggest(ctx context.Context, req Request) (Suggestion, error)
}

// =============================================================================
// STATIC PROVIDER
// =============================================================================

// Static is the always-available fallback provider. Content is fixed per
// request shape; it never errors.
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (*Static) Suggest(_ context.Context, req Request) (Suggestion, error) {
	ch := CharacterFor(req.Onomatopoeia)
	return Suggestion{
		Character: ch,
		Season:    req.Season,
		Rhythm: RhythmReset{
			Title:     "🫧 リズム・リセット",
			OneLiner:  "深呼吸から始めよう",
			Steps:     []string{"4秒吸う", "6秒吐く", "8回繰り返す"},
			CatRitual: "一緒に深呼吸して、ゆったり過ごすニャ",
			FollowUp:  "おつかれさま",
		},
		Meal: Meal{
			Empathy: "「" + req.Onomatopoeia.Label + "」な気持ち、わかるニャ",
			Menu:    "温かいミルクティー",
			Ingredients: []string{
				"紅茶ティーバッグ 1個",
				"牛乳 100ml",
				"はちみつ 小さじ1",
			},
			Steps: []string{
				"マグカップに牛乳を入れて電子レンジ1分",
				"ティーバッグを入れて1分待つ",
				"はちみつを混ぜて完成",
			},
			CatRitual: "温かいマグを一緒に持って、香りを嗅ぐニャ",
			OneLiner:  "まず一息つこうニャ",
		},
	}, nil
}
