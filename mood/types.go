/*
Package mood provides the mood-registration domain: the before-mood
onomatopoeia reference set, the fixed after-mood point mapping, and the
Recorder that turns a completed registration into an event plus a ledger
credit.

KEY CONCEPTS:
  - Onomatopoeia: the 12 before-mood selectors, grouped by mood category
  - Scene: the context tag for where/when the mood was logged
  - AfterMood: the post-suggestion outcome; the ONLY input to point awards
  - Event: one completed mood-registration interaction, append-only

POINT MAPPING (fixed, never independently settable):
  unchanged        +5
  slightly better  +10
  much better      +20

SEE ALSO:
  - recorder.go: validation and the atomic event+credit write
  - suggest/: the provider whose output may be attached as an opaque payload
*/
package mood

import (
	"encoding/json"
	"time"
)

// =============================================================================
// AFTER-MOOD - outcome categories and their point awards
// =============================================================================

type AfterMood string

const (
	Unchanged      AfterMood = "unchanged"
	SlightlyBetter AfterMood = "slightly_better"
	MuchBetter     AfterMood = "much_better"
)

// afterMoodPoints is the fixed award mapping. Points are a pure function of
// the category; nothing else may set them.
var afterMoodPoints = map[AfterMood]int{
	Unchanged:      5,
	SlightlyBetter: 10,
	MuchBetter:     20,
}

// Valid reports whether m is one of the defined categories.
func (m AfterMood) Valid() bool {
	_, ok := afterMoodPoints[m]
	return ok
}

// Points returns the award for this category, 0 for an invalid one.
func (m AfterMood) Points() int {
	return afterMoodPoints[m]
}

// Improved reports whether the suggestion moved the mood at all.
func (m AfterMood) Improved() bool {
	return m == SlightlyBetter || m == MuchBetter
}

// AfterMoods lists the defined categories in ascending award order.
func AfterMoods() []AfterMood {
	return []AfterMood{Unchanged, SlightlyBetter, MuchBetter}
}

// =============================================================================
// ONOMATOPOEIA - the before-mood selectors
// =============================================================================

type Category string

const (
	CategoryGloom    Category = "gloom"
	CategoryFatigue  Category = "fatigue"
	CategoryAnxiety  Category = "anxiety"
	CategoryBoredom  Category = "boredom"
	CategoryUplifted Category = "uplifted" // already-positive moods still get logged
)

// Onomatopoeia is one before-mood selector.
type Onomatopoeia struct {
	ID       string
	Label    string // romanized reading
	Glyph    string
	Category Category
}

var onomatopoeiaSet = []Onomatopoeia{
	{ID: "shaki", Label: "shaki", Glyph: "💪", Category: CategoryUplifted},
	{ID: "kibikibi", Label: "kibikibi", Glyph: "⚡", Category: CategoryUplifted},
	{ID: "nobinobi", Label: "nobinobi", Glyph: "🌸", Category: CategoryUplifted},
	{ID: "runrun", Label: "runrun", Glyph: "🎵", Category: CategoryUplifted},
	{ID: "bonyari", Label: "bonyari", Glyph: "☁️", Category: CategoryGloom},
	{ID: "daradara", Label: "daradara", Glyph: "😪", Category: CategoryBoredom},
	{ID: "sowasowa", Label: "sowasowa", Glyph: "😰", Category: CategoryAnxiety},
	{ID: "maamaa", Label: "maamaa", Glyph: "🙂", Category: CategoryBoredom},
	{ID: "utouto", Label: "utouto", Glyph: "💤", Category: CategoryFatigue},
	{ID: "guttari", Label: "guttari", Glyph: "🌀", Category: CategoryFatigue},
	{ID: "bikubiku", Label: "bikubiku", Glyph: "😨", Category: CategoryAnxiety},
	{ID: "iraira", Label: "iraira", Glyph: "😠", Category: CategoryGloom},
}

// AllOnomatopoeia returns the full selector set, in display order.
func AllOnomatopoeia() []Onomatopoeia {
	out := make([]Onomatopoeia, len(onomatopoeiaSet))
	copy(out, onomatopoeiaSet)
	return out
}

// OnomatopoeiaByID looks up a selector by id.
func OnomatopoeiaByID(id string) (Onomatopoeia, bool) {
	for _, o := range onomatopoeiaSet {
		if o.ID == id {
			return o, true
		}
	}
	return Onomatopoeia{}, false
}

// =============================================================================
// SCENES - context tags
// =============================================================================

type Scene string

const (
	SceneBeforeMeeting Scene = "before_meeting"
	SceneDeadline      Scene = "deadline"
	SceneFirstThing    Scene = "first_thing"
	SceneAfterLunch    Scene = "after_lunch"
	SceneAfternoon     Scene = "afternoon"
	SceneEvening       Scene = "evening"
	SceneNight         Scene = "night"
	SceneBedtime       Scene = "bedtime"
	SceneOther         Scene = "other"
)

// Scenes lists the defined context tags.
func Scenes() []Scene {
	return []Scene{
		SceneBeforeMeeting, SceneDeadline, SceneFirstThing, SceneAfterLunch,
		SceneAfternoon, SceneEvening, SceneNight, SceneBedtime, SceneOther,
	}
}

// Valid reports whether s is a defined scene. The empty scene is allowed:
// the context tag is optional.
func (s Scene) Valid() bool {
	if s == "" {
		return true
	}
	for _, known := range Scenes() {
		if s == known {
			return true
		}
	}
	return false
}

// DefaultScene suggests a scene from the hour of day, mirroring what the
// selection UI preselects.
func DefaultScene(at time.Time) Scene {
	switch h := at.Hour(); {
	case h >= 5 && h < 11:
		return SceneFirstThing
	case h >= 11 && h < 14:
		return SceneAfterLunch
	case h >= 14 && h < 18:
		return SceneAfternoon
	case h >= 18 && h < 22:
		return SceneEvening
	default:
		return SceneBedtime
	}
}

// =============================================================================
// EVENT - one completed mood registration
// =============================================================================

// Event is the append-only record of one mood-registration interaction.
// Immutable once written; never deleted.
type Event struct {
	ID             string
	UserID         string
	At             time.Time // UTC instant of registration
	Onomatopoeia   string    // before-mood selector id
	Scene          Scene
	AfterMood      AfterMood
	Points         int             // always AfterMood.Points(); persisted for audit
	Suggestion     json.RawMessage // opaque provider payload, may be nil
	IdempotencyKey string
	CreatedAt      time.Time
}
