package model

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type SessionState string

const (
	StateOpen     SessionState = "open"
	StateClosed   SessionState = "closed"
	StateReopened SessionState = "reopened"
)

func (s SessionState) Valid() bool {
	return s == StateOpen || s == StateClosed || s == StateReopened
}

// Editable reports whether cards in a session with this state may be
// created, edited or deleted. A reopened session behaves like an open one.
func (s SessionState) Editable() bool {
	return s != StateClosed
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyBeginner || d == DifficultyIntermediate || d == DifficultyAdvanced
}

// Session is a named, owned vocabulary collection shared by its participants.
type Session struct {
	ID             string
	Name           string
	MotherLanguage string
	Visibility     Visibility
	HostID         string
	State          SessionState
	CreatedAt      int64
	Participants   []string
}

// VocabularyCard is a single vocabulary entry belonging to exactly one session.
// ID, SessionID, CreatorID and CreatedAt are fixed at creation; all other
// fields are editable by any participant while the session is not closed.
type VocabularyCard struct {
	ID                         string
	SessionID                  string
	WordOrPhrase               string
	PrimaryMeaning             string
	PartOfSpeech               string
	PronunciationIpa           string
	ExampleSentence            string
	ExampleSentenceTranslation string
	Translation                string
	AudioPronunciationURL      string
	CreatorID                  string
	CreatedAt                  int64
}

// PersonalVocabulary is a per-user bookmark of one vocabulary card. It holds a
// reference, not a copy: the referenced card may no longer exist.
type PersonalVocabulary struct {
	ID              string
	UserID          string
	SessionID       string
	CardID          string
	Mastered        bool
	DifficultyLevel Difficulty
	SavedAt         int64
}

// Suggestion is one AI-proposed vocabulary candidate, not yet a durable card.
type Suggestion struct {
	WordOrPhrase    string
	PartOfSpeech    string
	Translation     string
	ExampleSentence string
}

// CardDetail is the fully generated descriptive content of a card.
type CardDetail struct {
	PrimaryMeaning             string
	PartOfSpeech               string
	PronunciationIpa           string
	ExampleSentence            string
	Translation                string
	ExampleSentenceTranslation string
}
