package store

import "github.com/twbrandon7/lexi-connect/internal/model"

// CardFields holds the editable descriptive fields of a card. Nil pointers
// leave the stored value untouched.
type CardFields struct {
	WordOrPhrase               *string
	PrimaryMeaning             *string
	PartOfSpeech               *string
	PronunciationIpa           *string
	ExampleSentence            *string
	ExampleSentenceTranslation *string
	Translation                *string
	AudioPronunciationURL      *string
}

type UpdateCardRequest struct {
	ID     string
	Fields CardFields
}

type UpdateBankEntryRequest struct {
	ID              string
	Mastered        *bool
	DifficultyLevel *model.Difficulty
}

// ListPublicSessionsResponse carries the resolved public sessions in
// created-at descending order plus any index entries that no longer resolve
// to a session document.
type ListPublicSessionsResponse struct {
	Sessions []model.Session
	DriftIDs []string
}
