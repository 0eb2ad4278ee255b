package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/twbrandon7/lexi-connect/internal/model"
	"github.com/twbrandon7/lexi-connect/internal/pkg/serr"
)

// llmClient is the slice of the AI gateway the discovery flow uses.
type llmClient interface {
	Complete(ctx context.Context, prompt, schemaName string, schema *jsonschema.Definition, out any) error
	Speech(ctx context.Context, text string) ([]byte, error)
}

// DiscoveryService orchestrates the AI gateway: free-text discovery,
// follow-up suggestions, full card detail generation, field refinement,
// duplicate checking and audio synthesis. It never writes to the store.
type DiscoveryService struct {
	llm     llmClient
	details *ristretto.Cache[string, model.CardDetail]
}

type DiscoveryServiceConfig struct {
	DetailCacheKeys int64
	DetailCacheCost int64
}

func NewDiscoveryService(llm llmClient, cfg DiscoveryServiceConfig) *DiscoveryService {
	cache, err := ristretto.NewCache(&ristretto.Config[string, model.CardDetail]{
		NumCounters: cfg.DetailCacheKeys * 10,
		MaxCost:     cfg.DetailCacheCost,
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create card detail cache: %v", err))
	}

	return &DiscoveryService{
		llm:     llm,
		details: cache,
	}
}

type DiscoverRequest struct {
	Query          string
	MotherLanguage string
}

type DiscoverResponse struct {
	Answer      Answer
	Suggestions []model.Suggestion
}

type suggestionOut struct {
	WordOrPhrase    string `json:"wordOrPhrase"`
	PartOfSpeech    string `json:"partOfSpeech"`
	Translation     string `json:"translation"`
	ExampleSentence string `json:"exampleSentence"`
}

func (o suggestionOut) toModel() model.Suggestion {
	return model.Suggestion{
		WordOrPhrase:    o.WordOrPhrase,
		PartOfSpeech:    o.PartOfSpeech,
		Translation:     o.Translation,
		ExampleSentence: o.ExampleSentence,
	}
}

// Discover answers a free-text vocabulary question asked in the user's
// mother language and proposes candidate cards.
func (s *DiscoveryService) Discover(ctx context.Context, r DiscoverRequest) (DiscoverResponse, error) {
	if strings.TrimSpace(r.Query) == "" {
		return DiscoverResponse{}, serr.NewServiceError(nil, http.StatusBadRequest, "query is required")
	}

	prompt := fmt.Sprintf(`You are answering a question about English vocabulary asked in %s.
Question: %s

Answer the question with definitions, example sentences and usage context. Format the
answer as plain text where each list item is on its own line starting with "- ".
Also suggest 3-5 vocabulary cards the user might want to create, each with the English
word or phrase, its part of speech, its translation into %s and a simple example sentence.`,
		motherLanguage(r.MotherLanguage), r.Query, motherLanguage(r.MotherLanguage))

	var out struct {
		Answer      string          `json:"answer"`
		Suggestions []suggestionOut `json:"suggestions"`
	}
	if err := s.llm.Complete(ctx, prompt, "vocabulary_discovery", discoverySchema(), &out); err != nil {
		return DiscoverResponse{}, s.generationFailed(err)
	}

	resp := DiscoverResponse{Answer: ParseAnswer(out.Answer)}
	for _, sug := range out.Suggestions {
		resp.Suggestions = append(resp.Suggestions, sug.toModel())
	}
	return resp, nil
}

type SuggestMoreRequest struct {
	Query          string
	MotherLanguage string
	ExistingWords  []string
}

// SuggestMore proposes additional candidates for the original query,
// excluding words already suggested. The exclusion is enforced locally with
// a case-insensitive match even if the model ignores the instruction.
func (s *DiscoveryService) SuggestMore(ctx context.Context, r SuggestMoreRequest) ([]model.Suggestion, error) {
	var existing strings.Builder
	for _, w := range r.ExistingWords {
		fmt.Fprintf(&existing, "- %s\n", w)
	}

	prompt := fmt.Sprintf(`The user's original query was: %q
Their mother language is %s.

The following words have already been suggested:
%s
Suggest 3-5 new relevant English vocabulary words or phrases for the original query. The
new suggestions must be different from the words above. For each one provide the word or
phrase, its part of speech, its translation into %s and a new simple example sentence.`,
		r.Query, motherLanguage(r.MotherLanguage), existing.String(), motherLanguage(r.MotherLanguage))

	var out struct {
		Suggestions []suggestionOut `json:"suggestions"`
	}
	if err := s.llm.Complete(ctx, prompt, "suggest_more", suggestionsSchema(), &out); err != nil {
		return nil, s.generationFailed(err)
	}

	seen := make(map[string]struct{}, len(r.ExistingWords))
	for _, w := range r.ExistingWords {
		seen[strings.ToLower(w)] = struct{}{}
	}

	var suggestions []model.Suggestion
	for _, sug := range out.Suggestions {
		if _, dup := seen[strings.ToLower(sug.WordOrPhrase)]; dup {
			continue
		}
		suggestions = append(suggestions, sug.toModel())
	}
	return suggestions, nil
}

type DetailCardRequest struct {
	WordOrPhrase    string
	MotherLanguage  string
	ExampleSentence string
}

// DetailCard generates the full descriptive content for a word. When an
// example sentence is supplied, the meaning and example are tailored to it.
// Results are cached: the same word, language and context yield the same
// detail without another gateway round trip.
func (s *DiscoveryService) DetailCard(ctx context.Context, r DetailCardRequest) (model.CardDetail, error) {
	key := r.WordOrPhrase + "|" + r.MotherLanguage + "|" + r.ExampleSentence
	if detail, found := s.details.Get(key); found {
		return detail, nil
	}

	contextLine := "Create a natural and illustrative example sentence."
	if r.ExampleSentence != "" {
		contextLine = fmt.Sprintf("Use this example sentence and tailor the meaning to its context: %q.", r.ExampleSentence)
	}

	prompt := fmt.Sprintf(`Create a complete and accurate vocabulary card for the English word or phrase %q.
The user's mother language is %s.

Generate: a clear concise definition in English (primaryMeaning), the part of speech,
the IPA pronunciation, an example sentence, the translation of the word or phrase into
%s, and the translation of the example sentence into %s.
%s`,
		r.WordOrPhrase, motherLanguage(r.MotherLanguage), motherLanguage(r.MotherLanguage),
		motherLanguage(r.MotherLanguage), contextLine)

	var out struct {
		PrimaryMeaning             string `json:"primaryMeaning"`
		PartOfSpeech               string `json:"partOfSpeech"`
		PronunciationIpa           string `json:"pronunciationIpa"`
		ExampleSentence            string `json:"exampleSentence"`
		Translation                string `json:"translation"`
		ExampleSentenceTranslation string `json:"exampleSentenceTranslation"`
	}
	if err := s.llm.Complete(ctx, prompt, "card_detail", cardDetailSchema(), &out); err != nil {
		return model.CardDetail{}, s.generationFailed(err)
	}

	detail := model.CardDetail{
		PrimaryMeaning:             out.PrimaryMeaning,
		PartOfSpeech:               out.PartOfSpeech,
		PronunciationIpa:           out.PronunciationIpa,
		ExampleSentence:            out.ExampleSentence,
		Translation:                out.Translation,
		ExampleSentenceTranslation: out.ExampleSentenceTranslation,
	}

	s.details.Set(key, detail, 1)
	s.details.Wait()

	return detail, nil
}

// SynthesizeAudio returns the spoken text as a WAV data URI.
func (s *DiscoveryService) SynthesizeAudio(ctx context.Context, text string) (string, error) {
	audio, err := s.llm.Speech(ctx, text)
	if err != nil {
		return "", s.generationFailed(err)
	}

	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(audio), nil
}

// refinableFields are the card fields the AI may rewrite on request.
var refinableFields = map[string]struct{}{
	"wordOrPhrase":               {},
	"primaryMeaning":             {},
	"partOfSpeech":               {},
	"pronunciationIpa":           {},
	"exampleSentence":            {},
	"exampleSentenceTranslation": {},
	"translation":                {},
}

type RefineFieldRequest struct {
	Card         model.VocabularyCard
	FieldName    string
	Instructions string
}

// RefineField rewrites one field of a card snapshot per the user's
// instructions. It persists nothing; the caller decides whether to apply the
// result through an update.
func (s *DiscoveryService) RefineField(ctx context.Context, r RefineFieldRequest) (string, error) {
	if _, ok := refinableFields[r.FieldName]; !ok {
		se := serr.NewServiceError(nil, http.StatusBadRequest, "field %q cannot be refined", r.FieldName)
		return "", se
	}

	prompt := fmt.Sprintf(`A vocabulary card currently reads:
word or phrase: %q
primary meaning: %q
part of speech: %q
IPA: %q
example sentence: %q
example sentence translation: %q
translation: %q

Rewrite only the %q field following these instructions: %s
Return the new value of that single field.`,
		r.Card.WordOrPhrase, r.Card.PrimaryMeaning, r.Card.PartOfSpeech, r.Card.PronunciationIpa,
		r.Card.ExampleSentence, r.Card.ExampleSentenceTranslation, r.Card.Translation,
		r.FieldName, r.Instructions)

	var out struct {
		RefinedValue string `json:"refinedValue"`
	}
	if err := s.llm.Complete(ctx, prompt, "refine_field", refineSchema(), &out); err != nil {
		return "", s.generationFailed(err)
	}

	return out.RefinedValue, nil
}

type CheckExistingRequest struct {
	Query          string
	MotherLanguage string
	ExistingCards  []model.VocabularyCard
}

type ExistingCardMatch struct {
	WordOrPhrase   string
	PrimaryMeaning string
}

type CheckExistingResponse struct {
	Suggestions       []model.Suggestion
	ExistingCardFound bool
	ExistingCard      *ExistingCardMatch
}

// CheckExisting suggests cards for the query and asks the model whether any
// card already in the session covers a similar meaning. The similarity
// judgment is entirely the model's; no local matching is attempted.
func (s *DiscoveryService) CheckExisting(ctx context.Context, r CheckExistingRequest) (CheckExistingResponse, error) {
	var existing strings.Builder
	for _, c := range r.ExistingCards {
		fmt.Fprintf(&existing, "- %s: %s\n", c.WordOrPhrase, c.PrimaryMeaning)
	}
	if existing.Len() == 0 {
		existing.WriteString("(none)\n")
	}

	prompt := fmt.Sprintf(`The user query is %q, asked in %s.

Suggest English vocabulary cards relevant to the query, each with the word or phrase,
part of speech, translation into %s and an example sentence.

The session already contains these cards:
%s
If one of the existing cards already has a similar meaning to what the query asks for,
set existingCardFound to true and return that card's word and meaning; otherwise set it
to false.`,
		r.Query, motherLanguage(r.MotherLanguage), motherLanguage(r.MotherLanguage), existing.String())

	var out struct {
		Suggestions       []suggestionOut `json:"suggestions"`
		ExistingCardFound bool            `json:"existingCardFound"`
		ExistingCard      *struct {
			WordOrPhrase   string `json:"wordOrPhrase"`
			PrimaryMeaning string `json:"primaryMeaning"`
		} `json:"existingCard"`
	}
	if err := s.llm.Complete(ctx, prompt, "check_existing", checkExistingSchema(), &out); err != nil {
		return CheckExistingResponse{}, s.generationFailed(err)
	}

	resp := CheckExistingResponse{ExistingCardFound: out.ExistingCardFound}
	for _, sug := range out.Suggestions {
		resp.Suggestions = append(resp.Suggestions, sug.toModel())
	}
	if out.ExistingCardFound && out.ExistingCard != nil {
		resp.ExistingCard = &ExistingCardMatch{
			WordOrPhrase:   out.ExistingCard.WordOrPhrase,
			PrimaryMeaning: out.ExistingCard.PrimaryMeaning,
		}
	}
	return resp, nil
}

func (s *DiscoveryService) generationFailed(err error) error {
	return serr.NewServiceError(err, http.StatusBadGateway, "vocabulary generation failed")
}

func motherLanguage(lang string) string {
	if lang == "" {
		return "English"
	}
	return lang
}
