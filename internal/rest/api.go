package rest

import (
	"context"
	"net/http"

	"github.com/twbrandon7/lexi-connect/internal/model"
	"github.com/twbrandon7/lexi-connect/internal/pkg/fn"
	"github.com/twbrandon7/lexi-connect/internal/pkg/httpx"
	"github.com/twbrandon7/lexi-connect/internal/pkg/middleware"
	"github.com/twbrandon7/lexi-connect/internal/pkg/serr"
	"github.com/twbrandon7/lexi-connect/internal/service"
	"github.com/twbrandon7/lexi-connect/internal/store"
	"github.com/twbrandon7/lexi-connect/internal/watch"
)

type sessionService interface {
	CreateSession(ctx context.Context, r service.CreateSessionRequest) (model.Session, error)
	JoinSession(ctx context.Context, sessionID, userID string) error
	GetSession(ctx context.Context, sessionID string) (model.Session, error)
	SetVisibility(ctx context.Context, sessionID, requesterID string, v model.Visibility) error
	SetState(ctx context.Context, sessionID, requesterID string, state model.SessionState) error
	ListPublicSessions(ctx context.Context) ([]model.Session, error)
	ListMySessions(ctx context.Context, userID string) ([]model.Session, error)
	DeleteSession(ctx context.Context, sessionID, requesterID string) error
}

type cardService interface {
	CreateCard(ctx context.Context, r service.CreateCardRequest) (service.CreateCardResponse, error)
	UpdateCard(ctx context.Context, r service.UpdateCardRequest) (model.VocabularyCard, error)
	DeleteCard(ctx context.Context, cardID, requesterID string) error
	ListCards(ctx context.Context, sessionID string) ([]model.VocabularyCard, error)
}

type bankService interface {
	SaveCard(ctx context.Context, r service.SaveCardRequest) (model.PersonalVocabulary, error)
	SetMastered(ctx context.Context, userID, entryID string, mastered bool) error
	SetDifficulty(ctx context.Context, userID, entryID string, level model.Difficulty) error
	RemoveEntry(ctx context.Context, userID, entryID string) error
	ListBank(ctx context.Context, userID string) ([]model.PersonalVocabulary, error)
	ResolveBankCards(ctx context.Context, userID string) ([]service.ResolvedEntry, error)
}

type discoveryService interface {
	Discover(ctx context.Context, r service.DiscoverRequest) (service.DiscoverResponse, error)
	SuggestMore(ctx context.Context, r service.SuggestMoreRequest) ([]model.Suggestion, error)
	RefineField(ctx context.Context, r service.RefineFieldRequest) (string, error)
	CheckExisting(ctx context.Context, r service.CheckExistingRequest) (service.CheckExistingResponse, error)
	SynthesizeAudio(ctx context.Context, text string) (string, error)
}

type tokenIssuer interface {
	IssueAnonymous() (token, userID string, err error)
}

type API struct {
	sessions  sessionService
	cards     cardService
	bank      bankService
	discovery discoveryService
	issuer    tokenIssuer
	hub       *watch.Hub
	mux       http.ServeMux
}

func NewAPI(sessions sessionService, cards cardService, bank bankService, discovery discoveryService, issuer tokenIssuer, hub *watch.Hub) *API {
	api := &API{
		sessions:  sessions,
		cards:     cards,
		bank:      bank,
		discovery: discovery,
		issuer:    issuer,
		hub:       hub,
		mux:       *http.NewServeMux(),
	}

	api.mount()
	return api
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mux.ServeHTTP(w, r)
}

func (api *API) mount() {
	api.mux.HandleFunc("PUT /sessions", api.handleCreateSession)
	api.mux.HandleFunc("GET /sessions/public", api.handleListPublicSessions)
	api.mux.HandleFunc("GET /sessions/mine", api.handleListMySessions)
	api.mux.HandleFunc("GET /sessions/{session_id}", api.handleGetSession)
	api.mux.HandleFunc("POST /sessions/{session_id}/participants", api.handleJoinSession)
	api.mux.HandleFunc("PUT /sessions/{session_id}/visibility", api.handleSetVisibility)
	api.mux.HandleFunc("PUT /sessions/{session_id}/state", api.handleSetState)
	api.mux.HandleFunc("DELETE /sessions/{session_id}", api.handleDeleteSession)

	api.mux.HandleFunc("PUT /sessions/{session_id}/cards", api.handleCreateCard)
	api.mux.HandleFunc("GET /sessions/{session_id}/cards", api.handleListCards)
	api.mux.HandleFunc("PATCH /cards/{card_id}", api.handleUpdateCard)
	api.mux.HandleFunc("DELETE /cards/{card_id}", api.handleDeleteCard)

	api.mux.HandleFunc("PUT /bank", api.handleSaveCard)
	api.mux.HandleFunc("GET /bank", api.handleListBank)
	api.mux.HandleFunc("GET /bank/resolved", api.handleResolveBank)
	api.mux.HandleFunc("PUT /bank/{entry_id}/mastered", api.handleSetMastered)
	api.mux.HandleFunc("PUT /bank/{entry_id}/difficulty", api.handleSetDifficulty)
	api.mux.HandleFunc("DELETE /bank/{entry_id}", api.handleRemoveEntry)

	api.mux.HandleFunc("POST /discovery", api.handleDiscover)
	api.mux.HandleFunc("POST /discovery/more", api.handleSuggestMore)
	api.mux.HandleFunc("POST /discovery/check", api.handleCheckExisting)
	api.mux.HandleFunc("POST /discovery/refine", api.handleRefineField)
	api.mux.HandleFunc("POST /discovery/audio", api.handleSynthesizeAudio)

	api.mux.HandleFunc("GET /watch/sessions/public", api.handleWatchPublicSessions)
	api.mux.HandleFunc("GET /watch/sessions/{session_id}/cards", api.handleWatchCards)
	api.mux.HandleFunc("GET /watch/bank", api.handleWatchBank)
}

// HandleAnonymousSignIn is mounted outside the auth middleware: it is how a
// client obtains its first token.
func (api *API) HandleAnonymousSignIn(w http.ResponseWriter, r *http.Request) {
	tk, uid, err := api.issuer.IssueAnonymous()
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusCreated, signInResponse{Token: tk, UserID: uid})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type signInResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type sessionResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MotherLanguage string   `json:"motherLanguage"`
	Visibility     string   `json:"visibility"`
	HostID         string   `json:"hostId"`
	State          string   `json:"state"`
	CreatedAt      int64    `json:"createdAt"`
	Participants   []string `json:"participants,omitempty"`
}

func toSessionResponse(s model.Session) sessionResponse {
	return sessionResponse{
		ID:             s.ID,
		Name:           s.Name,
		MotherLanguage: s.MotherLanguage,
		Visibility:     string(s.Visibility),
		HostID:         s.HostID,
		State:          string(s.State),
		CreatedAt:      s.CreatedAt,
		Participants:   s.Participants,
	}
}

type createSessionRequest struct {
	Name           string `json:"name"`
	MotherLanguage string `json:"motherLanguage"`
	Visibility     string `json:"visibility"`
}

func (api *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	sess, err := api.sessions.CreateSession(r.Context(), service.CreateSessionRequest{
		Name:           req.Name,
		MotherLanguage: req.MotherLanguage,
		Visibility:     model.Visibility(req.Visibility),
		HostID:         middleware.UserIDFromContext(r.Context()),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusCreated, toSessionResponse(sess)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleListPublicSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := api.sessions.ListPublicSessions(r.Context())
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, fn.Map(sessions, toSessionResponse)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleListMySessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := api.sessions.ListMySessions(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, fn.Map(sessions, toSessionResponse)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := api.sessions.GetSession(r.Context(), r.PathValue("session_id"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toSessionResponse(sess)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	err := api.sessions.JoinSession(r.Context(), r.PathValue("session_id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setVisibilityRequest struct {
	Visibility string `json:"visibility"`
}

func (api *API) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	var req setVisibilityRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	err := api.sessions.SetVisibility(r.Context(), r.PathValue("session_id"),
		middleware.UserIDFromContext(r.Context()), model.Visibility(req.Visibility))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setStateRequest struct {
	State string `json:"state"`
}

func (api *API) handleSetState(w http.ResponseWriter, r *http.Request) {
	var req setStateRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	err := api.sessions.SetState(r.Context(), r.PathValue("session_id"),
		middleware.UserIDFromContext(r.Context()), model.SessionState(req.State))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	err := api.sessions.DeleteSession(r.Context(), r.PathValue("session_id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type cardResponse struct {
	ID                         string `json:"id"`
	SessionID                  string `json:"sessionId"`
	WordOrPhrase               string `json:"wordOrPhrase"`
	PrimaryMeaning             string `json:"primaryMeaning"`
	PartOfSpeech               string `json:"partOfSpeech"`
	PronunciationIpa           string `json:"pronunciationIpa"`
	ExampleSentence            string `json:"exampleSentence"`
	ExampleSentenceTranslation string `json:"exampleSentenceTranslation"`
	Translation                string `json:"translation"`
	AudioPronunciationURL      string `json:"audioPronunciationUrl,omitempty"`
	CreatorID                  string `json:"creatorId"`
	CreatedAt                  int64  `json:"createdAt"`
}

func toCardResponse(c model.VocabularyCard) cardResponse {
	return cardResponse{
		ID:                         c.ID,
		SessionID:                  c.SessionID,
		WordOrPhrase:               c.WordOrPhrase,
		PrimaryMeaning:             c.PrimaryMeaning,
		PartOfSpeech:               c.PartOfSpeech,
		PronunciationIpa:           c.PronunciationIpa,
		ExampleSentence:            c.ExampleSentence,
		ExampleSentenceTranslation: c.ExampleSentenceTranslation,
		Translation:                c.Translation,
		AudioPronunciationURL:      c.AudioPronunciationURL,
		CreatorID:                  c.CreatorID,
		CreatedAt:                  c.CreatedAt,
	}
}

type createCardRequest struct {
	WordOrPhrase    string `json:"wordOrPhrase"`
	PartOfSpeech    string `json:"partOfSpeech"`
	Translation     string `json:"translation"`
	ExampleSentence string `json:"exampleSentence"`
	MotherLanguage  string `json:"motherLanguage"`
}

type createCardResponse struct {
	Card    cardResponse `json:"card"`
	Warning string       `json:"warning,omitempty"`
}

func (api *API) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	resp, err := api.cards.CreateCard(r.Context(), service.CreateCardRequest{
		SessionID:       r.PathValue("session_id"),
		WordOrPhrase:    req.WordOrPhrase,
		PartOfSpeech:    req.PartOfSpeech,
		Translation:     req.Translation,
		ExampleSentence: req.ExampleSentence,
		MotherLanguage:  req.MotherLanguage,
		CreatorID:       middleware.UserIDFromContext(r.Context()),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusCreated, createCardResponse{
		Card:    toCardResponse(resp.Card),
		Warning: resp.AudioWarning,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := api.cards.ListCards(r.Context(), r.PathValue("session_id"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, fn.Map(cards, toCardResponse)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type updateCardRequest struct {
	WordOrPhrase               *string `json:"wordOrPhrase"`
	PrimaryMeaning             *string `json:"primaryMeaning"`
	PartOfSpeech               *string `json:"partOfSpeech"`
	PronunciationIpa           *string `json:"pronunciationIpa"`
	ExampleSentence            *string `json:"exampleSentence"`
	ExampleSentenceTranslation *string `json:"exampleSentenceTranslation"`
	Translation                *string `json:"translation"`
	AudioPronunciationURL      *string `json:"audioPronunciationUrl"`
}

func (api *API) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var req updateCardRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	card, err := api.cards.UpdateCard(r.Context(), service.UpdateCardRequest{
		CardID:      r.PathValue("card_id"),
		RequesterID: middleware.UserIDFromContext(r.Context()),
		Fields: store.CardFields{
			WordOrPhrase:               req.WordOrPhrase,
			PrimaryMeaning:             req.PrimaryMeaning,
			PartOfSpeech:               req.PartOfSpeech,
			PronunciationIpa:           req.PronunciationIpa,
			ExampleSentence:            req.ExampleSentence,
			ExampleSentenceTranslation: req.ExampleSentenceTranslation,
			Translation:                req.Translation,
			AudioPronunciationURL:      req.AudioPronunciationURL,
		},
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, toCardResponse(card)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	err := api.cards.DeleteCard(r.Context(), r.PathValue("card_id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bankEntryResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	SessionID       string `json:"sessionId"`
	CardID          string `json:"vocabularyCardId"`
	Mastered        bool   `json:"mastered"`
	DifficultyLevel string `json:"difficultyLevel,omitempty"`
	SavedAt         int64  `json:"savedAt"`
}

func toBankEntryResponse(e model.PersonalVocabulary) bankEntryResponse {
	return bankEntryResponse{
		ID:              e.ID,
		UserID:          e.UserID,
		SessionID:       e.SessionID,
		CardID:          e.CardID,
		Mastered:        e.Mastered,
		DifficultyLevel: string(e.DifficultyLevel),
		SavedAt:         e.SavedAt,
	}
}

type saveCardRequest struct {
	SessionID string `json:"sessionId"`
	CardID    string `json:"vocabularyCardId"`
}

func (api *API) handleSaveCard(w http.ResponseWriter, r *http.Request) {
	var req saveCardRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	entry, err := api.bank.SaveCard(r.Context(), service.SaveCardRequest{
		UserID:    middleware.UserIDFromContext(r.Context()),
		SessionID: req.SessionID,
		CardID:    req.CardID,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusCreated, toBankEntryResponse(entry)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleListBank(w http.ResponseWriter, r *http.Request) {
	entries, err := api.bank.ListBank(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, fn.Map(entries, toBankEntryResponse)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type resolvedEntryResponse struct {
	Entry bankEntryResponse `json:"entry"`
	Card  *cardResponse     `json:"card"`
}

func (api *API) handleResolveBank(w http.ResponseWriter, r *http.Request) {
	resolved, err := api.bank.ResolveBankCards(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp := fn.Map(resolved, func(re service.ResolvedEntry) resolvedEntryResponse {
		out := resolvedEntryResponse{Entry: toBankEntryResponse(re.Entry)}
		if re.Card != nil {
			card := toCardResponse(*re.Card)
			out.Card = &card
		}
		return out
	})

	if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type setMasteredRequest struct {
	Mastered bool `json:"mastered"`
}

func (api *API) handleSetMastered(w http.ResponseWriter, r *http.Request) {
	var req setMasteredRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	err := api.bank.SetMastered(r.Context(), middleware.UserIDFromContext(r.Context()), r.PathValue("entry_id"), req.Mastered)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setDifficultyRequest struct {
	DifficultyLevel string `json:"difficultyLevel"`
}

func (api *API) handleSetDifficulty(w http.ResponseWriter, r *http.Request) {
	var req setDifficultyRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	err := api.bank.SetDifficulty(r.Context(), middleware.UserIDFromContext(r.Context()),
		r.PathValue("entry_id"), model.Difficulty(req.DifficultyLevel))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	err := api.bank.RemoveEntry(r.Context(), middleware.UserIDFromContext(r.Context()), r.PathValue("entry_id"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type suggestionResponse struct {
	WordOrPhrase    string `json:"wordOrPhrase"`
	PartOfSpeech    string `json:"partOfSpeech"`
	Translation     string `json:"translation"`
	ExampleSentence string `json:"exampleSentence"`
}

func toSuggestionResponse(s model.Suggestion) suggestionResponse {
	return suggestionResponse{
		WordOrPhrase:    s.WordOrPhrase,
		PartOfSpeech:    s.PartOfSpeech,
		Translation:     s.Translation,
		ExampleSentence: s.ExampleSentence,
	}
}

type discoverRequest struct {
	Query          string `json:"query"`
	MotherLanguage string `json:"motherLanguage"`
}

type discoverResponse struct {
	Answer      string               `json:"answer"`
	Paragraphs  []string             `json:"paragraphs"`
	Bullets     []string             `json:"bullets"`
	Suggestions []suggestionResponse `json:"suggestions"`
}

func (api *API) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	resp, err := api.discovery.Discover(r.Context(), service.DiscoverRequest{
		Query:          req.Query,
		MotherLanguage: req.MotherLanguage,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, discoverResponse{
		Answer:      resp.Answer.Raw,
		Paragraphs:  resp.Answer.Paragraphs,
		Bullets:     resp.Answer.Bullets,
		Suggestions: fn.Map(resp.Suggestions, toSuggestionResponse),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type suggestMoreRequest struct {
	Query          string   `json:"query"`
	MotherLanguage string   `json:"motherLanguage"`
	ExistingWords  []string `json:"existingWords"`
}

func (api *API) handleSuggestMore(w http.ResponseWriter, r *http.Request) {
	var req suggestMoreRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	suggestions, err := api.discovery.SuggestMore(r.Context(), service.SuggestMoreRequest{
		Query:          req.Query,
		MotherLanguage: req.MotherLanguage,
		ExistingWords:  req.ExistingWords,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, fn.Map(suggestions, toSuggestionResponse)); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type checkExistingRequest struct {
	Query          string `json:"query"`
	MotherLanguage string `json:"motherLanguage"`
	SessionID      string `json:"sessionId"`
}

type existingCardResponse struct {
	WordOrPhrase   string `json:"wordOrPhrase"`
	PrimaryMeaning string `json:"primaryMeaning"`
}

type checkExistingResponse struct {
	Suggestions       []suggestionResponse  `json:"suggestions"`
	ExistingCardFound bool                  `json:"existingCardFound"`
	ExistingCard      *existingCardResponse `json:"existingCard,omitempty"`
}

func (api *API) handleCheckExisting(w http.ResponseWriter, r *http.Request) {
	var req checkExistingRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	existingCards, err := api.cards.ListCards(r.Context(), req.SessionID)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.discovery.CheckExisting(r.Context(), service.CheckExistingRequest{
		Query:          req.Query,
		MotherLanguage: req.MotherLanguage,
		ExistingCards:  existingCards,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	out := checkExistingResponse{
		Suggestions:       fn.Map(resp.Suggestions, toSuggestionResponse),
		ExistingCardFound: resp.ExistingCardFound,
	}
	if resp.ExistingCard != nil {
		out.ExistingCard = &existingCardResponse{
			WordOrPhrase:   resp.ExistingCard.WordOrPhrase,
			PrimaryMeaning: resp.ExistingCard.PrimaryMeaning,
		}
	}

	if err := httpx.WriteJSON(w, http.StatusOK, out); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type refineFieldRequest struct {
	Card         cardResponse `json:"card"`
	FieldName    string       `json:"fieldName"`
	Instructions string       `json:"instructions"`
}

type refineFieldResponse struct {
	RefinedValue string `json:"refinedValue"`
}

func (api *API) handleRefineField(w http.ResponseWriter, r *http.Request) {
	var req refineFieldRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	refined, err := api.discovery.RefineField(r.Context(), service.RefineFieldRequest{
		Card: model.VocabularyCard{
			WordOrPhrase:               req.Card.WordOrPhrase,
			PrimaryMeaning:             req.Card.PrimaryMeaning,
			PartOfSpeech:               req.Card.PartOfSpeech,
			PronunciationIpa:           req.Card.PronunciationIpa,
			ExampleSentence:            req.Card.ExampleSentence,
			ExampleSentenceTranslation: req.Card.ExampleSentenceTranslation,
			Translation:                req.Card.Translation,
		},
		FieldName:    req.FieldName,
		Instructions: req.Instructions,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, refineFieldResponse{RefinedValue: refined}); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type synthesizeAudioRequest struct {
	Text string `json:"text"`
}

type synthesizeAudioResponse struct {
	AudioURL string `json:"audioUrl"`
}

func (api *API) handleSynthesizeAudio(w http.ResponseWriter, r *http.Request) {
	var req synthesizeAudioRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	audioURL, err := api.discovery.SynthesizeAudio(r.Context(), req.Text)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	if err := httpx.WriteJSON(w, http.StatusOK, synthesizeAudioResponse{AudioURL: audioURL}); err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}
