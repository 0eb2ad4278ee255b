package service

import (
	"context"
	"sort"
	"sync"

	"github.com/twbrandon7/lexi-connect/internal/model"
	"github.com/twbrandon7/lexi-connect/internal/store"
)

// memStore is a map-backed DataStore used across the service tests. It keeps
// the same sentinel error contract and ordering as the Postgres store.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	public   map[string]struct{}
	cards    map[string]model.VocabularyCard
	bank     map[string]model.PersonalVocabulary
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[string]model.Session),
		public:   make(map[string]struct{}),
		cards:    make(map[string]model.VocabularyCard),
		bank:     make(map[string]model.PersonalVocabulary),
	}
}

func (m *memStore) InsertSession(ctx context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return store.ErrExists
	}

	s.Participants = nil
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) GetSession(ctx context.Context, id string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return model.Session{}, store.ErrNotFound
	}

	s.Participants = append([]string(nil), s.Participants...)
	return s, nil
}

func (m *memStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return store.ErrNotFound
	}

	delete(m.sessions, id)
	return nil
}

func (m *memStore) AddParticipant(ctx context.Context, sessionID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return store.ErrNotFound
	}

	for _, p := range s.Participants {
		if p == userID {
			return nil
		}
	}

	s.Participants = append(s.Participants, userID)
	m.sessions[sessionID] = s
	return nil
}

func (m *memStore) SetSessionVisibility(ctx context.Context, sessionID string, v model.Visibility) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return store.ErrNotFound
	}

	s.Visibility = v
	m.sessions[sessionID] = s
	return nil
}

func (m *memStore) SetSessionState(ctx context.Context, sessionID string, state model.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return store.ErrNotFound
	}

	s.State = state
	m.sessions[sessionID] = s
	return nil
}

func (m *memStore) ListSessionsByHost(ctx context.Context, hostID string) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sessions []model.Session
	for _, s := range m.sessions {
		if s.HostID == hostID {
			sessions = append(sessions, s)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt != sessions[j].CreatedAt {
			return sessions[i].CreatedAt > sessions[j].CreatedAt
		}
		return sessions[i].ID > sessions[j].ID
	})

	return sessions, nil
}

func (m *memStore) AddPublicSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.public[sessionID] = struct{}{}
	return nil
}

func (m *memStore) RemovePublicSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.public, sessionID)
	return nil
}

func (m *memStore) ListPublicSessions(ctx context.Context) (store.ListPublicSessionsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var resp store.ListPublicSessionsResponse
	for id := range m.public {
		s, ok := m.sessions[id]
		if !ok {
			resp.DriftIDs = append(resp.DriftIDs, id)
			continue
		}
		resp.Sessions = append(resp.Sessions, s)
	}

	sort.Slice(resp.Sessions, func(i, j int) bool {
		if resp.Sessions[i].CreatedAt != resp.Sessions[j].CreatedAt {
			return resp.Sessions[i].CreatedAt > resp.Sessions[j].CreatedAt
		}
		return resp.Sessions[i].ID > resp.Sessions[j].ID
	})

	return resp, nil
}

func (m *memStore) InsertCard(ctx context.Context, c model.VocabularyCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[c.ID]; ok {
		return store.ErrExists
	}

	m.cards[c.ID] = c
	return nil
}

func (m *memStore) GetCard(ctx context.Context, id string) (model.VocabularyCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[id]
	if !ok {
		return model.VocabularyCard{}, store.ErrNotFound
	}

	return c, nil
}

func (m *memStore) UpdateCard(ctx context.Context, r store.UpdateCardRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[r.ID]
	if !ok {
		return store.ErrNotFound
	}

	f := r.Fields
	if f.WordOrPhrase != nil {
		c.WordOrPhrase = *f.WordOrPhrase
	}
	if f.PrimaryMeaning != nil {
		c.PrimaryMeaning = *f.PrimaryMeaning
	}
	if f.PartOfSpeech != nil {
		c.PartOfSpeech = *f.PartOfSpeech
	}
	if f.PronunciationIpa != nil {
		c.PronunciationIpa = *f.PronunciationIpa
	}
	if f.ExampleSentence != nil {
		c.ExampleSentence = *f.ExampleSentence
	}
	if f.ExampleSentenceTranslation != nil {
		c.ExampleSentenceTranslation = *f.ExampleSentenceTranslation
	}
	if f.Translation != nil {
		c.Translation = *f.Translation
	}
	if f.AudioPronunciationURL != nil {
		c.AudioPronunciationURL = *f.AudioPronunciationURL
	}

	m.cards[r.ID] = c
	return nil
}

func (m *memStore) DeleteCard(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[id]; !ok {
		return store.ErrNotFound
	}

	delete(m.cards, id)
	return nil
}

func (m *memStore) ListCards(ctx context.Context, sessionID string) ([]model.VocabularyCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cards []model.VocabularyCard
	for _, c := range m.cards {
		if c.SessionID == sessionID {
			cards = append(cards, c)
		}
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].CreatedAt != cards[j].CreatedAt {
			return cards[i].CreatedAt > cards[j].CreatedAt
		}
		return cards[i].ID > cards[j].ID
	})

	return cards, nil
}

func (m *memStore) UpsertBankEntry(ctx context.Context, e model.PersonalVocabulary) (model.PersonalVocabulary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.bank {
		if existing.UserID == e.UserID && existing.CardID == e.CardID {
			return existing, nil
		}
	}

	m.bank[e.ID] = e
	return e, nil
}

func (m *memStore) GetBankEntry(ctx context.Context, id string) (model.PersonalVocabulary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.bank[id]
	if !ok {
		return model.PersonalVocabulary{}, store.ErrNotFound
	}

	return e, nil
}

func (m *memStore) UpdateBankEntry(ctx context.Context, r store.UpdateBankEntryRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.bank[r.ID]
	if !ok {
		return store.ErrNotFound
	}

	if r.Mastered != nil {
		e.Mastered = *r.Mastered
	}
	if r.DifficultyLevel != nil {
		e.DifficultyLevel = *r.DifficultyLevel
	}

	m.bank[r.ID] = e
	return nil
}

func (m *memStore) DeleteBankEntry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bank[id]; !ok {
		return store.ErrNotFound
	}

	delete(m.bank, id)
	return nil
}

func (m *memStore) ListBank(ctx context.Context, userID string) ([]model.PersonalVocabulary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []model.PersonalVocabulary
	for _, e := range m.bank {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SavedAt != entries[j].SavedAt {
			return entries[i].SavedAt > entries[j].SavedAt
		}
		return entries[i].ID > entries[j].ID
	})

	return entries, nil
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx store.DataStore) error) error {
	return fn(m)
}

// mockStore overlays error injection on a memStore: any func field that is
// set replaces the backing implementation for that method.
type mockStore struct {
	*memStore
	getCardFunc    func(ctx context.Context, id string) (model.VocabularyCard, error)
	listPublicFunc func(ctx context.Context) (store.ListPublicSessionsResponse, error)
	upsertBankFunc func(ctx context.Context, e model.PersonalVocabulary) (model.PersonalVocabulary, error)
}

func (m *mockStore) GetCard(ctx context.Context, id string) (model.VocabularyCard, error) {
	if m.getCardFunc != nil {
		return m.getCardFunc(ctx, id)
	}
	return m.memStore.GetCard(ctx, id)
}

func (m *mockStore) ListPublicSessions(ctx context.Context) (store.ListPublicSessionsResponse, error) {
	if m.listPublicFunc != nil {
		return m.listPublicFunc(ctx)
	}
	return m.memStore.ListPublicSessions(ctx)
}

func (m *mockStore) UpsertBankEntry(ctx context.Context, e model.PersonalVocabulary) (model.PersonalVocabulary, error) {
	if m.upsertBankFunc != nil {
		return m.upsertBankFunc(ctx, e)
	}
	return m.memStore.UpsertBankEntry(ctx, e)
}

func (m *mockStore) WithinTx(ctx context.Context, fn func(tx store.DataStore) error) error {
	return fn(m)
}

// mockNotifier records every published topic.
type mockNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (m *mockNotifier) Publish(topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.topics = append(m.topics, topic)
}

func (m *mockNotifier) published(topic string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.topics {
		if t == topic {
			return true
		}
	}
	return false
}

type mockGenerator struct {
	detailFunc func(ctx context.Context, r DetailCardRequest) (model.CardDetail, error)
	audioFunc  func(ctx context.Context, text string) (string, error)
}

func (m *mockGenerator) DetailCard(ctx context.Context, r DetailCardRequest) (model.CardDetail, error) {
	return m.detailFunc(ctx, r)
}

func (m *mockGenerator) SynthesizeAudio(ctx context.Context, text string) (string, error) {
	return m.audioFunc(ctx, text)
}
