package store

import (
	"context"
	"errors"

	"github.com/twbrandon7/lexi-connect/internal/model"
)

var (
	ErrExists   = errors.New("entity already exists")
	ErrNotFound = errors.New("entity not found")
)

type DataStore interface {
	InsertSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, id string) (model.Session, error)
	DeleteSession(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, sessionID, userID string) error
	SetSessionVisibility(ctx context.Context, sessionID string, v model.Visibility) error
	SetSessionState(ctx context.Context, sessionID string, s model.SessionState) error
	ListSessionsByHost(ctx context.Context, hostID string) ([]model.Session, error)

	AddPublicSession(ctx context.Context, sessionID string) error
	RemovePublicSession(ctx context.Context, sessionID string) error
	ListPublicSessions(ctx context.Context) (ListPublicSessionsResponse, error)

	InsertCard(ctx context.Context, c model.VocabularyCard) error
	GetCard(ctx context.Context, id string) (model.VocabularyCard, error)
	UpdateCard(ctx context.Context, r UpdateCardRequest) error
	DeleteCard(ctx context.Context, id string) error
	ListCards(ctx context.Context, sessionID string) ([]model.VocabularyCard, error)

	UpsertBankEntry(ctx context.Context, e model.PersonalVocabulary) (model.PersonalVocabulary, error)
	GetBankEntry(ctx context.Context, id string) (model.PersonalVocabulary, error)
	UpdateBankEntry(ctx context.Context, r UpdateBankEntryRequest) error
	DeleteBankEntry(ctx context.Context, id string) error
	ListBank(ctx context.Context, userID string) ([]model.PersonalVocabulary, error)

	WithinTx(ctx context.Context, fn func(tx DataStore) error) error
}
