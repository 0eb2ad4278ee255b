package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/twbrandon7/lexi-connect/internal/model"
	"github.com/twbrandon7/lexi-connect/internal/pkg/serr"
	"github.com/twbrandon7/lexi-connect/internal/store"
	"github.com/twbrandon7/lexi-connect/internal/watch"
)

// BankService owns per-user bookmarks of vocabulary cards. Entries reference
// cards, they do not copy them, so a referenced card may vanish.
type BankService struct {
	store  store.DataStore
	notify watch.Notifier
}

func NewBankService(ds store.DataStore, notify watch.Notifier) *BankService {
	return &BankService{
		store:  ds,
		notify: notify,
	}
}

type SaveCardRequest struct {
	UserID    string
	SessionID string
	CardID    string
}

// SaveCard bookmarks a card into the user's bank. Saving the same card again
// returns the existing entry unchanged, including its original savedAt.
func (s *BankService) SaveCard(ctx context.Context, r SaveCardRequest) (model.PersonalVocabulary, error) {
	if r.SessionID == "" || r.CardID == "" {
		return model.PersonalVocabulary{}, serr.NewServiceError(nil, http.StatusBadRequest, "session id and card id are required")
	}

	card, err := s.store.GetCard(ctx, r.CardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "card not found")
			se.Env["card_id"] = r.CardID
			return model.PersonalVocabulary{}, se
		}

		return model.PersonalVocabulary{}, fmt.Errorf("get card: %w", err)
	}
	if card.SessionID != r.SessionID {
		se := serr.NewServiceError(nil, http.StatusBadRequest, "card does not belong to the given session")
		se.Env["card_id"] = r.CardID
		se.Env["session_id"] = r.SessionID
		return model.PersonalVocabulary{}, se
	}

	entry, err := s.store.UpsertBankEntry(ctx, model.PersonalVocabulary{
		ID:        uuid.NewString(),
		UserID:    r.UserID,
		SessionID: r.SessionID,
		CardID:    r.CardID,
		Mastered:  false,
		SavedAt:   time.Now().UnixMilli(),
	})
	if err != nil {
		return model.PersonalVocabulary{}, fmt.Errorf("save card to bank: %w", err)
	}

	s.notify.Publish(watch.TopicBank(r.UserID))
	return entry, nil
}

func (s *BankService) SetMastered(ctx context.Context, userID, entryID string, mastered bool) error {
	if err := s.ownEntry(ctx, userID, entryID); err != nil {
		return err
	}

	err := s.store.UpdateBankEntry(ctx, store.UpdateBankEntryRequest{ID: entryID, Mastered: &mastered})
	if err != nil {
		return fmt.Errorf("set mastered: %w", err)
	}

	s.notify.Publish(watch.TopicBank(userID))
	return nil
}

func (s *BankService) SetDifficulty(ctx context.Context, userID, entryID string, level model.Difficulty) error {
	if !level.Valid() {
		return serr.NewServiceError(nil, http.StatusBadRequest, "difficulty must be beginner, intermediate or advanced")
	}

	if err := s.ownEntry(ctx, userID, entryID); err != nil {
		return err
	}

	err := s.store.UpdateBankEntry(ctx, store.UpdateBankEntryRequest{ID: entryID, DifficultyLevel: &level})
	if err != nil {
		return fmt.Errorf("set difficulty: %w", err)
	}

	s.notify.Publish(watch.TopicBank(userID))
	return nil
}

// RemoveEntry deletes the bookmark only; the source card is untouched.
func (s *BankService) RemoveEntry(ctx context.Context, userID, entryID string) error {
	if err := s.ownEntry(ctx, userID, entryID); err != nil {
		return err
	}

	if err := s.store.DeleteBankEntry(ctx, entryID); err != nil {
		return fmt.Errorf("remove bank entry: %w", err)
	}

	s.notify.Publish(watch.TopicBank(userID))
	return nil
}

func (s *BankService) ListBank(ctx context.Context, userID string) ([]model.PersonalVocabulary, error) {
	entries, err := s.store.ListBank(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bank: %w", err)
	}

	return entries, nil
}

// ResolvedEntry pairs a bookmark with its source card. Card is nil when the
// source card no longer exists; that is a renderable state, not an error.
type ResolvedEntry struct {
	Entry model.PersonalVocabulary
	Card  *model.VocabularyCard
}

func (s *BankService) ResolveBankCards(ctx context.Context, userID string) ([]ResolvedEntry, error) {
	entries, err := s.store.ListBank(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bank: %w", err)
	}

	resolved := make([]ResolvedEntry, 0, len(entries))
	for _, entry := range entries {
		card, err := s.store.GetCard(ctx, entry.CardID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resolved = append(resolved, ResolvedEntry{Entry: entry})
				continue
			}

			return nil, fmt.Errorf("resolve card %s: %w", entry.CardID, err)
		}

		resolved = append(resolved, ResolvedEntry{Entry: entry, Card: &card})
	}

	return resolved, nil
}

func (s *BankService) ownEntry(ctx context.Context, userID, entryID string) error {
	entry, err := s.store.GetBankEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "bank entry not found")
			se.Env["entry_id"] = entryID
			return se
		}

		return fmt.Errorf("get bank entry: %w", err)
	}

	if entry.UserID != userID {
		se := serr.NewServiceError(nil, http.StatusForbidden, "bank entries can only be modified by their owner")
		se.Env["entry_id"] = entryID
		se.Env["requester_id"] = userID
		return se
	}

	return nil
}
