package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/twbrandon7/lexi-connect/internal/model"
	"github.com/twbrandon7/lexi-connect/internal/pkg/serr"
	"github.com/twbrandon7/lexi-connect/internal/store"
	"github.com/twbrandon7/lexi-connect/internal/watch"
)

// detailGenerator is the slice of the discovery flow that card creation and
// refinement need.
type detailGenerator interface {
	DetailCard(ctx context.Context, r DetailCardRequest) (model.CardDetail, error)
	SynthesizeAudio(ctx context.Context, text string) (string, error)
}

// CardService owns vocabulary cards scoped to a session.
type CardService struct {
	store  store.DataStore
	gen    detailGenerator
	notify watch.Notifier
}

func NewCardService(ds store.DataStore, gen detailGenerator, notify watch.Notifier) *CardService {
	return &CardService{
		store:  ds,
		gen:    gen,
		notify: notify,
	}
}

type CreateCardRequest struct {
	SessionID       string
	WordOrPhrase    string
	PartOfSpeech    string
	Translation     string
	ExampleSentence string
	MotherLanguage  string
	CreatorID       string
}

type CreateCardResponse struct {
	Card model.VocabularyCard
	// AudioWarning is set when the card was committed without audio because
	// speech synthesis failed. Non-fatal by design of the creation flow.
	AudioWarning string
}

// CreateCard turns an accepted suggestion into a durable card. Detail
// generation and audio synthesis run concurrently; the card commits only if
// detail generation succeeds, while a failed audio call just leaves the
// audio URL empty.
func (s *CardService) CreateCard(ctx context.Context, r CreateCardRequest) (CreateCardResponse, error) {
	if r.WordOrPhrase == "" {
		return CreateCardResponse{}, serr.NewServiceError(nil, http.StatusBadRequest, "word or phrase is required")
	}

	sess, err := s.store.GetSession(ctx, r.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "session not found")
			se.Env["session_id"] = r.SessionID
			return CreateCardResponse{}, se
		}

		return CreateCardResponse{}, fmt.Errorf("get session: %w", err)
	}
	if !sess.State.Editable() {
		return CreateCardResponse{}, s.sessionClosed(r.SessionID)
	}

	var (
		detail   model.CardDetail
		audioURL string
		audioErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.gen.DetailCard(gctx, DetailCardRequest{
			WordOrPhrase:    r.WordOrPhrase,
			MotherLanguage:  r.MotherLanguage,
			ExampleSentence: r.ExampleSentence,
		})
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		url, err := s.gen.SynthesizeAudio(gctx, r.WordOrPhrase)
		if err != nil {
			audioErr = err
			return nil
		}
		audioURL = url
		return nil
	})
	if err := g.Wait(); err != nil {
		return CreateCardResponse{}, err
	}

	card := model.VocabularyCard{
		ID:                         uuid.NewString(),
		SessionID:                  r.SessionID,
		WordOrPhrase:               r.WordOrPhrase,
		PrimaryMeaning:             detail.PrimaryMeaning,
		PartOfSpeech:               detail.PartOfSpeech,
		PronunciationIpa:           detail.PronunciationIpa,
		ExampleSentence:            detail.ExampleSentence,
		ExampleSentenceTranslation: detail.ExampleSentenceTranslation,
		Translation:                detail.Translation,
		AudioPronunciationURL:      audioURL,
		CreatorID:                  r.CreatorID,
		CreatedAt:                  time.Now().UnixMilli(),
	}
	// The caller-supplied values win over generated ones where both exist.
	if r.PartOfSpeech != "" {
		card.PartOfSpeech = r.PartOfSpeech
	}
	if r.Translation != "" {
		card.Translation = r.Translation
	}

	if err := s.store.InsertCard(ctx, card); err != nil {
		return CreateCardResponse{}, fmt.Errorf("insert card: %w", err)
	}

	s.notify.Publish(watch.TopicSessionCards(r.SessionID))

	resp := CreateCardResponse{Card: card}
	if audioErr != nil {
		resp.AudioWarning = "audio pronunciation could not be generated"
	}
	return resp, nil
}

type UpdateCardRequest struct {
	CardID      string
	RequesterID string
	Fields      store.CardFields
}

// UpdateCard applies a partial edit to a card's descriptive fields. Any
// participant may edit while the session is not closed; concurrent edits are
// last-write-wins with no conflict signal.
func (s *CardService) UpdateCard(ctx context.Context, r UpdateCardRequest) (model.VocabularyCard, error) {
	card, err := s.getCard(ctx, r.CardID)
	if err != nil {
		return model.VocabularyCard{}, err
	}

	if err := s.requireEditable(ctx, card.SessionID, r.RequesterID); err != nil {
		return model.VocabularyCard{}, err
	}

	err = s.store.UpdateCard(ctx, store.UpdateCardRequest{ID: r.CardID, Fields: r.Fields})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.VocabularyCard{}, s.cardNotFound(r.CardID, err)
		}

		return model.VocabularyCard{}, fmt.Errorf("update card: %w", err)
	}

	updated, err := s.getCard(ctx, r.CardID)
	if err != nil {
		return model.VocabularyCard{}, err
	}

	s.notify.Publish(watch.TopicSessionCards(card.SessionID))
	return updated, nil
}

// DeleteCard removes a card. Creator only, and only while the session is not
// closed.
func (s *CardService) DeleteCard(ctx context.Context, cardID, requesterID string) error {
	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return err
	}

	if err := s.requireEditable(ctx, card.SessionID, requesterID); err != nil {
		return err
	}
	if card.CreatorID != requesterID {
		se := serr.NewServiceError(nil, http.StatusForbidden, "only the card creator can delete it")
		se.Env["card_id"] = cardID
		se.Env["requester_id"] = requesterID
		return se
	}

	if err := s.store.DeleteCard(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.cardNotFound(cardID, err)
		}

		return fmt.Errorf("delete card: %w", err)
	}

	s.notify.Publish(watch.TopicSessionCards(card.SessionID))
	return nil
}

// ListCards returns the session's cards newest first. Listing tolerates a
// deleted session: orphaned cards remain readable.
func (s *CardService) ListCards(ctx context.Context, sessionID string) ([]model.VocabularyCard, error) {
	cards, err := s.store.ListCards(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	return cards, nil
}

func (s *CardService) getCard(ctx context.Context, cardID string) (model.VocabularyCard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.VocabularyCard{}, s.cardNotFound(cardID, err)
		}

		return model.VocabularyCard{}, fmt.Errorf("get card: %w", err)
	}

	return card, nil
}

// requireEditable checks that the session still exists, is not closed, and
// that the requester participates in it.
func (s *CardService) requireEditable(ctx context.Context, sessionID, requesterID string) error {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "session not found")
			se.Env["session_id"] = sessionID
			return se
		}

		return fmt.Errorf("get session: %w", err)
	}

	if !sess.State.Editable() {
		return s.sessionClosed(sessionID)
	}

	for _, p := range sess.Participants {
		if p == requesterID {
			return nil
		}
	}

	se := serr.NewServiceError(nil, http.StatusForbidden, "only session participants can edit cards")
	se.Env["session_id"] = sessionID
	se.Env["requester_id"] = requesterID
	return se
}

func (s *CardService) sessionClosed(sessionID string) error {
	se := serr.NewServiceError(nil, http.StatusConflict, "session is closed")
	se.Env["session_id"] = sessionID
	return se
}

func (s *CardService) cardNotFound(cardID string, err error) error {
	se := serr.NewServiceError(err, http.StatusNotFound, "card not found")
	se.Env["card_id"] = cardID
	return se
}
