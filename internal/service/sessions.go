package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/twbrandon7/lexi-connect/internal/model"
	"github.com/twbrandon7/lexi-connect/internal/pkg/serr"
	"github.com/twbrandon7/lexi-connect/internal/store"
	"github.com/twbrandon7/lexi-connect/internal/watch"
)

// SessionService owns session lifecycle and the public-session index. The
// index is maintained in the same transaction as every visibility change, so
// a session is listed publicly exactly when its visibility says it should be.
type SessionService struct {
	store  store.DataStore
	notify watch.Notifier
}

func NewSessionService(ds store.DataStore, notify watch.Notifier) *SessionService {
	return &SessionService{
		store:  ds,
		notify: notify,
	}
}

type CreateSessionRequest struct {
	Name           string
	MotherLanguage string
	Visibility     model.Visibility
	HostID         string
}

// CreateSession creates a session owned by HostID, joins the host as the
// first participant and, for public sessions, registers the id in the public
// index within the same transaction.
func (s *SessionService) CreateSession(ctx context.Context, r CreateSessionRequest) (model.Session, error) {
	if len(strings.TrimSpace(r.Name)) < 3 {
		return model.Session{}, serr.NewServiceError(nil, http.StatusBadRequest, "session name must be at least 3 characters")
	}
	if r.MotherLanguage == "" {
		return model.Session{}, serr.NewServiceError(nil, http.StatusBadRequest, "mother language is required")
	}
	if !r.Visibility.Valid() {
		return model.Session{}, serr.NewServiceError(nil, http.StatusBadRequest, "visibility must be public or private")
	}

	sess := model.Session{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(r.Name),
		MotherLanguage: r.MotherLanguage,
		Visibility:     r.Visibility,
		HostID:         r.HostID,
		State:          model.StateOpen,
		CreatedAt:      time.Now().UnixMilli(),
		Participants:   []string{r.HostID},
	}

	err := s.store.WithinTx(ctx, func(tx store.DataStore) error {
		if err := tx.InsertSession(ctx, sess); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		if err := tx.AddParticipant(ctx, sess.ID, r.HostID); err != nil {
			return fmt.Errorf("add host participant: %w", err)
		}
		if sess.Visibility == model.VisibilityPublic {
			if err := tx.AddPublicSession(ctx, sess.ID); err != nil {
				return fmt.Errorf("register public session: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.Session{}, fmt.Errorf("create session: %w", err)
	}

	if sess.Visibility == model.VisibilityPublic {
		s.notify.Publish(watch.TopicPublicSessions)
	}

	return sess, nil
}

// JoinSession appends the user to the session's participant set. Joining
// twice is a no-op.
func (s *SessionService) JoinSession(ctx context.Context, sessionID, userID string) error {
	if err := s.store.AddParticipant(ctx, sessionID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "session not found")
			se.Env["session_id"] = sessionID
			return se
		}

		return fmt.Errorf("join session: %w", err)
	}

	return nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "session not found")
			se.Env["session_id"] = sessionID
			return model.Session{}, se
		}

		return model.Session{}, fmt.Errorf("get session: %w", err)
	}

	return sess, nil
}

// SetVisibility flips a session between public and private. Host only. The
// public index entry is added or removed in the same transaction as the
// visibility field itself.
func (s *SessionService) SetVisibility(ctx context.Context, sessionID, requesterID string, v model.Visibility) error {
	if !v.Valid() {
		return serr.NewServiceError(nil, http.StatusBadRequest, "visibility must be public or private")
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.HostID != requesterID {
		return s.forbidden(sessionID, requesterID, "only the host can change session visibility")
	}

	err = s.store.WithinTx(ctx, func(tx store.DataStore) error {
		if err := tx.SetSessionVisibility(ctx, sessionID, v); err != nil {
			return fmt.Errorf("set visibility: %w", err)
		}
		if v == model.VisibilityPublic {
			return tx.AddPublicSession(ctx, sessionID)
		}
		return tx.RemovePublicSession(ctx, sessionID)
	})
	if err != nil {
		return fmt.Errorf("set session visibility: %w", err)
	}

	s.notify.Publish(watch.TopicPublicSessions)
	return nil
}

// SetState reassigns the session lifecycle state. Host only. Any of the
// three states may be assigned from any other; closed only gates card
// creation and editing, it is not terminal.
func (s *SessionService) SetState(ctx context.Context, sessionID, requesterID string, state model.SessionState) error {
	if !state.Valid() {
		return serr.NewServiceError(nil, http.StatusBadRequest, "state must be open, closed or reopened")
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.HostID != requesterID {
		return s.forbidden(sessionID, requesterID, "only the host can change session state")
	}

	if err := s.store.SetSessionState(ctx, sessionID, state); err != nil {
		return fmt.Errorf("set session state: %w", err)
	}

	if sess.Visibility == model.VisibilityPublic {
		s.notify.Publish(watch.TopicPublicSessions)
	}
	return nil
}

// ListPublicSessions returns public sessions newest first. Index entries
// with no backing session are dropped from the result and logged.
func (s *SessionService) ListPublicSessions(ctx context.Context) ([]model.Session, error) {
	resp, err := s.store.ListPublicSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public sessions: %w", err)
	}

	if len(resp.DriftIDs) > 0 {
		slog.Warn("public session index drift", "session_ids", resp.DriftIDs)
	}

	return resp.Sessions, nil
}

// recentBankEntryLimit bounds how many bank entries are scanned when
// inferring the sessions a user participated in.
const recentBankEntryLimit = 50

// ListMySessions returns the sessions the user hosts merged with sessions
// inferred from their most recent bank entries, newest first. Entries whose
// session was deleted are skipped.
func (s *SessionService) ListMySessions(ctx context.Context, userID string) ([]model.Session, error) {
	hosted, err := s.store.ListSessionsByHost(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list hosted sessions: %w", err)
	}

	sessions := hosted
	seen := make(map[string]bool, len(hosted))
	for _, sess := range hosted {
		seen[sess.ID] = true
	}

	entries, err := s.store.ListBank(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bank entries: %w", err)
	}
	if len(entries) > recentBankEntryLimit {
		entries = entries[:recentBankEntryLimit]
	}

	for _, entry := range entries {
		if entry.SessionID == "" || seen[entry.SessionID] {
			continue
		}
		seen[entry.SessionID] = true

		sess, err := s.store.GetSession(ctx, entry.SessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}

			return nil, fmt.Errorf("get session %s: %w", entry.SessionID, err)
		}

		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt != sessions[j].CreatedAt {
			return sessions[i].CreatedAt > sessions[j].CreatedAt
		}
		return sessions[i].ID > sessions[j].ID
	})

	return sessions, nil
}

// DeleteSession removes the session, its participant set and its index
// entry. Host only. The session's cards are intentionally left in place.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID, requesterID string) error {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.HostID != requesterID {
		return s.forbidden(sessionID, requesterID, "only the host can delete a session")
	}

	err = s.store.WithinTx(ctx, func(tx store.DataStore) error {
		if err := tx.DeleteSession(ctx, sessionID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return tx.RemovePublicSession(ctx, sessionID)
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if sess.Visibility == model.VisibilityPublic {
		s.notify.Publish(watch.TopicPublicSessions)
	}
	return nil
}

func (s *SessionService) forbidden(sessionID, requesterID, msg string) error {
	se := serr.NewServiceError(nil, http.StatusForbidden, "%s", msg)
	se.Env["session_id"] = sessionID
	se.Env["requester_id"] = requesterID
	return se
}
