package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/twbrandon7/lexi-connect/internal/model"
)

const (
	errUniqueViolation     pq.ErrorCode = "23505"
	errForeignKeyViolation pq.ErrorCode = "23503"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore implements DataStore using PostgreSQL as the backend.
type PostgresStore struct {
	db *sql.DB
	q  querier
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{db: db, q: db}, nil
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx DataStore) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&PostgresStore{db: s.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *PostgresStore) InsertSession(ctx context.Context, sess model.Session) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO sessions (id, name, mother_language, visibility, host_id, state, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sess.ID, sess.Name, sess.MotherLanguage, sess.Visibility, sess.HostID, sess.State, sess.CreatedAt)
	if err != nil {
		if isPqErr(err, errUniqueViolation) {
			return ErrExists
		}

		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (model.Session, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, name, mother_language, visibility, host_id, state, created_at
		 FROM sessions WHERE id = $1`, id)

	var sess model.Session
	err := row.Scan(&sess.ID, &sess.Name, &sess.MotherLanguage, &sess.Visibility, &sess.HostID, &sess.State, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, ErrNotFound
		}

		return model.Session{}, fmt.Errorf("query session: %w", err)
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT user_id FROM session_participants WHERE session_id = $1 ORDER BY joined_at, user_id`, id)
	if err != nil {
		return model.Session{}, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return model.Session{}, fmt.Errorf("scan participant: %w", err)
		}
		sess.Participants = append(sess.Participants, uid)
	}
	if err := rows.Err(); err != nil {
		return model.Session{}, fmt.Errorf("iterate participants: %w", err)
	}

	return sess, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) AddParticipant(ctx context.Context, sessionID, userID string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO session_participants (session_id, user_id, joined_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (session_id, user_id) DO NOTHING`,
		sessionID, userID)
	if err != nil {
		if isPqErr(err, errForeignKeyViolation) {
			return ErrNotFound
		}

		return fmt.Errorf("add participant: %w", err)
	}

	return nil
}

func (s *PostgresStore) SetSessionVisibility(ctx context.Context, sessionID string, v model.Visibility) error {
	return s.updateSession(ctx, sessionID, "visibility", string(v))
}

func (s *PostgresStore) SetSessionState(ctx context.Context, sessionID string, st model.SessionState) error {
	return s.updateSession(ctx, sessionID, "state", string(st))
}

func (s *PostgresStore) updateSession(ctx context.Context, sessionID, column, value string) error {
	res, err := s.q.ExecContext(ctx, fmt.Sprintf("UPDATE sessions SET %s = $2 WHERE id = $1", column), sessionID, value)
	if err != nil {
		return fmt.Errorf("update session %s: %w", column, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) ListSessionsByHost(ctx context.Context, hostID string) ([]model.Session, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, mother_language, visibility, host_id, state, created_at
		 FROM sessions
		 WHERE host_id = $1
		 ORDER BY created_at DESC, id DESC`, hostID)
	if err != nil {
		return nil, fmt.Errorf("query sessions by host: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		err := rows.Scan(&sess.ID, &sess.Name, &sess.MotherLanguage, &sess.Visibility,
			&sess.HostID, &sess.State, &sess.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions by host: %w", err)
	}

	return sessions, nil
}

func (s *PostgresStore) AddPublicSession(ctx context.Context, sessionID string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO public_sessions (session_id) VALUES ($1) ON CONFLICT (session_id) DO NOTHING`,
		sessionID)
	if err != nil {
		return fmt.Errorf("add public session: %w", err)
	}

	return nil
}

func (s *PostgresStore) RemovePublicSession(ctx context.Context, sessionID string) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM public_sessions WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("remove public session: %w", err)
	}

	return nil
}

func (s *PostgresStore) ListPublicSessions(ctx context.Context) (ListPublicSessionsResponse, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT ps.session_id, s.id, s.name, s.mother_language, s.visibility, s.host_id, s.state, s.created_at
		 FROM public_sessions ps
		 LEFT JOIN sessions s ON s.id = ps.session_id
		 ORDER BY s.created_at DESC NULLS LAST, s.id DESC`)
	if err != nil {
		return ListPublicSessionsResponse{}, fmt.Errorf("query public sessions: %w", err)
	}
	defer rows.Close()

	var resp ListPublicSessionsResponse
	for rows.Next() {
		var indexID string
		var id, name, lang, visibility, hostID, state sql.NullString
		var createdAt sql.NullInt64

		err := rows.Scan(&indexID, &id, &name, &lang, &visibility, &hostID, &state, &createdAt)
		if err != nil {
			return ListPublicSessionsResponse{}, fmt.Errorf("scan public session: %w", err)
		}

		if !id.Valid {
			resp.DriftIDs = append(resp.DriftIDs, indexID)
			continue
		}

		resp.Sessions = append(resp.Sessions, model.Session{
			ID:             id.String,
			Name:           name.String,
			MotherLanguage: lang.String,
			Visibility:     model.Visibility(visibility.String),
			HostID:         hostID.String,
			State:          model.SessionState(state.String),
			CreatedAt:      createdAt.Int64,
		})
	}
	if err := rows.Err(); err != nil {
		return ListPublicSessionsResponse{}, fmt.Errorf("iterate public sessions: %w", err)
	}

	return resp, nil
}

func (s *PostgresStore) InsertCard(ctx context.Context, c model.VocabularyCard) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO vocabulary_cards
		 (id, session_id, word_or_phrase, primary_meaning, part_of_speech, pronunciation_ipa,
		  example_sentence, example_sentence_translation, translation, audio_pronunciation_url,
		  creator_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)`,
		c.ID, c.SessionID, c.WordOrPhrase, c.PrimaryMeaning, c.PartOfSpeech, c.PronunciationIpa,
		c.ExampleSentence, c.ExampleSentenceTranslation, c.Translation, c.AudioPronunciationURL,
		c.CreatorID, c.CreatedAt)
	if err != nil {
		if isPqErr(err, errUniqueViolation) {
			return ErrExists
		}

		return fmt.Errorf("insert card: %w", err)
	}

	return nil
}

const cardColumns = `id, session_id, word_or_phrase, primary_meaning, part_of_speech, pronunciation_ipa,
	example_sentence, example_sentence_translation, translation, COALESCE(audio_pronunciation_url, ''),
	creator_id, created_at`

func scanCard(row interface{ Scan(...any) error }) (model.VocabularyCard, error) {
	var c model.VocabularyCard
	err := row.Scan(&c.ID, &c.SessionID, &c.WordOrPhrase, &c.PrimaryMeaning, &c.PartOfSpeech,
		&c.PronunciationIpa, &c.ExampleSentence, &c.ExampleSentenceTranslation, &c.Translation,
		&c.AudioPronunciationURL, &c.CreatorID, &c.CreatedAt)
	return c, err
}

func (s *PostgresStore) GetCard(ctx context.Context, id string) (model.VocabularyCard, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+cardColumns+" FROM vocabulary_cards WHERE id = $1", id)

	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.VocabularyCard{}, ErrNotFound
		}

		return model.VocabularyCard{}, fmt.Errorf("query card: %w", err)
	}

	return c, nil
}

func (s *PostgresStore) UpdateCard(ctx context.Context, r UpdateCardRequest) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE vocabulary_cards SET
		   word_or_phrase = COALESCE($2, word_or_phrase),
		   primary_meaning = COALESCE($3, primary_meaning),
		   part_of_speech = COALESCE($4, part_of_speech),
		   pronunciation_ipa = COALESCE($5, pronunciation_ipa),
		   example_sentence = COALESCE($6, example_sentence),
		   example_sentence_translation = COALESCE($7, example_sentence_translation),
		   translation = COALESCE($8, translation),
		   audio_pronunciation_url = COALESCE($9, audio_pronunciation_url)
		 WHERE id = $1`,
		r.ID, r.Fields.WordOrPhrase, r.Fields.PrimaryMeaning, r.Fields.PartOfSpeech,
		r.Fields.PronunciationIpa, r.Fields.ExampleSentence, r.Fields.ExampleSentenceTranslation,
		r.Fields.Translation, r.Fields.AudioPronunciationURL)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) DeleteCard(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM vocabulary_cards WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) ListCards(ctx context.Context, sessionID string) ([]model.VocabularyCard, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+cardColumns+" FROM vocabulary_cards WHERE session_id = $1 ORDER BY created_at DESC, id DESC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []model.VocabularyCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	return cards, nil
}

const bankColumns = `id, user_id, session_id, card_id, mastered, COALESCE(difficulty_level, ''), saved_at`

func scanBankEntry(row interface{ Scan(...any) error }) (model.PersonalVocabulary, error) {
	var e model.PersonalVocabulary
	err := row.Scan(&e.ID, &e.UserID, &e.SessionID, &e.CardID, &e.Mastered, &e.DifficultyLevel, &e.SavedAt)
	return e, err
}

func (s *PostgresStore) UpsertBankEntry(ctx context.Context, e model.PersonalVocabulary) (model.PersonalVocabulary, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO personal_vocabulary (id, user_id, session_id, card_id, mastered, difficulty_level, saved_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		 ON CONFLICT (user_id, card_id) DO NOTHING`,
		e.ID, e.UserID, e.SessionID, e.CardID, e.Mastered, e.DifficultyLevel, e.SavedAt)
	if err != nil {
		return model.PersonalVocabulary{}, fmt.Errorf("insert bank entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return model.PersonalVocabulary{}, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return e, nil
	}

	// Re-save of an already bookmarked card: keep the existing entry untouched.
	row := s.q.QueryRowContext(ctx,
		"SELECT "+bankColumns+" FROM personal_vocabulary WHERE user_id = $1 AND card_id = $2",
		e.UserID, e.CardID)

	existing, err := scanBankEntry(row)
	if err != nil {
		return model.PersonalVocabulary{}, fmt.Errorf("query bank entry: %w", err)
	}

	return existing, nil
}

func (s *PostgresStore) GetBankEntry(ctx context.Context, id string) (model.PersonalVocabulary, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+bankColumns+" FROM personal_vocabulary WHERE id = $1", id)

	e, err := scanBankEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PersonalVocabulary{}, ErrNotFound
		}

		return model.PersonalVocabulary{}, fmt.Errorf("query bank entry: %w", err)
	}

	return e, nil
}

func (s *PostgresStore) UpdateBankEntry(ctx context.Context, r UpdateBankEntryRequest) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE personal_vocabulary SET
		   mastered = COALESCE($2, mastered),
		   difficulty_level = COALESCE($3, difficulty_level)
		 WHERE id = $1`,
		r.ID, r.Mastered, (*string)(r.DifficultyLevel))
	if err != nil {
		return fmt.Errorf("update bank entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) DeleteBankEntry(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM personal_vocabulary WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete bank entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) ListBank(ctx context.Context, userID string) ([]model.PersonalVocabulary, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+bankColumns+" FROM personal_vocabulary WHERE user_id = $1 ORDER BY saved_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("query bank: %w", err)
	}
	defer rows.Close()

	var entries []model.PersonalVocabulary
	for rows.Next() {
		e, err := scanBankEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bank: %w", err)
	}

	return entries, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func isPqErr(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code == code
}
