package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twbrandon7/lexi-connect/internal/model"
	"github.com/twbrandon7/lexi-connect/internal/pkg/serr"
	"github.com/twbrandon7/lexi-connect/internal/store"
	"github.com/twbrandon7/lexi-connect/internal/watch"
)

// TestCollaborativeFlow walks two users through the whole product surface:
// host a public session, join it from the listing, create a card from a
// discovery suggestion, bookmark it, close the session and delete it, with
// the bookmark surviving the card's session.
func TestCollaborativeFlow(t *testing.T) {
	ms := newMemStore()
	hub := watch.NewHub()

	sessions := NewSessionService(ms, hub)
	discovery := newDiscovery(&mockLLM{
		completeFunc: completeWith(`{
			"answer": "Common farm birds:\n- rooster",
			"suggestions": [
				{"wordOrPhrase": "rooster", "partOfSpeech": "noun", "translation": "gallo", "exampleSentence": "The rooster crowed."}
			],
			"primaryMeaning": "a male chicken",
			"partOfSpeech": "noun",
			"pronunciationIpa": "/ˈruːstər/",
			"exampleSentence": "The rooster crowed at dawn.",
			"translation": "el gallo",
			"exampleSentenceTranslation": "El gallo cantó al amanecer."
		}`),
		speechFunc: func(ctx context.Context, text string) ([]byte, error) {
			return []byte("RIFF"), nil
		},
	})
	cards := NewCardService(ms, discovery, hub)
	bank := NewBankService(ms, hub)

	ctx := context.Background()

	// Host creates a public session.
	sess, err := sessions.CreateSession(ctx, CreateSessionRequest{
		Name:           "Farm Vocabulary",
		MotherLanguage: "es",
		Visibility:     model.VisibilityPublic,
		HostID:         "alice",
	})
	require.NoError(t, err)

	// A second user finds it in the public listing and joins.
	listed, err := sessions.ListPublicSessions(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NoError(t, sessions.JoinSession(ctx, listed[0].ID, "bob"))

	cardWatch := hub.Subscribe(watch.TopicSessionCards(sess.ID))
	defer cardWatch.Cancel()

	// Bob asks a discovery question and turns a suggestion into a card.
	disc, err := discovery.Discover(ctx, DiscoverRequest{
		Query:          "animales de granja",
		MotherLanguage: "es",
	})
	require.NoError(t, err)
	require.NotEmpty(t, disc.Suggestions)

	created, err := cards.CreateCard(ctx, CreateCardRequest{
		SessionID:       sess.ID,
		WordOrPhrase:    disc.Suggestions[0].WordOrPhrase,
		ExampleSentence: disc.Suggestions[0].ExampleSentence,
		MotherLanguage:  "es",
		CreatorID:       "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "a male chicken", created.Card.PrimaryMeaning)
	assert.NotEmpty(t, created.Card.AudioPronunciationURL)

	select {
	case <-cardWatch.C():
	default:
		t.Fatal("expected a card change signal after creation")
	}

	// The host sees the new card.
	visible, err := cards.ListCards(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "bob", visible[0].CreatorID)

	// The host polishes Bob's card; participants share edit rights.
	updated, err := cards.UpdateCard(ctx, UpdateCardRequest{
		CardID:      created.Card.ID,
		RequesterID: "alice",
		Fields:      store.CardFields{Translation: strptr("gallo")},
	})
	require.NoError(t, err)
	assert.Equal(t, "gallo", updated.Translation)

	// Bob bookmarks the card.
	entry, err := bank.SaveCard(ctx, SaveCardRequest{
		UserID:    "bob",
		SessionID: sess.ID,
		CardID:    created.Card.ID,
	})
	require.NoError(t, err)

	// The host closes the session; edits are now rejected.
	require.NoError(t, sessions.SetState(ctx, sess.ID, "alice", model.StateClosed))

	_, err = cards.UpdateCard(ctx, UpdateCardRequest{
		CardID:      created.Card.ID,
		RequesterID: "bob",
		Fields:      store.CardFields{Translation: strptr("un gallo")},
	})
	var se *serr.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)

	// Deleting the session leaves the card and the bookmark behind.
	require.NoError(t, sessions.DeleteSession(ctx, sess.ID, "alice"))

	resolved, err := bank.ResolveBankCards(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, entry.ID, resolved[0].Entry.ID)
	require.NotNil(t, resolved[0].Card)
	assert.Equal(t, "rooster", resolved[0].Card.WordOrPhrase)

	// Once the card itself goes, the bookmark dangles but stays listed.
	// Orphaned cards cannot be deleted through the service, so drop it at
	// the store.
	require.NoError(t, ms.DeleteCard(ctx, created.Card.ID))
	resolved, err = bank.ResolveBankCards(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Nil(t, resolved[0].Card)
}
