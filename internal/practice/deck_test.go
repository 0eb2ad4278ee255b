package practice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twbrandon7/lexi-connect/internal/model"
)

func testCards(words ...string) []model.VocabularyCard {
	cards := make([]model.VocabularyCard, 0, len(words))
	for _, w := range words {
		cards = append(cards, model.VocabularyCard{ID: w, WordOrPhrase: w})
	}
	return cards
}

func TestDeckSequencing(t *testing.T) {
	deck := NewDeck(testCards("reservation", "lobby", "concierge"))

	card, back, err := deck.Current()
	require.NoError(t, err)
	assert.Equal(t, "reservation", card.WordOrPhrase)
	assert.False(t, back)

	require.NoError(t, deck.Mark(OutcomeKnown))

	card, _, err = deck.Current()
	require.NoError(t, err)
	assert.Equal(t, "lobby", card.WordOrPhrase)

	done, total := deck.Progress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 3, total)
}

func TestFlipTogglesAndResetsOnAdvance(t *testing.T) {
	deck := NewDeck(testCards("reservation", "lobby"))

	require.NoError(t, deck.Flip())
	_, back, err := deck.Current()
	require.NoError(t, err)
	assert.True(t, back)

	require.NoError(t, deck.Flip())
	_, back, err = deck.Current()
	require.NoError(t, err)
	assert.False(t, back)

	require.NoError(t, deck.Flip())
	require.NoError(t, deck.Mark(OutcomeKnown))

	_, back, err = deck.Current()
	require.NoError(t, err)
	assert.False(t, back, "next card starts front side up")
}

func TestSummaryAndReviewRound(t *testing.T) {
	deck := NewDeck(testCards("reservation", "lobby", "concierge"))

	require.NoError(t, deck.Mark(OutcomeKnown))
	require.NoError(t, deck.Mark(OutcomeNeedsReview))
	require.NoError(t, deck.Mark(OutcomeNeedsReview))
	require.True(t, deck.Finished())

	sum := deck.Summary()
	assert.Equal(t, Summary{Known: 1, NeedsReview: 2, Total: 3}, sum)

	round := deck.ReviewRound()
	card, _, err := round.Current()
	require.NoError(t, err)
	assert.Equal(t, "lobby", card.WordOrPhrase)

	done, total := round.Progress()
	assert.Equal(t, 0, done)
	assert.Equal(t, 2, total)
}

func TestFinishedDeck(t *testing.T) {
	deck := NewDeck(testCards("reservation"))
	require.NoError(t, deck.Mark(OutcomeKnown))

	_, _, err := deck.Current()
	assert.ErrorIs(t, err, ErrDeckFinished)
	assert.ErrorIs(t, deck.Flip(), ErrDeckFinished)
	assert.ErrorIs(t, deck.Mark(OutcomeKnown), ErrDeckFinished)
}

func TestEmptyDeckIsFinished(t *testing.T) {
	deck := NewDeck(nil)
	assert.True(t, deck.Finished())
}

func TestRestart(t *testing.T) {
	deck := NewDeck(testCards("reservation", "lobby"))
	require.NoError(t, deck.Mark(OutcomeNeedsReview))
	require.NoError(t, deck.Mark(OutcomeKnown))

	deck.Restart()

	assert.False(t, deck.Finished())
	assert.Equal(t, Summary{Total: 2}, deck.Summary())

	card, _, err := deck.Current()
	require.NoError(t, err)
	assert.Equal(t, "reservation", card.WordOrPhrase)
}
