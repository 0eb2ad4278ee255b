// Package practice implements client-side flashcard sequencing over a fixed
// list of cards. Nothing here touches storage; practice outcomes live only
// for the lifetime of the deck.
package practice

import (
	"errors"

	"github.com/twbrandon7/lexi-connect/internal/model"
)

var ErrDeckFinished = errors.New("deck is finished")

type Outcome int

const (
	OutcomeKnown Outcome = iota
	OutcomeNeedsReview
)

// Deck walks a fixed card list front to back. Each card shows its front
// first; Flip toggles the reveal, Mark classifies the card and advances.
type Deck struct {
	cards  []model.VocabularyCard
	pos    int
	back   bool
	known  []model.VocabularyCard
	review []model.VocabularyCard
}

func NewDeck(cards []model.VocabularyCard) *Deck {
	return &Deck{cards: cards}
}

// Current returns the card being practiced and whether its back side is
// revealed.
func (d *Deck) Current() (model.VocabularyCard, bool, error) {
	if d.Finished() {
		return model.VocabularyCard{}, false, ErrDeckFinished
	}

	return d.cards[d.pos], d.back, nil
}

// Flip toggles between the front and back of the current card.
func (d *Deck) Flip() error {
	if d.Finished() {
		return ErrDeckFinished
	}

	d.back = !d.back
	return nil
}

// Mark classifies the current card and advances to the next one, front side
// up.
func (d *Deck) Mark(o Outcome) error {
	if d.Finished() {
		return ErrDeckFinished
	}

	card := d.cards[d.pos]
	switch o {
	case OutcomeKnown:
		d.known = append(d.known, card)
	case OutcomeNeedsReview:
		d.review = append(d.review, card)
	}

	d.pos++
	d.back = false
	return nil
}

func (d *Deck) Finished() bool {
	return d.pos >= len(d.cards)
}

// Progress reports the number of cards completed and the deck size.
func (d *Deck) Progress() (done, total int) {
	return d.pos, len(d.cards)
}

// Summary is the end-of-deck tally.
type Summary struct {
	Known       int
	NeedsReview int
	Total       int
}

func (d *Deck) Summary() Summary {
	return Summary{
		Known:       len(d.known),
		NeedsReview: len(d.review),
		Total:       len(d.cards),
	}
}

// ReviewRound builds a fresh deck from the cards marked needs-review, in
// their original practice order. An empty round means everything was known.
func (d *Deck) ReviewRound() *Deck {
	cards := make([]model.VocabularyCard, len(d.review))
	copy(cards, d.review)
	return NewDeck(cards)
}

// Restart rewinds the deck to the first card and clears all outcomes.
func (d *Deck) Restart() {
	d.pos = 0
	d.back = false
	d.known = nil
	d.review = nil
}
