package engine

import (
	"fmt"
	"strings"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

// anchorMaxLen bounds the phrase quoted inside suggestion prompts.
const anchorMaxLen = 30

// anchorPhrase extracts a short quotable phrase from an item title. Short
// titles are used whole; long ones are cut at the first clause boundary,
// then truncated as a last resort.
func anchorPhrase(title string) string {
	title = strings.TrimSpace(title)
	if len([]rune(title)) <= anchorMaxLen {
		return title
	}

	cut := len(title)
	for _, sep := range []string{",", ":", ";", ".", "?", "!"} {
		if i := strings.Index(title, sep); i > 0 && i < cut {
			cut = i
		}
	}
	for _, conj := range []string{" and ", " or ", " but "} {
		if i := strings.Index(title, conj); i > 0 && i < cut {
			cut = i
		}
	}
	phrase := strings.TrimSpace(title[:cut])
	if r := []rune(phrase); len(r) > anchorMaxLen {
		phrase = strings.TrimSpace(string(r[:anchorMaxLen])) + "..."
	}
	return phrase
}

// suggestionsFor builds the four bond prompts offered after an item is
// created.
func suggestionsFor(title string) []qdpi.Suggestion {
	anchor := anchorPhrase(title)
	return []qdpi.Suggestion{
		{
			RecipeID:   "expand_to_checklist",
			IntentType: "expand",
			PromptText: fmt.Sprintf("Break %q into a concrete, ordered checklist.", anchor),
		},
		{
			RecipeID:   "ground_in_experiment",
			IntentType: "ground",
			PromptText: fmt.Sprintf("Design a small experiment that would test %q.", anchor),
		},
		{
			RecipeID:   "derive_min_schema",
			IntentType: "derive",
			PromptText: fmt.Sprintf("Derive the minimal data schema implied by %q.", anchor),
		},
		{
			RecipeID:   "decision_with_reasons",
			IntentType: "decide",
			PromptText: fmt.Sprintf("Turn %q into a single decision with explicit reasons.", anchor),
		},
	}
}

// proposalsFor builds the follow-up bond prompts offered after a holologue
// completes, anchored on the synthesized artifact.
func proposalsFor(title string) []qdpi.Suggestion {
	anchor := anchorPhrase(title)
	return []qdpi.Suggestion{
		{
			RecipeID:   "expand_to_checklist",
			IntentType: "expand",
			PromptText: fmt.Sprintf("Break %q into a concrete, ordered checklist.", anchor),
		},
		{
			RecipeID:   "derive_min_schema",
			IntentType: "derive",
			PromptText: fmt.Sprintf("Derive the minimal data schema implied by %q.", anchor),
		},
		{
			RecipeID:   "risk_register",
			IntentType: "critique",
			PromptText: fmt.Sprintf("List the risks hiding inside %q, worst first.", anchor),
		},
		{
			RecipeID:   "peer_review_objections",
			IntentType: "critique",
			PromptText: fmt.Sprintf("Raise the objections a skeptical reviewer would make to %q.", anchor),
		},
	}
}

// ShowSuggestions records the suggestion presentation for an item and
// returns the suggestions. Events-only: no Bond objects are created until
// the user confirms one via CreateBond.
func (e *Engine) ShowSuggestions(sess Session, itemID string) ([]qdpi.Suggestion, error) {
	item, err := e.store.GetItem(itemID)
	if err != nil {
		return nil, err
	}

	suggestions := suggestionsFor(item.Title)
	if _, err := e.append(sess.EpisodeID, qdpi.SuggestionsPresented{
		ItemID:      item.ID,
		Suggestions: suggestions,
	}); err != nil {
		return nil, err
	}
	return suggestions, nil
}
