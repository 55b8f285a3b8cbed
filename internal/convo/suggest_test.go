package convo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestFollowUpsMatchesTopics(t *testing.T) {
	got := SuggestFollowUps("The breach of contract occurred when the agreement terms were violated.")

	require.NotEmpty(t, got)
	require.LessOrEqual(t, len(got), 3)
	require.Contains(t, got, "What makes a contract legally binding?")
}

func TestSuggestFollowUpsCapsAtThree(t *testing.T) {
	// Text spanning every topic still yields at most three prompts.
	text := "contract employment trademark llc"
	got := SuggestFollowUps(text)

	require.Len(t, got, 3)
}

func TestSuggestFollowUpsGenericFallback(t *testing.T) {
	got := SuggestFollowUps("the weather is nice today")

	require.Equal(t, genericSuggestions, got)
}

func TestTopicFor(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"my employer withheld wages", "employment law"},
		{"is this patent infringement", "intellectual property"},
		{"forming an LLC with a partnership agreement", "contract law, business law"},
		{"breach of contract at the workplace", "contract law, employment law"},
		{"hello there", "general legal questions"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, TopicFor(tc.text), "text %q", tc.text)
	}
}

func TestNormalizeForSpeech(t *testing.T) {
	in := "## Key Points\n\n- **Offer** and acceptance\n- Consideration\n\nSee `UCC 2-201` for details."
	got := NormalizeForSpeech(in)

	require.Equal(t, "Key Points. Offer and acceptance. Consideration. See UCC 2-201 for details.", got)
}

func TestNormalizeForSpeechKeepsPunctuation(t *testing.T) {
	require.Equal(t, "Is it binding?", NormalizeForSpeech("Is it binding?"))
	require.Equal(t, "", NormalizeForSpeech("  \n \n"))
}
