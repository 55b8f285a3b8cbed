package convo

import "strings"

// maxSuggestions caps follow-up suggestions per response.
const maxSuggestions = 3

// topicEntry maps keyword hits in an answer to follow-up prompts for
// that practice area.
type topicEntry struct {
	topic    string
	keywords []string
	prompts  []string
}

var topicTable = []topicEntry{
	{
		topic:    "contract law",
		keywords: []string{"contract", "agreement", "clause", "breach", "consideration", "terms"},
		prompts: []string{
			"What makes a contract legally binding?",
			"How can a contract be terminated early?",
			"What remedies are available for breach of contract?",
		},
	},
	{
		topic:    "employment law",
		keywords: []string{"employment", "employee", "employer", "workplace", "termination", "discrimination", "wages"},
		prompts: []string{
			"What counts as wrongful termination?",
			"Are non-compete clauses enforceable?",
			"What should an employment agreement include?",
		},
	},
	{
		topic:    "intellectual property",
		keywords: []string{"patent", "trademark", "copyright", "intellectual property", "infringement", "licensing"},
		prompts: []string{
			"How do I register a trademark?",
			"What does copyright protect?",
			"How is patent infringement proven?",
		},
	},
	{
		topic:    "business law",
		keywords: []string{"llc", "incorporation", "business", "liability", "partnership", "shareholder", "bylaws"},
		prompts: []string{
			"Should I form an LLC or a corporation?",
			"What are the liability risks for business owners?",
			"What goes into a partnership agreement?",
		},
	},
}

var genericSuggestions = []string{
	"Can you explain that in simpler terms?",
	"What are the next steps I should take?",
	"When should I consult an attorney about this?",
}

// SuggestFollowUps derives up to three follow-up prompts by matching the
// given text against the topic table. It always returns a non-empty
// list, falling back to generic prompts when nothing matches.
func SuggestFollowUps(text string) []string {
	lower := strings.ToLower(text)

	var out []string
	for _, entry := range topicTable {
		if !matchesAny(lower, entry.keywords) {
			continue
		}
		for _, p := range entry.prompts {
			if len(out) >= maxSuggestions {
				return out
			}
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		out = append(out, genericSuggestions...)
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// TopicFor returns a human-readable summary of the practice area the
// text touches on.
func TopicFor(text string) string {
	lower := strings.ToLower(text)
	var topics []string
	for _, entry := range topicTable {
		if matchesAny(lower, entry.keywords) {
			topics = append(topics, entry.topic)
		}
	}
	if len(topics) == 0 {
		return "general legal questions"
	}
	return strings.Join(topics, ", ")
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
