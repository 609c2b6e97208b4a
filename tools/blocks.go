package tools

import "fmt"

// Block is the subset of Slack Block Kit the replies use.
type Block struct {
	Type     string      `json:"type"`
	Text     *BlockText  `json:"text,omitempty"`
	Elements []BlockText `json:"elements,omitempty"`
}

type BlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func mrkdwn(text string) *BlockText {
	return &BlockText{Type: "mrkdwn", Text: text}
}

// IssueOpenedBlocks formats the reply posted when a captured event opens an
// issue. Returns the plain-text fallback and the block list.
func IssueOpenedBlocks(issueKey, summary, reporterRef string) (string, []Block) {
	fallback := fmt.Sprintf("Support issue %s opened: %s", issueKey, summary)

	blocks := []Block{
		{Type: "section", Text: mrkdwn(fmt.Sprintf(":ticket: *Issue `%s` opened*", issueKey))},
		{Type: "section", Text: mrkdwn(fmt.Sprintf("> %s", summary))},
	}
	if reporterRef != "" {
		blocks = append(blocks, Block{
			Type:     "context",
			Elements: []BlockText{{Type: "mrkdwn", Text: fmt.Sprintf("Reported by <@%s>. React with :white_check_mark: to resolve.", reporterRef)}},
		})
	}
	return fallback, blocks
}

// IssueResolvedBlocks formats the reply posted when an issue is resolved.
func IssueResolvedBlocks(issueKey string) (string, []Block) {
	fallback := fmt.Sprintf("Support issue %s resolved", issueKey)
	blocks := []Block{
		{Type: "section", Text: mrkdwn(fmt.Sprintf(":white_check_mark: *Issue `%s` resolved*", issueKey))},
	}
	return fallback, blocks
}

// Truncate shortens message text for issue summaries.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}
