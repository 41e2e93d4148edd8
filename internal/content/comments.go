package content

import "strings"

// ExtractComments walks a source-specific comment forest depth first and
// converts it into PostComments. convert reports false for nodes that must be
// dropped; their replies are dropped with them. The limit caps each level
// after filtering. A non-positive limit means no cap.
func ExtractComments[T any](nodes []T, limit int, convert func(T) (PostComment, bool), children func(T) []T) []PostComment {
	out := make([]PostComment, 0, min(len(nodes), max(limit, 0)))
	for _, node := range nodes {
		if limit > 0 && len(out) >= limit {
			break
		}
		comment, ok := convert(node)
		if !ok {
			continue
		}
		if children != nil {
			comment.Replies = ExtractComments(children(node), limit, convert, children)
		}
		if comment.Replies == nil {
			comment.Replies = []PostComment{}
		}
		out = append(out, comment)
	}
	return out
}

// IsRemovedBody reports whether a comment body carries no usable text.
func IsRemovedBody(body string) bool {
	switch strings.TrimSpace(body) {
	case "", "[deleted]", "[removed]":
		return true
	}
	return false
}

// CountComments returns the number of nodes in a comment forest.
func CountComments(comments []PostComment) int {
	total := 0
	for _, c := range comments {
		total += 1 + CountComments(c.Replies)
	}
	return total
}

// CleanText collapses runs of whitespace into single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
