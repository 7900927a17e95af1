package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smart-review/smart-review/internal/core"
)

// ParseOutcome classifies a raw JSON object returned by the LLM gateway into
// one of the three review outcome variants. It is a pure transformation:
// field order is preserved verbatim, nothing is deduplicated or reordered.
//
// An absent or unrecognized review_type yields core.ErrUnexpectedReplyShape.
// A recognized review_type with missing or empty required fields yields
// core.ErrMalformedReply.
func ParseOutcome(raw map[string]any) (core.ReviewOutcome, error) {
	reviewType, ok := raw["review_type"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing review_type field", core.ErrUnexpectedReplyShape)
	}

	switch core.ReviewType(reviewType) {
	case core.PositiveReviewType:
		return parsePositive(raw)
	case core.NegativeReviewType:
		return parseNegative(raw)
	case core.AdditionalFilesType:
		return parseAdditionalFiles(raw)
	default:
		return nil, fmt.Errorf("%w: unknown review_type %q", core.ErrUnexpectedReplyShape, reviewType)
	}
}

func parsePositive(raw map[string]any) (core.ReviewOutcome, error) {
	message, ok := raw["message"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: positive_review is missing message", core.ErrMalformedReply)
	}
	return core.PositiveReview{Message: message}, nil
}

func parseNegative(raw map[string]any) (core.ReviewOutcome, error) {
	message, ok := raw["message"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: negative_review is missing message", core.ErrMalformedReply)
	}

	reviewsRaw, ok := raw["reviews"].([]any)
	if !ok || len(reviewsRaw) == 0 {
		return nil, fmt.Errorf("%w: negative_review has no reviews", core.ErrMalformedReply)
	}

	fileReviews := make([]core.FileReview, 0, len(reviewsRaw))
	for i, item := range reviewsRaw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: reviews[%d] is not an object", core.ErrMalformedReply, i)
		}
		filePath, ok := entry["file"].(string)
		if !ok || filePath == "" {
			return nil, fmt.Errorf("%w: reviews[%d] is missing file", core.ErrMalformedReply, i)
		}
		commentsRaw, ok := entry["comments"].([]any)
		if !ok || len(commentsRaw) == 0 {
			return nil, fmt.Errorf("%w: reviews[%d] has no comments", core.ErrMalformedReply, i)
		}

		lineReviews := make([]core.LineReview, 0, len(commentsRaw))
		for j, c := range commentsRaw {
			comment, ok := c.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: reviews[%d].comments[%d] is not an object", core.ErrMalformedReply, i, j)
			}
			line, ok := asLineNumber(comment["line"])
			if !ok {
				return nil, fmt.Errorf("%w: reviews[%d].comments[%d] has no valid line number", core.ErrMalformedReply, i, j)
			}
			body, ok := comment["message"].(string)
			if !ok {
				return nil, fmt.Errorf("%w: reviews[%d].comments[%d] is missing message", core.ErrMalformedReply, i, j)
			}
			lineReviews = append(lineReviews, core.LineReview{LineNumber: line, Message: body})
		}

		fileReviews = append(fileReviews, core.FileReview{FilePath: filePath, LineReviews: lineReviews})
	}

	return core.NegativeReview{Message: message, FileReviews: fileReviews}, nil
}

func parseAdditionalFiles(raw map[string]any) (core.ReviewOutcome, error) {
	message, ok := raw["message"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: additional_files is missing message", core.ErrMalformedReply)
	}

	pathsRaw, ok := raw["additional_files"].([]any)
	if !ok || len(pathsRaw) == 0 {
		return nil, fmt.Errorf("%w: additional_files has no paths", core.ErrMalformedReply)
	}

	paths := make([]string, 0, len(pathsRaw))
	for i, p := range pathsRaw {
		path, ok := p.(string)
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: additional_files[%d] is not a path", core.ErrMalformedReply, i)
		}
		paths = append(paths, path)
	}

	return core.AdditionalFilesRequest{Message: message, Paths: paths}, nil
}

// asLineNumber accepts the numeric representations json decoding can
// produce for a line number. Only positive integers are valid.
func asLineNumber(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) || int(n) <= 0 {
			return 0, false
		}
		return int(n), true
	case int:
		if n <= 0 {
			return 0, false
		}
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i <= 0 {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// decodeJSONObject decodes a model reply into a JSON object, tolerating a
// wrapping markdown code fence.
func decodeJSONObject(s string) (map[string]any, error) {
	cleaned := stripJSONFence(s)

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("reply is not a JSON object: %w", err)
	}
	return raw, nil
}

// stripJSONFence removes ```json ... ``` wrapping that some LLMs add around
// their output.
func stripJSONFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return trimmed
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
