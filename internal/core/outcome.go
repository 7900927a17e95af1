// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

// ReviewType is the discriminator value the LLM places in its JSON reply.
type ReviewType string

const (
	PositiveReviewType  ReviewType = "positive_review"
	NegativeReviewType  ReviewType = "negative_review"
	AdditionalFilesType ReviewType = "additional_files"
)

// ReviewOutcome is the closed set of reply shapes the LLM may produce.
// Exactly three types implement it: PositiveReview, NegativeReview and
// AdditionalFilesRequest. Values are immutable once constructed; the
// orchestrator produces a fresh outcome per round and consumes each one
// exactly once.
type ReviewOutcome interface {
	reviewOutcome()
}

// PositiveReview approves the pull request with a summary message.
type PositiveReview struct {
	Message string
}

// NegativeReview requests changes. FileReviews is never empty for an
// outcome that reaches the source-control gateway; the parser rejects
// empty collections as malformed.
type NegativeReview struct {
	Message     string
	FileReviews []FileReview
}

// AdditionalFilesRequest asks for more repository context before the LLM
// commits to a verdict. Paths is never empty.
type AdditionalFilesRequest struct {
	Message string
	Paths   []string
}

func (PositiveReview) reviewOutcome()         {}
func (NegativeReview) reviewOutcome()         {}
func (AdditionalFilesRequest) reviewOutcome() {}

// FileReview groups the line comments for a single file. Order of
// LineReviews is significant: comments are posted in document order.
type FileReview struct {
	FilePath    string
	LineReviews []LineReview
}

// LineReview is a single comment anchored to a line of the file.
type LineReview struct {
	LineNumber int
	Message    string
}
