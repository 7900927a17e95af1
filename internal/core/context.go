package core

// ReviewContext is the orchestrator's working state for one pull-request
// review. It is created once per invocation, threaded through every
// recursion round and discarded after a terminal outcome. The current
// round is its only owner; it is never shared between goroutines.
type ReviewContext struct {
	DiffText           string
	PRContext          string
	ProjectDescription string

	// RelevantFilesText holds the joined path+content blocks of the files
	// the LLM requested on the previous round. It is replaced wholesale on
	// every additional-files round, never appended to.
	RelevantFilesText string

	// RecursionsRemaining counts down by exactly one per additional-files
	// round. It never goes negative: the orchestrator refuses to recurse
	// once it reaches zero.
	RecursionsRemaining int
}

// ReviewState is the terminal state of a completed review.
type ReviewState string

const (
	// Accepted means a positive review was posted.
	Accepted ReviewState = "accepted"
	// ChangesRequested means line comments and a negative summary review
	// were posted.
	ChangesRequested ReviewState = "changes_requested"
)
