package core

import "time"

// ReviewHandle identifies a pull-request review created on the
// source-control host.
type ReviewHandle struct {
	ID    int64
	URL   string
	State ReviewState
}

// ReviewRecord is a completed review as stored in the database.
type ReviewRecord struct {
	ID           int64       `db:"id"`
	RepoFullName string      `db:"repo_full_name"`
	PRNumber     int         `db:"pr_number"`
	HeadSHA      string      `db:"head_sha"`
	State        ReviewState `db:"state"`
	Summary      string      `db:"summary"`
	Rounds       int         `db:"rounds"`
	CreatedAt    time.Time   `db:"created_at"`
}
