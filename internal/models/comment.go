package models

// Comment is an issue-thread comment authored on a pull request.
type Comment struct {
	ID      int64
	Body    string
	HTMLURL string
}
