package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not
	// match. The message is shown to end users and deliberately does not say
	// whether the username exists.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")

	ErrPaperNotFound   = errors.New("paper not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrReplyNotFound   = errors.New("reply not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrAlreadyMember  = errors.New("already a member of this group")
	ErrNotGroupMember = errors.New("not a member of this group")

	ErrInvalidVote = errors.New("vote delta must be +1 or -1")
	ErrInvalidPDF  = errors.New("file is not a valid PDF")
)

// ValidationError marks caller input rejected before it reaches the store.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
