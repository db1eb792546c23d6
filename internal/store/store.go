package store

import (
	"time"

	"studyhub/pkg/domain"
)

// Store defines persistence operations for all StudyHub entities.
//
// Create operations assign the identifier and creation timestamp and return
// the stored entity. Lookups return (value, found, error): a missing id is
// reported through the found flag, never as an error. List operations apply
// filter fields by strict equality and return entities in creation order.
type Store interface {
	// users
	CreateUser(domain.User) (domain.User, error)
	GetUser(id int64) (domain.User, bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	AddUserPoints(id int64, delta int) (domain.User, bool, error)

	// papers
	CreatePaper(domain.Paper) (domain.Paper, error)
	GetPaper(id int64) (domain.Paper, bool, error)
	ListPapers(PaperFilter) ([]domain.Paper, error)
	IncrementPaperDownloads(id int64) (domain.Paper, bool, error)

	// discussion posts and replies
	CreatePost(domain.DiscussionPost) (domain.DiscussionPost, error)
	GetPost(id int64) (domain.DiscussionPost, bool, error)
	ListPosts(PostFilter) ([]domain.DiscussionPost, error)
	VotePost(id int64, delta int) (domain.DiscussionPost, bool, error)
	CreateReply(domain.DiscussionReply) (domain.DiscussionReply, error)
	GetReply(id int64) (domain.DiscussionReply, bool, error)
	ListReplies(ReplyFilter) ([]domain.DiscussionReply, error)
	VoteReply(id int64, delta int) (domain.DiscussionReply, bool, error)

	// study groups and memberships
	CreateStudyGroup(domain.StudyGroup) (domain.StudyGroup, error)
	GetStudyGroup(id int64) (domain.StudyGroup, bool, error)
	ListStudyGroups(GroupFilter) ([]domain.StudyGroup, error)
	AddStudyGroupMember(domain.StudyGroupMember) (domain.StudyGroupMember, error)
	ListStudyGroupMembers(groupID int64) ([]domain.StudyGroupMember, error)
	RemoveStudyGroupMember(groupID, userID int64) (bool, error)
	StudyGroupsForUser(userID int64) ([]domain.StudyGroup, error)

	// study sessions
	CreateStudySession(domain.StudySession) (domain.StudySession, error)
	GetStudySession(id int64) (domain.StudySession, bool, error)
	ListStudySessions(SessionFilter) ([]domain.StudySession, error)
	UpcomingStudySessions(userID int64, now time.Time) ([]domain.StudySession, error)

	// activity log (append-only)
	LogActivity(domain.Activity) (domain.Activity, error)
	ListActivities(ActivityFilter) ([]domain.Activity, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID int64) (string, error)
	GetUserIDByToken(token string) (int64, bool, error)
	DeleteSession(token string) error
}

// Filter structs enumerate the equality-matched fields supported per entity.
// A nil field means "any value". Multiple set fields intersect.

type PaperFilter struct {
	UploaderID  *int64
	Course      *string
	Year        *int
	Institution *string
}

type PostFilter struct {
	AuthorID *int64
}

type ReplyFilter struct {
	PostID   *int64
	AuthorID *int64
}

type GroupFilter struct {
	CreatorID *int64
	Course    *string
}

type SessionFilter struct {
	GroupID   *int64
	CreatedBy *int64
}

// ActivityFilter selects feed entries. Results are ordered by createdAt
// descending; Limit > 0 truncates, unlike the other list operations.
type ActivityFilter struct {
	UserID *int64
	Limit  int
}
