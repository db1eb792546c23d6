package domain

import "time"

// ActivityType names a user action recorded in the activity feed.
type ActivityType string

const (
	ActivityPaperUploaded    ActivityType = "paper_uploaded"
	ActivityPaperDownloaded  ActivityType = "paper_downloaded"
	ActivityPostCreated      ActivityType = "post_created"
	ActivityReplyCreated     ActivityType = "reply_created"
	ActivityGroupCreated     ActivityType = "group_created"
	ActivityGroupJoined      ActivityType = "group_joined"
	ActivityGroupLeft        ActivityType = "group_left"
	ActivitySessionScheduled ActivityType = "session_scheduled"
)

// TargetType names the kind of entity an activity refers to.
type TargetType string

const (
	TargetPaper   TargetType = "paper"
	TargetPost    TargetType = "post"
	TargetReply   TargetType = "reply"
	TargetGroup   TargetType = "group"
	TargetSession TargetType = "session"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Points       int       `json:"points"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Paper struct {
	ID          int64     `json:"id"`
	UploaderID  int64     `json:"uploaderId"`
	Course      string    `json:"course"`
	Year        int       `json:"year"`
	Institution string    `json:"institution"`
	FileURL     string    `json:"fileUrl,omitempty"`
	StorageKey  string    `json:"-"`
	Pages       int       `json:"pages,omitempty"`
	SizeBytes   int64     `json:"sizeBytes"`
	Downloads   int       `json:"downloads"`
	CreatedAt   time.Time `json:"createdAt"`
}

type DiscussionPost struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Votes     int       `json:"votes"`
	CreatedAt time.Time `json:"createdAt"`
}

type DiscussionReply struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	Content   string    `json:"content"`
	Votes     int       `json:"votes"`
	CreatedAt time.Time `json:"createdAt"`
}

type StudyGroup struct {
	ID        int64     `json:"id"`
	CreatorID int64     `json:"creatorId"`
	Name      string    `json:"name"`
	Course    string    `json:"course"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

type StudyGroupMember struct {
	ID       int64     `json:"id"`
	GroupID  int64     `json:"groupId"`
	UserID   int64     `json:"userId"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinedAt time.Time `json:"joinedAt"`
}

type StudySession struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"groupId"`
	CreatedBy   int64     `json:"createdBy"`
	Title       string    `json:"title"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsVirtual   bool      `json:"isVirtual"`
	Location    string    `json:"location,omitempty"`
	MeetingLink string    `json:"meetingLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Activity struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"userId"`
	Type       ActivityType   `json:"type"`
	TargetID   int64          `json:"targetId"`
	TargetType TargetType     `json:"targetType"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
