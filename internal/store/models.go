package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Points       int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
}

type PaperModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	UploaderID  int64  `gorm:"not null;index"`
	Course      string `gorm:"not null;index"`
	Year        int    `gorm:"not null"`
	Institution string `gorm:"not null"`
	FileURL     string
	StorageKey  string
	Pages       int
	SizeBytes   int64     `gorm:"not null"`
	Downloads   int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
}

type PostModel struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	AuthorID  int64          `gorm:"not null;index"`
	Title     string         `gorm:"not null"`
	Content   string         `gorm:"not null"`
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	Votes     int            `gorm:"not null;default:0"`
	CreatedAt time.Time      `gorm:"not null"`
}

type ReplyModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	PostID    int64     `gorm:"not null;index"`
	AuthorID  int64     `gorm:"not null;index"`
	Content   string    `gorm:"not null"`
	Votes     int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

type StudyGroupModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatorID int64     `gorm:"not null;index"`
	Name      string    `gorm:"not null"`
	Course    string    `gorm:"not null;index"`
	Color     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type StudyGroupMemberModel struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	GroupID  int64     `gorm:"not null;index"`
	UserID   int64     `gorm:"not null;index"`
	IsAdmin  bool      `gorm:"not null;default:false"`
	JoinedAt time.Time `gorm:"not null"`
}

type StudySessionModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	GroupID     int64     `gorm:"not null;index"`
	CreatedBy   int64     `gorm:"not null"`
	Title       string    `gorm:"not null"`
	StartTime   time.Time `gorm:"not null;index"`
	EndTime     time.Time `gorm:"not null"`
	IsVirtual   bool      `gorm:"not null;default:false"`
	Location    string
	MeetingLink string
	CreatedAt   time.Time `gorm:"not null"`
}

type ActivityModel struct {
	ID         int64             `gorm:"primaryKey;autoIncrement"`
	UserID     int64             `gorm:"not null;index"`
	Type       string            `gorm:"not null"`
	TargetID   int64             `gorm:"not null"`
	TargetType string            `gorm:"not null"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"not null;index"`
}
