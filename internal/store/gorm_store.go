package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"studyhub/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&PaperModel{},
		&PostModel{},
		&ReplyModel{},
		&StudyGroupModel{},
		&StudyGroupMemberModel{},
		&StudySessionModel{},
		&ActivityModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateUser stores a new user.
func (s *GormStore) CreateUser(u domain.User) (domain.User, error) {
	model := UserModel{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Points:       u.Points,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.User{}, err
	}
	return userFromModel(model), nil
}

// GetUser returns a user by id.
func (s *GormStore) GetUser(id int64) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByUsername looks up a user by username, case-insensitively.
func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	return s.firstUser("LOWER(username) = LOWER(?)", username)
}

// GetUserByEmail looks up a user by email, case-insensitively.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	return s.firstUser("LOWER(email) = LOWER(?)", email)
}

func (s *GormStore) firstUser(cond string, arg any) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListUsers returns all users in creation order.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// AddUserPoints adjusts a user's points balance.
func (s *GormStore) AddUserPoints(id int64, delta int) (domain.User, bool, error) {
	tx := s.db.Model(&UserModel{}).
		Where("id = ?", id).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if tx.Error != nil {
		return domain.User{}, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.User{}, false, nil
	}
	return s.GetUser(id)
}

// CreatePaper stores a new paper.
func (s *GormStore) CreatePaper(p domain.Paper) (domain.Paper, error) {
	model := PaperModel{
		UploaderID:  p.UploaderID,
		Course:      p.Course,
		Year:        p.Year,
		Institution: p.Institution,
		FileURL:     p.FileURL,
		StorageKey:  p.StorageKey,
		Pages:       p.Pages,
		SizeBytes:   p.SizeBytes,
		Downloads:   p.Downloads,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Paper{}, err
	}
	return paperFromModel(model), nil
}

// GetPaper retrieves a paper by id.
func (s *GormStore) GetPaper(id int64) (domain.Paper, bool, error) {
	var model PaperModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Paper{}, false, nil
		}
		return domain.Paper{}, false, err
	}
	return paperFromModel(model), true, nil
}

// ListPapers returns papers matching every set filter field.
func (s *GormStore) ListPapers(f PaperFilter) ([]domain.Paper, error) {
	tx := s.db.Order("id ASC")
	if f.UploaderID != nil {
		tx = tx.Where("uploader_id = ?", *f.UploaderID)
	}
	if f.Course != nil {
		tx = tx.Where("course = ?", *f.Course)
	}
	if f.Year != nil {
		tx = tx.Where("year = ?", *f.Year)
	}
	if f.Institution != nil {
		tx = tx.Where("institution = ?", *f.Institution)
	}
	var models []PaperModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Paper, 0, len(models))
	for _, m := range models {
		res = append(res, paperFromModel(m))
	}
	return res, nil
}

// IncrementPaperDownloads bumps the download counter by one.
func (s *GormStore) IncrementPaperDownloads(id int64) (domain.Paper, bool, error) {
	tx := s.db.Model(&PaperModel{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1"))
	if tx.Error != nil {
		return domain.Paper{}, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.Paper{}, false, nil
	}
	return s.GetPaper(id)
}

// CreatePost stores a new discussion post.
func (s *GormStore) CreatePost(p domain.DiscussionPost) (domain.DiscussionPost, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return domain.DiscussionPost{}, fmt.Errorf("encode tags: %w", err)
	}
	model := PostModel{
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		Content:   p.Content,
		Tags:      datatypes.JSON(tags),
		Votes:     p.Votes,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.DiscussionPost{}, err
	}
	return postFromModel(model), nil
}

// GetPost retrieves a post by id.
func (s *GormStore) GetPost(id int64) (domain.DiscussionPost, bool, error) {
	var model PostModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DiscussionPost{}, false, nil
		}
		return domain.DiscussionPost{}, false, err
	}
	return postFromModel(model), true, nil
}

// ListPosts returns posts matching the filter in creation order.
func (s *GormStore) ListPosts(f PostFilter) ([]domain.DiscussionPost, error) {
	tx := s.db.Order("id ASC")
	if f.AuthorID != nil {
		tx = tx.Where("author_id = ?", *f.AuthorID)
	}
	var models []PostModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.DiscussionPost, 0, len(models))
	for _, m := range models {
		res = append(res, postFromModel(m))
	}
	return res, nil
}

// VotePost adds delta to the post's vote counter.
func (s *GormStore) VotePost(id int64, delta int) (domain.DiscussionPost, bool, error) {
	tx := s.db.Model(&PostModel{}).
		Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta))
	if tx.Error != nil {
		return domain.DiscussionPost{}, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.DiscussionPost{}, false, nil
	}
	return s.GetPost(id)
}

// CreateReply stores a new reply.
func (s *GormStore) CreateReply(r domain.DiscussionReply) (domain.DiscussionReply, error) {
	model := ReplyModel{
		PostID:    r.PostID,
		AuthorID:  r.AuthorID,
		Content:   r.Content,
		Votes:     r.Votes,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.DiscussionReply{}, err
	}
	return replyFromModel(model), nil
}

// GetReply retrieves a reply by id.
func (s *GormStore) GetReply(id int64) (domain.DiscussionReply, bool, error) {
	var model ReplyModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DiscussionReply{}, false, nil
		}
		return domain.DiscussionReply{}, false, err
	}
	return replyFromModel(model), true, nil
}

// ListReplies returns replies matching the filter in creation order.
func (s *GormStore) ListReplies(f ReplyFilter) ([]domain.DiscussionReply, error) {
	tx := s.db.Order("id ASC")
	if f.PostID != nil {
		tx = tx.Where("post_id = ?", *f.PostID)
	}
	if f.AuthorID != nil {
		tx = tx.Where("author_id = ?", *f.AuthorID)
	}
	var models []ReplyModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.DiscussionReply, 0, len(models))
	for _, m := range models {
		res = append(res, replyFromModel(m))
	}
	return res, nil
}

// VoteReply adds delta to the reply's vote counter.
func (s *GormStore) VoteReply(id int64, delta int) (domain.DiscussionReply, bool, error) {
	tx := s.db.Model(&ReplyModel{}).
		Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta))
	if tx.Error != nil {
		return domain.DiscussionReply{}, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.DiscussionReply{}, false, nil
	}
	return s.GetReply(id)
}

// CreateStudyGroup stores a new group.
func (s *GormStore) CreateStudyGroup(g domain.StudyGroup) (domain.StudyGroup, error) {
	model := StudyGroupModel{
		CreatorID: g.CreatorID,
		Name:      g.Name,
		Course:    g.Course,
		Color:     g.Color,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.StudyGroup{}, err
	}
	return groupFromModel(model), nil
}

// GetStudyGroup retrieves a group by id.
func (s *GormStore) GetStudyGroup(id int64) (domain.StudyGroup, bool, error) {
	var model StudyGroupModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StudyGroup{}, false, nil
		}
		return domain.StudyGroup{}, false, err
	}
	return groupFromModel(model), true, nil
}

// ListStudyGroups returns groups matching the filter in creation order.
func (s *GormStore) ListStudyGroups(f GroupFilter) ([]domain.StudyGroup, error) {
	tx := s.db.Order("id ASC")
	if f.CreatorID != nil {
		tx = tx.Where("creator_id = ?", *f.CreatorID)
	}
	if f.Course != nil {
		tx = tx.Where("course = ?", *f.Course)
	}
	var models []StudyGroupModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.StudyGroup, 0, len(models))
	for _, m := range models {
		res = append(res, groupFromModel(m))
	}
	return res, nil
}

// AddStudyGroupMember records a membership row.
func (s *GormStore) AddStudyGroupMember(mem domain.StudyGroupMember) (domain.StudyGroupMember, error) {
	joined := mem.JoinedAt
	if joined.IsZero() {
		joined = time.Now().UTC()
	}
	model := StudyGroupMemberModel{
		GroupID:  mem.GroupID,
		UserID:   mem.UserID,
		IsAdmin:  mem.IsAdmin,
		JoinedAt: joined,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.StudyGroupMember{}, err
	}
	return memberFromModel(model), nil
}

// ListStudyGroupMembers returns membership rows for a group in join order.
func (s *GormStore) ListStudyGroupMembers(groupID int64) ([]domain.StudyGroupMember, error) {
	var models []StudyGroupMemberModel
	if err := s.db.Where("group_id = ?", groupID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.StudyGroupMember, 0, len(models))
	for _, m := range models {
		res = append(res, memberFromModel(m))
	}
	return res, nil
}

// RemoveStudyGroupMember deletes at most one membership row for the pair.
func (s *GormStore) RemoveStudyGroupMember(groupID, userID int64) (bool, error) {
	var model StudyGroupMemberModel
	err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Order("id ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.db.Delete(&StudyGroupMemberModel{}, "id = ?", model.ID).Error; err != nil {
		return false, err
	}
	return true, nil
}

// StudyGroupsForUser returns the groups the user belongs to.
func (s *GormStore) StudyGroupsForUser(userID int64) ([]domain.StudyGroup, error) {
	var models []StudyGroupModel
	err := s.db.
		Where("id IN (?)", s.db.Model(&StudyGroupMemberModel{}).
			Select("group_id").
			Where("user_id = ?", userID)).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.StudyGroup, 0, len(models))
	for _, m := range models {
		res = append(res, groupFromModel(m))
	}
	return res, nil
}

// CreateStudySession stores a new session.
func (s *GormStore) CreateStudySession(sess domain.StudySession) (domain.StudySession, error) {
	model := StudySessionModel{
		GroupID:     sess.GroupID,
		CreatedBy:   sess.CreatedBy,
		Title:       sess.Title,
		StartTime:   sess.StartTime,
		EndTime:     sess.EndTime,
		IsVirtual:   sess.IsVirtual,
		Location:    sess.Location,
		MeetingLink: sess.MeetingLink,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.StudySession{}, err
	}
	return sessionFromModel(model), nil
}

// GetStudySession retrieves a session by id.
func (s *GormStore) GetStudySession(id int64) (domain.StudySession, bool, error) {
	var model StudySessionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StudySession{}, false, nil
		}
		return domain.StudySession{}, false, err
	}
	return sessionFromModel(model), true, nil
}

// ListStudySessions returns sessions matching the filter in creation order.
func (s *GormStore) ListStudySessions(f SessionFilter) ([]domain.StudySession, error) {
	tx := s.db.Order("id ASC")
	if f.GroupID != nil {
		tx = tx.Where("group_id = ?", *f.GroupID)
	}
	if f.CreatedBy != nil {
		tx = tx.Where("created_by = ?", *f.CreatedBy)
	}
	var models []StudySessionModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.StudySession, 0, len(models))
	for _, m := range models {
		res = append(res, sessionFromModel(m))
	}
	return res, nil
}

// UpcomingStudySessions returns future sessions of the user's groups,
// ascending by start time.
func (s *GormStore) UpcomingStudySessions(userID int64, now time.Time) ([]domain.StudySession, error) {
	var models []StudySessionModel
	err := s.db.
		Where("start_time > ?", now).
		Where("group_id IN (?)", s.db.Model(&StudyGroupMemberModel{}).
			Select("group_id").
			Where("user_id = ?", userID)).
		Order("start_time ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.StudySession, 0, len(models))
	for _, m := range models {
		res = append(res, sessionFromModel(m))
	}
	return res, nil
}

// LogActivity appends an activity record.
func (s *GormStore) LogActivity(a domain.Activity) (domain.Activity, error) {
	model := ActivityModel{
		UserID:     a.UserID,
		Type:       string(a.Type),
		TargetID:   a.TargetID,
		TargetType: string(a.TargetType),
		Metadata:   datatypes.JSONMap(a.Metadata),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Activity{}, err
	}
	return activityFromModel(model), nil
}

// ListActivities returns activity entries newest first.
func (s *GormStore) ListActivities(f ActivityFilter) ([]domain.Activity, error) {
	tx := s.db.Order("created_at DESC, id DESC")
	if f.UserID != nil {
		tx = tx.Where("user_id = ?", *f.UserID)
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	var models []ActivityModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Activity, 0, len(models))
	for _, m := range models {
		res = append(res, activityFromModel(m))
	}
	return res, nil
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Points:       m.Points,
		CreatedAt:    m.CreatedAt,
	}
}

func paperFromModel(m PaperModel) domain.Paper {
	return domain.Paper{
		ID:          m.ID,
		UploaderID:  m.UploaderID,
		Course:      m.Course,
		Year:        m.Year,
		Institution: m.Institution,
		FileURL:     m.FileURL,
		StorageKey:  m.StorageKey,
		Pages:       m.Pages,
		SizeBytes:   m.SizeBytes,
		Downloads:   m.Downloads,
		CreatedAt:   m.CreatedAt,
	}
}

func postFromModel(m PostModel) domain.DiscussionPost {
	var tags []string
	if len(m.Tags) > 0 {
		_ = json.Unmarshal(m.Tags, &tags)
	}
	return domain.DiscussionPost{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Title:     m.Title,
		Content:   m.Content,
		Tags:      tags,
		Votes:     m.Votes,
		CreatedAt: m.CreatedAt,
	}
}

func replyFromModel(m ReplyModel) domain.DiscussionReply {
	return domain.DiscussionReply{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		Votes:     m.Votes,
		CreatedAt: m.CreatedAt,
	}
}

func groupFromModel(m StudyGroupModel) domain.StudyGroup {
	return domain.StudyGroup{
		ID:        m.ID,
		CreatorID: m.CreatorID,
		Name:      m.Name,
		Course:    m.Course,
		Color:     m.Color,
		CreatedAt: m.CreatedAt,
	}
}

func memberFromModel(m StudyGroupMemberModel) domain.StudyGroupMember {
	return domain.StudyGroupMember{
		ID:       m.ID,
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		IsAdmin:  m.IsAdmin,
		JoinedAt: m.JoinedAt,
	}
}

func sessionFromModel(m StudySessionModel) domain.StudySession {
	return domain.StudySession{
		ID:          m.ID,
		GroupID:     m.GroupID,
		CreatedBy:   m.CreatedBy,
		Title:       m.Title,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		IsVirtual:   m.IsVirtual,
		Location:    m.Location,
		MeetingLink: m.MeetingLink,
		CreatedAt:   m.CreatedAt,
	}
}

func activityFromModel(m ActivityModel) domain.Activity {
	return domain.Activity{
		ID:         m.ID,
		UserID:     m.UserID,
		Type:       domain.ActivityType(m.Type),
		TargetID:   m.TargetID,
		TargetType: domain.TargetType(m.TargetType),
		Metadata:   map[string]any(m.Metadata),
		CreatedAt:  m.CreatedAt,
	}
}
