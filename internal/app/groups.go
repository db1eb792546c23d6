package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studyhub/internal/store"
	"studyhub/pkg/domain"
)

const defaultGroupColor = "#4f46e5"

// CreateStudyGroup creates a group and adds the creator as its first admin
// member. The two store writes plus the activity append are separate
// operations with no rollback between them.
func (a *App) CreateStudyGroup(ctx context.Context, creator domain.User, name, course, color string) (domain.StudyGroup, error) {
	name = strings.TrimSpace(name)
	course = strings.TrimSpace(course)
	if name == "" || course == "" {
		return domain.StudyGroup{}, ValidationError("name and course are required")
	}
	if strings.TrimSpace(color) == "" {
		color = defaultGroupColor
	}
	group, err := a.store.CreateStudyGroup(domain.StudyGroup{
		CreatorID: creator.ID,
		Name:      name,
		Course:    course,
		Color:     color,
	})
	if err != nil {
		return domain.StudyGroup{}, fmt.Errorf("create group: %w", err)
	}
	if _, err := a.store.AddStudyGroupMember(domain.StudyGroupMember{
		GroupID: group.ID,
		UserID:  creator.ID,
		IsAdmin: true,
	}); err != nil {
		return domain.StudyGroup{}, fmt.Errorf("add creator member: %w", err)
	}
	a.recordActivity(ctx, creator.ID, domain.ActivityGroupCreated, group.ID, domain.TargetGroup, map[string]any{
		"name": group.Name,
	})
	return group, nil
}

// ListStudyGroups returns groups matching the filter.
func (a *App) ListStudyGroups(f store.GroupFilter) ([]domain.StudyGroup, error) {
	return a.store.ListStudyGroups(f)
}

// GetStudyGroup returns a group by id.
func (a *App) GetStudyGroup(id int64) (domain.StudyGroup, error) {
	group, ok, err := a.store.GetStudyGroup(id)
	if err != nil {
		return domain.StudyGroup{}, fmt.Errorf("fetch group: %w", err)
	}
	if !ok {
		return domain.StudyGroup{}, ErrGroupNotFound
	}
	return group, nil
}

// GroupMembers returns the membership rows of an existing group.
func (a *App) GroupMembers(groupID int64) ([]domain.StudyGroupMember, error) {
	if _, err := a.GetStudyGroup(groupID); err != nil {
		return nil, err
	}
	return a.store.ListStudyGroupMembers(groupID)
}

// JoinGroup adds the user as a regular member. The membership pre-check is
// not atomic with the insert, so two racing joins can both succeed.
func (a *App) JoinGroup(ctx context.Context, user domain.User, groupID int64) (domain.StudyGroupMember, error) {
	group, err := a.GetStudyGroup(groupID)
	if err != nil {
		return domain.StudyGroupMember{}, err
	}
	members, err := a.store.ListStudyGroupMembers(groupID)
	if err != nil {
		return domain.StudyGroupMember{}, fmt.Errorf("list members: %w", err)
	}
	for _, m := range members {
		if m.UserID == user.ID {
			return domain.StudyGroupMember{}, ErrAlreadyMember
		}
	}
	member, err := a.store.AddStudyGroupMember(domain.StudyGroupMember{
		GroupID: groupID,
		UserID:  user.ID,
	})
	if err != nil {
		return domain.StudyGroupMember{}, fmt.Errorf("add member: %w", err)
	}
	a.recordActivity(ctx, user.ID, domain.ActivityGroupJoined, group.ID, domain.TargetGroup, nil)
	return member, nil
}

// LeaveGroup removes the user's membership row.
func (a *App) LeaveGroup(ctx context.Context, user domain.User, groupID int64) error {
	removed, err := a.store.RemoveStudyGroupMember(groupID, user.ID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if !removed {
		return ErrNotGroupMember
	}
	a.recordActivity(ctx, user.ID, domain.ActivityGroupLeft, groupID, domain.TargetGroup, nil)
	return nil
}

// MyGroups returns the groups the user belongs to.
func (a *App) MyGroups(userID int64) ([]domain.StudyGroup, error) {
	return a.store.StudyGroupsForUser(userID)
}

// ScheduleSessionInput carries a new study session.
type ScheduleSessionInput struct {
	GroupID     int64
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	IsVirtual   bool
	Location    string
	MeetingLink string
}

// ScheduleSession creates a study session for a group the user belongs to.
// Overlapping sessions are allowed; there is no conflict checking.
func (a *App) ScheduleSession(ctx context.Context, user domain.User, in ScheduleSessionInput) (domain.StudySession, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.StudySession{}, ValidationError("title is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() || !in.EndTime.After(in.StartTime) {
		return domain.StudySession{}, ValidationError("session end must be after start")
	}
	if in.IsVirtual && strings.TrimSpace(in.MeetingLink) == "" {
		return domain.StudySession{}, ValidationError("meeting link is required for virtual sessions")
	}
	if !in.IsVirtual && strings.TrimSpace(in.Location) == "" {
		return domain.StudySession{}, ValidationError("location is required for in-person sessions")
	}
	group, err := a.GetStudyGroup(in.GroupID)
	if err != nil {
		return domain.StudySession{}, err
	}
	members, err := a.store.ListStudyGroupMembers(group.ID)
	if err != nil {
		return domain.StudySession{}, fmt.Errorf("list members: %w", err)
	}
	isMember := false
	for _, m := range members {
		if m.UserID == user.ID {
			isMember = true
			break
		}
	}
	if !isMember {
		return domain.StudySession{}, ErrNotGroupMember
	}
	session, err := a.store.CreateStudySession(domain.StudySession{
		GroupID:     group.ID,
		CreatedBy:   user.ID,
		Title:       in.Title,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		IsVirtual:   in.IsVirtual,
		Location:    strings.TrimSpace(in.Location),
		MeetingLink: strings.TrimSpace(in.MeetingLink),
	})
	if err != nil {
		return domain.StudySession{}, fmt.Errorf("create session: %w", err)
	}
	a.recordActivity(ctx, user.ID, domain.ActivitySessionScheduled, session.ID, domain.TargetSession, map[string]any{
		"groupId": group.ID,
		"title":   session.Title,
	})
	return session, nil
}

// GroupSessions returns the sessions of an existing group.
func (a *App) GroupSessions(groupID int64) ([]domain.StudySession, error) {
	if _, err := a.GetStudyGroup(groupID); err != nil {
		return nil, err
	}
	return a.store.ListStudySessions(store.SessionFilter{GroupID: &groupID})
}

// UpcomingSessions returns future sessions across the user's groups,
// soonest first.
func (a *App) UpcomingSessions(userID int64) ([]domain.StudySession, error) {
	return a.store.UpcomingStudySessions(userID, time.Now().UTC())
}
