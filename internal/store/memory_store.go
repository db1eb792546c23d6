package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"studyhub/pkg/domain"
)

// MemoryStore keeps all entities in-process behind one coarse mutex.
//
// Each entity type has its own map keyed by id, an insertion-order slice,
// and a monotonically increasing id counter. Identifiers are never reused,
// even after a row is removed. Callers always receive copies of stored
// values, so mutation only happens through explicit store operations.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[int64]domain.User
	userOrder []int64
	nextUser  int64

	papers     map[int64]domain.Paper
	paperOrder []int64
	nextPaper  int64

	posts     map[int64]domain.DiscussionPost
	postOrder []int64
	nextPost  int64

	replies    map[int64]domain.DiscussionReply
	replyOrder []int64
	nextReply  int64

	groups     map[int64]domain.StudyGroup
	groupOrder []int64
	nextGroup  int64

	members     map[int64]domain.StudyGroupMember
	memberOrder []int64
	nextMember  int64

	sessions     map[int64]domain.StudySession
	sessionOrder []int64
	nextSession  int64

	activities    map[int64]domain.Activity
	activityOrder []int64
	nextActivity  int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]domain.User),
		papers:     make(map[int64]domain.Paper),
		posts:      make(map[int64]domain.DiscussionPost),
		replies:    make(map[int64]domain.DiscussionReply),
		groups:     make(map[int64]domain.StudyGroup),
		members:    make(map[int64]domain.StudyGroupMember),
		sessions:   make(map[int64]domain.StudySession),
		activities: make(map[int64]domain.Activity),
	}
}

// CreateUser assigns an id and creation time and stores the user.
func (m *MemoryStore) CreateUser(u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUser++
	u.ID = m.nextUser
	u.CreatedAt = time.Now().UTC()
	m.users[u.ID] = u
	m.userOrder = append(m.userOrder, u.ID)
	return u, nil
}

// GetUser returns a user by id.
func (m *MemoryStore) GetUser(id int64) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByUsername looks up a user by username, case-insensitively.
func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok && strings.EqualFold(u.Username, username) {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

// GetUserByEmail looks up a user by email, case-insensitively.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok && strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

// ListUsers returns all users in creation order.
func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

// AddUserPoints adjusts a user's points balance.
func (m *MemoryStore) AddUserPoints(id int64, delta int) (domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, false, nil
	}
	u.Points += delta
	m.users[id] = u
	return u, true, nil
}

// CreatePaper assigns an id and creation time and stores the paper.
func (m *MemoryStore) CreatePaper(p domain.Paper) (domain.Paper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPaper++
	p.ID = m.nextPaper
	p.CreatedAt = time.Now().UTC()
	m.papers[p.ID] = p
	m.paperOrder = append(m.paperOrder, p.ID)
	return p, nil
}

// GetPaper retrieves a paper by id.
func (m *MemoryStore) GetPaper(id int64) (domain.Paper, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.papers[id]
	return p, ok, nil
}

// ListPapers returns papers matching every set filter field.
func (m *MemoryStore) ListPapers(f PaperFilter) ([]domain.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Paper, 0, len(m.paperOrder))
	for _, id := range m.paperOrder {
		p, ok := m.papers[id]
		if !ok {
			continue
		}
		if f.UploaderID != nil && p.UploaderID != *f.UploaderID {
			continue
		}
		if f.Course != nil && p.Course != *f.Course {
			continue
		}
		if f.Year != nil && p.Year != *f.Year {
			continue
		}
		if f.Institution != nil && p.Institution != *f.Institution {
			continue
		}
		res = append(res, p)
	}
	return res, nil
}

// IncrementPaperDownloads bumps the download counter by one.
func (m *MemoryStore) IncrementPaperDownloads(id int64) (domain.Paper, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.papers[id]
	if !ok {
		return domain.Paper{}, false, nil
	}
	p.Downloads++
	m.papers[id] = p
	return p, true, nil
}

// CreatePost assigns an id and creation time and stores the post.
func (m *MemoryStore) CreatePost(p domain.DiscussionPost) (domain.DiscussionPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPost++
	p.ID = m.nextPost
	p.CreatedAt = time.Now().UTC()
	p.Tags = append([]string(nil), p.Tags...)
	m.posts[p.ID] = p
	m.postOrder = append(m.postOrder, p.ID)
	return p, nil
}

// GetPost retrieves a post by id.
func (m *MemoryStore) GetPost(id int64) (domain.DiscussionPost, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	if ok {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p, ok, nil
}

// ListPosts returns posts matching the filter in creation order.
func (m *MemoryStore) ListPosts(f PostFilter) ([]domain.DiscussionPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.DiscussionPost, 0, len(m.postOrder))
	for _, id := range m.postOrder {
		p, ok := m.posts[id]
		if !ok {
			continue
		}
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		p.Tags = append([]string(nil), p.Tags...)
		res = append(res, p)
	}
	return res, nil
}

// VotePost adds delta to the post's vote counter. Votes are unbounded and
// may go negative.
func (m *MemoryStore) VotePost(id int64, delta int) (domain.DiscussionPost, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return domain.DiscussionPost{}, false, nil
	}
	p.Votes += delta
	m.posts[id] = p
	p.Tags = append([]string(nil), p.Tags...)
	return p, true, nil
}

// CreateReply assigns an id and creation time and stores the reply.
func (m *MemoryStore) CreateReply(r domain.DiscussionReply) (domain.DiscussionReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextReply++
	r.ID = m.nextReply
	r.CreatedAt = time.Now().UTC()
	m.replies[r.ID] = r
	m.replyOrder = append(m.replyOrder, r.ID)
	return r, nil
}

// GetReply retrieves a reply by id.
func (m *MemoryStore) GetReply(id int64) (domain.DiscussionReply, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.replies[id]
	return r, ok, nil
}

// ListReplies returns replies matching the filter in creation order.
func (m *MemoryStore) ListReplies(f ReplyFilter) ([]domain.DiscussionReply, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.DiscussionReply, 0, len(m.replyOrder))
	for _, id := range m.replyOrder {
		r, ok := m.replies[id]
		if !ok {
			continue
		}
		if f.PostID != nil && r.PostID != *f.PostID {
			continue
		}
		if f.AuthorID != nil && r.AuthorID != *f.AuthorID {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

// VoteReply adds delta to the reply's vote counter.
func (m *MemoryStore) VoteReply(id int64, delta int) (domain.DiscussionReply, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.replies[id]
	if !ok {
		return domain.DiscussionReply{}, false, nil
	}
	r.Votes += delta
	m.replies[id] = r
	return r, true, nil
}

// CreateStudyGroup assigns an id and creation time and stores the group.
// Adding the creator as the first admin member is the caller's job.
func (m *MemoryStore) CreateStudyGroup(g domain.StudyGroup) (domain.StudyGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGroup++
	g.ID = m.nextGroup
	g.CreatedAt = time.Now().UTC()
	m.groups[g.ID] = g
	m.groupOrder = append(m.groupOrder, g.ID)
	return g, nil
}

// GetStudyGroup retrieves a group by id.
func (m *MemoryStore) GetStudyGroup(id int64) (domain.StudyGroup, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	return g, ok, nil
}

// ListStudyGroups returns groups matching the filter in creation order.
func (m *MemoryStore) ListStudyGroups(f GroupFilter) ([]domain.StudyGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.StudyGroup, 0, len(m.groupOrder))
	for _, id := range m.groupOrder {
		g, ok := m.groups[id]
		if !ok {
			continue
		}
		if f.CreatorID != nil && g.CreatorID != *f.CreatorID {
			continue
		}
		if f.Course != nil && g.Course != *f.Course {
			continue
		}
		res = append(res, g)
	}
	return res, nil
}

// AddStudyGroupMember records a membership row. Duplicate (group, user)
// pairs are not rejected here; uniqueness is a caller pre-check.
func (m *MemoryStore) AddStudyGroupMember(mem domain.StudyGroupMember) (domain.StudyGroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMember++
	mem.ID = m.nextMember
	if mem.JoinedAt.IsZero() {
		mem.JoinedAt = time.Now().UTC()
	}
	m.members[mem.ID] = mem
	m.memberOrder = append(m.memberOrder, mem.ID)
	return mem, nil
}

// ListStudyGroupMembers returns membership rows for a group in join order.
func (m *MemoryStore) ListStudyGroupMembers(groupID int64) ([]domain.StudyGroupMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.StudyGroupMember, 0, 8)
	for _, id := range m.memberOrder {
		if mem, ok := m.members[id]; ok && mem.GroupID == groupID {
			res = append(res, mem)
		}
	}
	return res, nil
}

// RemoveStudyGroupMember deletes the membership row matching (groupID,
// userID). It removes at most one row and reports whether one was found.
func (m *MemoryStore) RemoveStudyGroupMember(groupID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range m.memberOrder {
		mem, ok := m.members[id]
		if !ok || mem.GroupID != groupID || mem.UserID != userID {
			continue
		}
		delete(m.members, id)
		m.memberOrder = append(m.memberOrder[:i], m.memberOrder[i+1:]...)
		return true, nil
	}
	return false, nil
}

// StudyGroupsForUser returns the groups the user is a member of, in group
// creation order.
func (m *MemoryStore) StudyGroupsForUser(userID int64) ([]domain.StudyGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	groupIDs := make(map[int64]struct{})
	for _, id := range m.memberOrder {
		if mem, ok := m.members[id]; ok && mem.UserID == userID {
			groupIDs[mem.GroupID] = struct{}{}
		}
	}
	res := make([]domain.StudyGroup, 0, len(groupIDs))
	for _, id := range m.groupOrder {
		if _, member := groupIDs[id]; !member {
			continue
		}
		if g, ok := m.groups[id]; ok {
			res = append(res, g)
		}
	}
	return res, nil
}

// CreateStudySession assigns an id and creation time and stores the session.
func (m *MemoryStore) CreateStudySession(s domain.StudySession) (domain.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSession++
	s.ID = m.nextSession
	s.CreatedAt = time.Now().UTC()
	m.sessions[s.ID] = s
	m.sessionOrder = append(m.sessionOrder, s.ID)
	return s, nil
}

// GetStudySession retrieves a session by id.
func (m *MemoryStore) GetStudySession(id int64) (domain.StudySession, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok, nil
}

// ListStudySessions returns sessions matching the filter in creation order.
func (m *MemoryStore) ListStudySessions(f SessionFilter) ([]domain.StudySession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.StudySession, 0, len(m.sessionOrder))
	for _, id := range m.sessionOrder {
		s, ok := m.sessions[id]
		if !ok {
			continue
		}
		if f.GroupID != nil && s.GroupID != *f.GroupID {
			continue
		}
		if f.CreatedBy != nil && s.CreatedBy != *f.CreatedBy {
			continue
		}
		res = append(res, s)
	}
	return res, nil
}

// UpcomingStudySessions returns sessions of the user's groups that start
// strictly after now, sorted ascending by start time.
func (m *MemoryStore) UpcomingStudySessions(userID int64, now time.Time) ([]domain.StudySession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	groupIDs := make(map[int64]struct{})
	for _, id := range m.memberOrder {
		if mem, ok := m.members[id]; ok && mem.UserID == userID {
			groupIDs[mem.GroupID] = struct{}{}
		}
	}
	res := make([]domain.StudySession, 0, 8)
	for _, id := range m.sessionOrder {
		s, ok := m.sessions[id]
		if !ok {
			continue
		}
		if _, member := groupIDs[s.GroupID]; !member {
			continue
		}
		if !s.StartTime.After(now) {
			continue
		}
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].StartTime.Before(res[j].StartTime)
	})
	return res, nil
}

// LogActivity appends an activity record. Activities are never mutated or
// deleted afterwards.
func (m *MemoryStore) LogActivity(a domain.Activity) (domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextActivity++
	a.ID = m.nextActivity
	a.CreatedAt = time.Now().UTC()
	a.Metadata = copyMetadata(a.Metadata)
	m.activities[a.ID] = a
	m.activityOrder = append(m.activityOrder, a.ID)
	return a, nil
}

// ListActivities returns activity entries newest first, optionally scoped
// to one user and truncated to the filter limit.
func (m *MemoryStore) ListActivities(f ActivityFilter) ([]domain.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Activity, 0, len(m.activityOrder))
	for i := len(m.activityOrder) - 1; i >= 0; i-- {
		a, ok := m.activities[m.activityOrder[i]]
		if !ok {
			continue
		}
		if f.UserID != nil && a.UserID != *f.UserID {
			continue
		}
		a.Metadata = copyMetadata(a.Metadata)
		res = append(res, a)
		if f.Limit > 0 && len(res) == f.Limit {
			break
		}
	}
	return res, nil
}

func copyMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
