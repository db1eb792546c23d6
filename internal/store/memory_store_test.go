package store

import (
	"testing"
	"time"

	"studyhub/pkg/domain"
)

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func TestCreateUserAssignsMonotonicIDs(t *testing.T) {
	s := NewMemoryStore()
	var last int64
	for i := 0; i < 5; i++ {
		u, err := s.CreateUser(domain.User{Username: "user", Email: "u@example.com"})
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		if u.ID <= last {
			t.Fatalf("id %d not greater than previous %d", u.ID, last)
		}
		if u.CreatedAt.IsZero() {
			t.Fatalf("createdAt not set")
		}
		last = u.ID
	}
}

func TestGetUserMissingIDReportsAbsence(t *testing.T) {
	s := NewMemoryStore()
	if _, ok, err := s.GetUser(42); err != nil || ok {
		t.Fatalf("GetUser(42) = ok=%v err=%v, want absent with nil error", ok, err)
	}
}

func TestGetUserByUsernameIgnoresCase(t *testing.T) {
	s := NewMemoryStore()
	created, err := s.CreateUser(domain.User{Username: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, ok, err := s.GetUserByUsername("alice")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if got.ID != created.ID {
		t.Fatalf("got id %d, want %d", got.ID, created.ID)
	}
}

func TestAddUserPointsAccumulates(t *testing.T) {
	s := NewMemoryStore()
	u, _ := s.CreateUser(domain.User{Username: "bob", Email: "bob@example.com"})

	updated, ok, err := s.AddUserPoints(u.ID, 10)
	if err != nil || !ok {
		t.Fatalf("add points: ok=%v err=%v", ok, err)
	}
	if updated.Points != 10 {
		t.Fatalf("points = %d, want 10", updated.Points)
	}
	updated, _, _ = s.AddUserPoints(u.ID, 5)
	if updated.Points != 15 {
		t.Fatalf("points = %d, want 15", updated.Points)
	}

	if _, ok, err := s.AddUserPoints(999, 10); err != nil || ok {
		t.Fatalf("missing user: ok=%v err=%v, want absent with nil error", ok, err)
	}
}

func TestListPapersPreservesInsertionOrderAndFilters(t *testing.T) {
	s := NewMemoryStore()
	courses := []string{"CS101", "MATH201", "CS101"}
	years := []int{2023, 2023, 2024}
	for i := range courses {
		if _, err := s.CreatePaper(domain.Paper{
			UploaderID:  1,
			Course:      courses[i],
			Year:        years[i],
			Institution: "MIT",
		}); err != nil {
			t.Fatalf("create paper: %v", err)
		}
	}

	all, err := s.ListPapers(PaperFilter{})
	if err != nil {
		t.Fatalf("list papers: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d papers, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Fatalf("papers out of insertion order: %d before %d", all[i-1].ID, all[i].ID)
		}
	}

	cs, err := s.ListPapers(PaperFilter{Course: strp("CS101")})
	if err != nil {
		t.Fatalf("filter by course: %v", err)
	}
	if len(cs) != 2 {
		t.Fatalf("course filter got %d, want 2", len(cs))
	}

	// Combined filters intersect.
	both, err := s.ListPapers(PaperFilter{Course: strp("CS101"), Year: intp(2024)})
	if err != nil {
		t.Fatalf("combined filter: %v", err)
	}
	if len(both) != 1 || both[0].Year != 2024 {
		t.Fatalf("combined filter got %+v, want single 2024 paper", both)
	}

	none, err := s.ListPapers(PaperFilter{Course: strp("BIO110")})
	if err != nil {
		t.Fatalf("empty filter: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("got %d papers for unknown course, want 0", len(none))
	}
}

func TestIncrementPaperDownloads(t *testing.T) {
	s := NewMemoryStore()
	p, _ := s.CreatePaper(domain.Paper{UploaderID: 1, Course: "CS101", Year: 2024})

	for i := 0; i < 3; i++ {
		if _, ok, err := s.IncrementPaperDownloads(p.ID); err != nil || !ok {
			t.Fatalf("increment %d: ok=%v err=%v", i, ok, err)
		}
	}
	got, _, _ := s.GetPaper(p.ID)
	if got.Downloads != 3 {
		t.Fatalf("downloads = %d, want 3", got.Downloads)
	}

	if _, ok, err := s.IncrementPaperDownloads(999); err != nil || ok {
		t.Fatalf("missing paper: ok=%v err=%v, want absent with nil error", ok, err)
	}
	got, _, _ = s.GetPaper(p.ID)
	if got.Downloads != 3 {
		t.Fatalf("downloads changed to %d after missing-id increment", got.Downloads)
	}
}

func TestVotePostIsUnbounded(t *testing.T) {
	s := NewMemoryStore()
	p, _ := s.CreatePost(domain.DiscussionPost{AuthorID: 1, Title: "t", Content: "c"})

	for i := 0; i < 3; i++ {
		if _, ok, err := s.VotePost(p.ID, 1); err != nil || !ok {
			t.Fatalf("upvote: ok=%v err=%v", ok, err)
		}
	}
	got, _, _ := s.GetPost(p.ID)
	if got.Votes != 3 {
		t.Fatalf("votes = %d, want 3", got.Votes)
	}

	for i := 0; i < 5; i++ {
		s.VotePost(p.ID, -1)
	}
	got, _, _ = s.GetPost(p.ID)
	if got.Votes != -2 {
		t.Fatalf("votes = %d, want -2 (no floor)", got.Votes)
	}
}

func TestPostTagsAreCopiedOnRead(t *testing.T) {
	s := NewMemoryStore()
	tags := []string{"exam", "algorithms"}
	p, _ := s.CreatePost(domain.DiscussionPost{AuthorID: 1, Title: "t", Content: "c", Tags: tags})

	tags[0] = "mutated"
	got, _, _ := s.GetPost(p.ID)
	if got.Tags[0] != "exam" {
		t.Fatalf("store tags aliased caller slice: %v", got.Tags)
	}

	got.Tags[1] = "mutated"
	again, _, _ := s.GetPost(p.ID)
	if again.Tags[1] != "algorithms" {
		t.Fatalf("returned tags aliased store slice: %v", again.Tags)
	}
}

func TestListRepliesFiltersByPost(t *testing.T) {
	s := NewMemoryStore()
	post1, _ := s.CreatePost(domain.DiscussionPost{AuthorID: 1, Title: "a", Content: "c"})
	post2, _ := s.CreatePost(domain.DiscussionPost{AuthorID: 1, Title: "b", Content: "c"})
	s.CreateReply(domain.DiscussionReply{PostID: post1.ID, AuthorID: 2, Content: "r1"})
	s.CreateReply(domain.DiscussionReply{PostID: post2.ID, AuthorID: 2, Content: "r2"})
	s.CreateReply(domain.DiscussionReply{PostID: post1.ID, AuthorID: 3, Content: "r3"})

	replies, err := s.ListReplies(ReplyFilter{PostID: int64p(post1.ID)})
	if err != nil {
		t.Fatalf("list replies: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
	if replies[0].Content != "r1" || replies[1].Content != "r3" {
		t.Fatalf("replies out of order: %+v", replies)
	}
}

func TestRemoveStudyGroupMember(t *testing.T) {
	s := NewMemoryStore()
	g, _ := s.CreateStudyGroup(domain.StudyGroup{CreatorID: 1, Name: "g", Course: "CS101"})
	s.AddStudyGroupMember(domain.StudyGroupMember{GroupID: g.ID, UserID: 1, IsAdmin: true})
	s.AddStudyGroupMember(domain.StudyGroupMember{GroupID: g.ID, UserID: 2})

	removed, err := s.RemoveStudyGroupMember(g.ID, 2)
	if err != nil || !removed {
		t.Fatalf("remove member: removed=%v err=%v", removed, err)
	}
	members, _ := s.ListStudyGroupMembers(g.ID)
	if len(members) != 1 || members[0].UserID != 1 {
		t.Fatalf("members after removal: %+v", members)
	}

	removed, err = s.RemoveStudyGroupMember(g.ID, 2)
	if err != nil || removed {
		t.Fatalf("second removal: removed=%v err=%v, want false with nil error", removed, err)
	}
}

func TestStudyGroupsForUser(t *testing.T) {
	s := NewMemoryStore()
	g1, _ := s.CreateStudyGroup(domain.StudyGroup{CreatorID: 1, Name: "g1"})
	g2, _ := s.CreateStudyGroup(domain.StudyGroup{CreatorID: 2, Name: "g2"})
	s.CreateStudyGroup(domain.StudyGroup{CreatorID: 3, Name: "g3"})
	s.AddStudyGroupMember(domain.StudyGroupMember{GroupID: g1.ID, UserID: 7})
	s.AddStudyGroupMember(domain.StudyGroupMember{GroupID: g2.ID, UserID: 7})

	groups, err := s.StudyGroupsForUser(7)
	if err != nil {
		t.Fatalf("groups for user: %v", err)
	}
	if len(groups) != 2 || groups[0].ID != g1.ID || groups[1].ID != g2.ID {
		t.Fatalf("got %+v, want g1 then g2", groups)
	}
}

func TestUpcomingStudySessionsSortedAndFuture(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	g, _ := s.CreateStudyGroup(domain.StudyGroup{CreatorID: 1, Name: "g"})
	other, _ := s.CreateStudyGroup(domain.StudyGroup{CreatorID: 2, Name: "other"})
	s.AddStudyGroupMember(domain.StudyGroupMember{GroupID: g.ID, UserID: 5})

	s.CreateStudySession(domain.StudySession{GroupID: g.ID, CreatedBy: 1, Title: "past", StartTime: now.Add(-time.Hour), EndTime: now})
	s.CreateStudySession(domain.StudySession{GroupID: g.ID, CreatedBy: 1, Title: "later", StartTime: now.Add(3 * time.Hour), EndTime: now.Add(4 * time.Hour)})
	s.CreateStudySession(domain.StudySession{GroupID: g.ID, CreatedBy: 1, Title: "soon", StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)})
	// Session in a group the user is not a member of.
	s.CreateStudySession(domain.StudySession{GroupID: other.ID, CreatedBy: 2, Title: "elsewhere", StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)})

	upcoming, err := s.UpcomingStudySessions(5, now)
	if err != nil {
		t.Fatalf("upcoming sessions: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("got %d sessions, want 2", len(upcoming))
	}
	if upcoming[0].Title != "soon" || upcoming[1].Title != "later" {
		t.Fatalf("sessions not sorted by start time: %+v", upcoming)
	}
}

func TestListActivitiesNewestFirstWithLimit(t *testing.T) {
	s := NewMemoryStore()
	for i := 0; i < 5; i++ {
		if _, err := s.LogActivity(domain.Activity{
			UserID:     1,
			Type:       domain.ActivityPostCreated,
			TargetID:   int64(i + 1),
			TargetType: domain.TargetPost,
		}); err != nil {
			t.Fatalf("log activity: %v", err)
		}
	}
	s.LogActivity(domain.Activity{UserID: 2, Type: domain.ActivityGroupCreated, TargetID: 1, TargetType: domain.TargetGroup})

	feed, err := s.ListActivities(ActivityFilter{Limit: 3})
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("got %d entries, want 3", len(feed))
	}
	if feed[0].UserID != 2 {
		t.Fatalf("feed[0] = %+v, want most recent entry first", feed[0])
	}
	for i := 1; i < len(feed); i++ {
		if feed[i].ID >= feed[i-1].ID {
			t.Fatalf("feed not descending: %d then %d", feed[i-1].ID, feed[i].ID)
		}
	}

	mine, err := s.ListActivities(ActivityFilter{UserID: int64p(1)})
	if err != nil {
		t.Fatalf("filter by user: %v", err)
	}
	if len(mine) != 5 {
		t.Fatalf("got %d entries for user 1, want 5", len(mine))
	}
}

func TestActivityMetadataCopiedOnRead(t *testing.T) {
	s := NewMemoryStore()
	meta := map[string]any{"course": "CS101"}
	s.LogActivity(domain.Activity{UserID: 1, Type: domain.ActivityPaperUploaded, TargetID: 1, TargetType: domain.TargetPaper, Metadata: meta})

	meta["course"] = "mutated"
	feed, _ := s.ListActivities(ActivityFilter{})
	if feed[0].Metadata["course"] != "CS101" {
		t.Fatalf("metadata aliased caller map: %v", feed[0].Metadata)
	}

	feed[0].Metadata["course"] = "mutated"
	again, _ := s.ListActivities(ActivityFilter{})
	if again[0].Metadata["course"] != "CS101" {
		t.Fatalf("metadata aliased store map: %v", again[0].Metadata)
	}
}
