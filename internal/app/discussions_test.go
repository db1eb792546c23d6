package app

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"studyhub/internal/store"
)

func TestCreatePostNormalizesTagsAndAwardsPoints(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")

	post, err := a.CreatePost(context.Background(), user, "Dijkstra help", "stuck on relaxation", []string{" Algorithms ", "EXAMS", ""})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if want := []string{"algorithms", "exams"}; !reflect.DeepEqual(post.Tags, want) {
		t.Fatalf("tags = %v, want %v", post.Tags, want)
	}

	updated, _ := a.GetUser(user.ID)
	if updated.Points != 5 {
		t.Fatalf("points = %d, want 5", updated.Points)
	}
}

func TestCreatePostRequiresTitleAndContent(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")

	var vErr ValidationError
	if _, err := a.CreatePost(context.Background(), user, "  ", "content", nil); !errors.As(err, &vErr) {
		t.Fatalf("blank title: err=%v, want ValidationError", err)
	}
}

func TestCreateReplyRequiresExistingPost(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")
	ctx := context.Background()

	if _, err := a.CreateReply(ctx, user, 42, "hello"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("missing post: err=%v, want ErrPostNotFound", err)
	}

	post, err := a.CreatePost(ctx, user, "title", "content", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	reply, err := a.CreateReply(ctx, user, post.ID, "hello")
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if reply.PostID != post.ID {
		t.Fatalf("reply = %+v", reply)
	}

	updated, _ := a.GetUser(user.ID)
	if updated.Points != 5+2 {
		t.Fatalf("points = %d, want 7", updated.Points)
	}
}

func TestGetPostIncludesReplies(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")
	ctx := context.Background()

	post, _ := a.CreatePost(ctx, user, "title", "content", nil)
	a.CreateReply(ctx, user, post.ID, "first")
	a.CreateReply(ctx, user, post.ID, "second")

	got, replies, err := a.GetPost(post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.ID != post.ID {
		t.Fatalf("got post %+v", got)
	}
	if len(replies) != 2 || replies[0].Content != "first" {
		t.Fatalf("replies = %+v", replies)
	}
}

func TestVoteRejectsInvalidDelta(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")
	post, _ := a.CreatePost(context.Background(), user, "title", "content", nil)

	if _, err := a.VotePost(post.ID, 5); !errors.Is(err, ErrInvalidVote) {
		t.Fatalf("delta 5: err=%v, want ErrInvalidVote", err)
	}
	if _, err := a.VotePost(post.ID, 0); !errors.Is(err, ErrInvalidVote) {
		t.Fatalf("delta 0: err=%v, want ErrInvalidVote", err)
	}

	voted, err := a.VotePost(post.ID, 1)
	if err != nil {
		t.Fatalf("upvote: %v", err)
	}
	if voted.Votes != 1 {
		t.Fatalf("votes = %d, want 1", voted.Votes)
	}
	if _, err := a.VotePost(999, 1); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("missing post: err=%v, want ErrPostNotFound", err)
	}
}

func TestListPostsSearchesTags(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")
	ctx := context.Background()

	a.CreatePost(ctx, user, "Graph theory", "adjacency lists", []string{"algorithms"})
	a.CreatePost(ctx, user, "Essay feedback", "thesis statement", []string{"writing"})

	posts, err := a.ListPosts(store.PostFilter{}, "algo")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Graph theory" {
		t.Fatalf("search got %+v", posts)
	}
}
