package app

import (
	"context"
	"fmt"
	"strings"

	"studyhub/internal/store"
	"studyhub/pkg/domain"
)

// CreatePost publishes a new discussion post and awards points.
func (a *App) CreatePost(ctx context.Context, author domain.User, title, content string, tags []string) (domain.DiscussionPost, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return domain.DiscussionPost{}, ValidationError("title and content are required")
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	post, err := a.store.CreatePost(domain.DiscussionPost{
		AuthorID: author.ID,
		Title:    title,
		Content:  content,
		Tags:     cleaned,
	})
	if err != nil {
		return domain.DiscussionPost{}, fmt.Errorf("create post: %w", err)
	}
	if _, _, err := a.store.AddUserPoints(author.ID, pointsPostCreated); err != nil {
		return domain.DiscussionPost{}, fmt.Errorf("award points: %w", err)
	}
	a.recordActivity(ctx, author.ID, domain.ActivityPostCreated, post.ID, domain.TargetPost, map[string]any{
		"title": post.Title,
	})
	return post, nil
}

// ListPosts returns posts matching the filter; a non-empty query scans
// title, content, and tags for a case-insensitive substring match.
func (a *App) ListPosts(f store.PostFilter, query string) ([]domain.DiscussionPost, error) {
	posts, err := a.store.ListPosts(f)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return posts, nil
	}
	q := strings.ToLower(query)
	matched := posts[:0]
	for _, p := range posts {
		if postMatches(p, q) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func postMatches(p domain.DiscussionPost, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Content), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(tag, q) {
			return true
		}
	}
	return false
}

// GetPost returns a post and its replies.
func (a *App) GetPost(id int64) (domain.DiscussionPost, []domain.DiscussionReply, error) {
	post, ok, err := a.store.GetPost(id)
	if err != nil {
		return domain.DiscussionPost{}, nil, fmt.Errorf("fetch post: %w", err)
	}
	if !ok {
		return domain.DiscussionPost{}, nil, ErrPostNotFound
	}
	replies, err := a.store.ListReplies(store.ReplyFilter{PostID: &id})
	if err != nil {
		return domain.DiscussionPost{}, nil, fmt.Errorf("list replies: %w", err)
	}
	return post, replies, nil
}

// CreateReply adds a reply to an existing post.
func (a *App) CreateReply(ctx context.Context, author domain.User, postID int64, content string) (domain.DiscussionReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.DiscussionReply{}, ValidationError("content is required")
	}
	if _, ok, err := a.store.GetPost(postID); err != nil {
		return domain.DiscussionReply{}, fmt.Errorf("fetch post: %w", err)
	} else if !ok {
		return domain.DiscussionReply{}, ErrPostNotFound
	}
	reply, err := a.store.CreateReply(domain.DiscussionReply{
		PostID:   postID,
		AuthorID: author.ID,
		Content:  content,
	})
	if err != nil {
		return domain.DiscussionReply{}, fmt.Errorf("create reply: %w", err)
	}
	if _, _, err := a.store.AddUserPoints(author.ID, pointsReply); err != nil {
		return domain.DiscussionReply{}, fmt.Errorf("award points: %w", err)
	}
	a.recordActivity(ctx, author.ID, domain.ActivityReplyCreated, reply.ID, domain.TargetReply, map[string]any{
		"postId": postID,
	})
	return reply, nil
}

// VotePost applies a +1 or -1 vote to a post. Repeat votes by the same
// user are not deduplicated.
func (a *App) VotePost(id int64, delta int) (domain.DiscussionPost, error) {
	if delta != 1 && delta != -1 {
		return domain.DiscussionPost{}, ErrInvalidVote
	}
	post, ok, err := a.store.VotePost(id, delta)
	if err != nil {
		return domain.DiscussionPost{}, fmt.Errorf("vote post: %w", err)
	}
	if !ok {
		return domain.DiscussionPost{}, ErrPostNotFound
	}
	return post, nil
}

// VoteReply applies a +1 or -1 vote to a reply.
func (a *App) VoteReply(id int64, delta int) (domain.DiscussionReply, error) {
	if delta != 1 && delta != -1 {
		return domain.DiscussionReply{}, ErrInvalidVote
	}
	reply, ok, err := a.store.VoteReply(id, delta)
	if err != nil {
		return domain.DiscussionReply{}, fmt.Errorf("vote reply: %w", err)
	}
	if !ok {
		return domain.DiscussionReply{}, ErrReplyNotFound
	}
	return reply, nil
}
