package app

import (
	"fmt"

	"studyhub/internal/store"
	"studyhub/pkg/domain"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200
)

// RecentActivity returns the newest activity entries across all users.
func (a *App) RecentActivity(limit int) ([]domain.Activity, error) {
	entries, err := a.store.ListActivities(store.ActivityFilter{Limit: clampFeedLimit(limit)})
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return entries, nil
}

// UserActivity returns the newest activity entries for one user.
func (a *App) UserActivity(userID int64, limit int) ([]domain.Activity, error) {
	entries, err := a.store.ListActivities(store.ActivityFilter{
		UserID: &userID,
		Limit:  clampFeedLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return entries, nil
}

func clampFeedLimit(limit int) int {
	if limit <= 0 {
		return defaultFeedLimit
	}
	if limit > maxFeedLimit {
		return maxFeedLimit
	}
	return limit
}
