package app

import (
	"context"
	"errors"

	"skillnest/internal/domain"
)

// UserBadgeView is an award joined with its badge.
type UserBadgeView struct {
	domain.UserBadge
	Badge *domain.Badge `json:"badge"`
}

// applyEvents credits event XP, records newly satisfied badges and adds
// their rewards. Must run inside inLearnerTx, with repo its transaction.
func (s *Service) applyEvents(ctx context.Context, repo Repository, userID int64, events []domain.Event) (Rewards, error) {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return Rewards{}, err
	}
	rewards := Rewards{Badges: []domain.Badge{}, TotalXP: user.TotalXP, Level: user.Level}
	if len(events) == 0 {
		return rewards, nil
	}

	badges, err := repo.ListBadges(ctx)
	if err != nil {
		return Rewards{}, err
	}
	awards, err := repo.ListUserBadges(ctx, userID)
	if err != nil {
		return Rewards{}, err
	}
	earned := make(map[int64]bool, len(awards))
	for _, a := range awards {
		earned[a.BadgeID] = true
	}
	snap, err := snapshot(ctx, repo, userID)
	if err != nil {
		return Rewards{}, err
	}

	engine := NewEngine(badges)
	for _, ev := range events {
		out := engine.Evaluate(ev, snap, earned)
		rewards.XPGained += out.EventXP
		for _, b := range out.Badges {
			err := repo.RunInTx(ctx, func(repo Repository) error {
				_, err := repo.CreateUserBadge(ctx, domain.UserBadge{UserID: userID, BadgeID: b.ID, EarnedAt: s.now()})
				return err
			})
			earned[b.ID] = true
			if errors.Is(err, domain.ErrBadgeAlreadyEarned) {
				continue
			}
			if err != nil {
				return Rewards{}, err
			}
			rewards.XPGained += b.XPReward
			rewards.Badges = append(rewards.Badges, b)
			s.log.Info("badge earned", "userId", userID, "badgeId", b.ID, "badge", b.Name)
		}
	}

	if rewards.XPGained > 0 {
		user.AddXP(rewards.XPGained)
		if err := repo.UpdateUser(ctx, user); err != nil {
			return Rewards{}, err
		}
	}
	rewards.TotalXP, rewards.Level = user.TotalXP, user.Level
	return rewards, nil
}

// snapshot counts completed courses and activities (completed modules
// plus quiz attempts) for badge rules.
func snapshot(ctx context.Context, repo Repository, userID int64) (domain.Snapshot, error) {
	enrollments, err := repo.ListEnrollments(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	attempts, err := repo.ListQuizAttempts(ctx, userID, 0)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap := domain.Snapshot{Activities: len(attempts)}
	for _, e := range enrollments {
		if e.Progress == 100 {
			snap.CompletedCourses++
		}
		snap.Activities += len(e.CompletedModules)
	}
	return snap, nil
}

// ListBadges returns the badge catalog.
func (s *Service) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	return s.repo.ListBadges(ctx)
}

// CreateBadge validates and adds a badge to the catalog.
func (s *Service) CreateBadge(ctx context.Context, badge domain.Badge) (domain.Badge, error) {
	if err := badge.Validate(); err != nil {
		return domain.Badge{}, err
	}
	return s.repo.CreateBadge(ctx, badge)
}

// ListUserBadges returns the badges a user earned, with badge details.
func (s *Service) ListUserBadges(ctx context.Context, userID int64) ([]UserBadgeView, error) {
	awards, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.repo.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Badge, len(badges))
	for _, b := range badges {
		byID[b.ID] = b
	}
	views := make([]UserBadgeView, 0, len(awards))
	for _, a := range awards {
		view := UserBadgeView{UserBadge: a}
		if b, ok := byID[a.BadgeID]; ok {
			view.Badge = &b
		}
		views = append(views, view)
	}
	return views, nil
}

// Leaderboard returns the top users by XP. limit <= 0 means the default;
// it is capped at MaxLeaderboardLimit.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]domain.User, error) {
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(users, limit), nil
}

// Stats returns dashboard counters for a user.
func (s *Service) Stats(ctx context.Context, userID int64) (domain.UserStats, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	enrollments, err := s.repo.ListEnrollments(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	certs, err := s.repo.ListCertificates(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	stats := domain.UserStats{
		Certificates:  len(certs),
		TotalXP:       user.TotalXP,
		Level:         user.Level,
		XPToNextLevel: domain.XPToNextLevel(user.TotalXP),
	}
	for _, e := range enrollments {
		switch {
		case e.Progress == 100:
			stats.Completed++
		case e.Progress > 0:
			stats.InProgress++
		}
	}
	return stats, nil
}
