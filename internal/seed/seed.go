// Package seed loads the demo catalog: two accounts, three courses and the
// starter badges. It goes through the service so XP, levels and ids stay consistent.
package seed

import (
	"context"
	"fmt"

	"skillnest/internal/app"
	"skillnest/internal/domain"
	"skillnest/internal/logger"
)

type sampleUser struct {
	input app.RegisterInput
	xp    int
}

var users = []sampleUser{
	{
		input: app.RegisterInput{
			Username: "john.doe", Email: "john.doe@company.com", Password: "password123",
			Role:     domain.RoleLearner, FirstName: "John", LastName: "Doe", Department: "Product Team",
		},
		xp: 1850,
	},
	{
		input: app.RegisterInput{
			Username: "admin", Email: "admin@skillnest.com", Password: "admin123",
			Role:     domain.RoleAdmin, FirstName: "Admin", LastName: "User", Department: "Administration",
		},
		xp: 5000,
	},
}

// Run seeds an empty repository. It is a no-op once any user exists.
func Run(ctx context.Context, svc *app.Service, repo app.Repository, log *logger.Logger) error {
	existing, err := repo.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Debug("seed skipped, repository not empty", "users", len(existing))
		return nil
	}

	created := make([]domain.User, 0, len(users))
	for _, u := range users {
		user, err := svc.Register(ctx, u.input)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.input.Username, err)
		}
		created = append(created, user)
	}
	learner, admin := created[0], created[1]

	courses := make([]domain.Course, 0, 3)
	for _, c := range Courses(admin.ID) {
		course, err := svc.CreateCourse(ctx, c)
		if err != nil {
			return fmt.Errorf("seed course %q: %w", c.Title, err)
		}
		courses = append(courses, course)
	}

	for _, b := range Badges() {
		if _, err := svc.CreateBadge(ctx, b); err != nil {
			return fmt.Errorf("seed badge %q: %w", b.Name, err)
		}
	}

	// John is halfway through the first course and just started the second.
	first, err := svc.Enroll(ctx, learner.ID, courses[0].ID)
	if err != nil {
		return err
	}
	if _, err := svc.CompleteModule(ctx, first.ID, "module-1", nil); err != nil {
		return err
	}
	if _, err := svc.Enroll(ctx, learner.ID, courses[1].ID); err != nil {
		return err
	}

	// Demo XP totals are set last so they are not shifted by the rewards above.
	for i, u := range users {
		user, err := repo.GetUser(ctx, created[i].ID)
		if err != nil {
			return err
		}
		user.SetXP(u.xp)
		if err := repo.UpdateUser(ctx, user); err != nil {
			return err
		}
	}

	log.Info("seed data loaded", "users", len(created), "courses", len(courses))
	return nil
}

// Courses returns the demo catalog authored by authorID.
func Courses(authorID int64) []domain.Course {
	return []domain.Course{
		{
			Title:       "Leadership Fundamentals",
			Description: "Learn essential leadership skills to inspire and motivate your team effectively.",
			Category:    "Leadership",
			Level:       domain.CourseBeginner,
			Duration:    "4h 30m",
			Thumbnail:   "https://images.unsplash.com/photo-1552581234-26160f608093?auto=format&fit=crop&w=400&h=250",
			AuthorID:    authorID,
			Modules: []domain.Module{
				{ID: "module-1", Type: domain.ModuleVideo, Title: "Introduction to Leadership",
					Content: domain.VideoContent{URL: "https://example.com/video1", Duration: "36:20"}},
				{ID: "module-2", Type: domain.ModuleQuiz, Title: "Leadership Knowledge Check",
					Content: domain.QuizContent{Questions: []domain.Question{{
						ID:            "q1",
						Prompt:        "What is the most important quality of a good leader?",
						Type:          "multiple-choice",
						Options:       []string{"Intelligence", "Emotional intelligence", "Technical skills", "Years of experience"},
						CorrectAnswer: 1,
					}}}},
			},
			Tags:        []string{"leadership", "management", "soft-skills"},
			IsPublished: true,
		},
		{
			Title:       "Project Management Essentials",
			Description: "Master the fundamentals of project planning, execution, and delivery.",
			Category:    "Project Management",
			Level:       domain.CourseIntermediate,
			Duration:    "6h 15m",
			Thumbnail:   "https://images.unsplash.com/photo-1454165804606-c3d57bc86b40?auto=format&fit=crop&w=400&h=250",
			AuthorID:    authorID,
			Modules: []domain.Module{
				{ID: "module-1", Type: domain.ModuleText, Title: "Scoping a Project",
					Content: domain.TextContent{Body: "A project starts with a clear goal, a scope and a list of stakeholders."}},
				{ID: "module-2", Type: domain.ModuleVideo, Title: "Planning and Estimation",
					Content: domain.VideoContent{URL: "https://example.com/video2", Duration: "42:10"}},
				{ID: "module-3", Type: domain.ModuleQuiz, Title: "Planning Check",
					Content: domain.QuizContent{Questions: []domain.Question{{
						ID:            "q1",
						Prompt:        "Which artifact lists the work needed to deliver the project?",
						Type:          "multiple-choice",
						Options:       []string{"Risk register", "Work breakdown structure", "Status report"},
						CorrectAnswer: 1,
					}}}},
			},
			Tags:        []string{"project-management", "planning", "execution"},
			IsPublished: true,
		},
		{
			Title:       "Effective Communication",
			Description: "Develop powerful communication skills for professional success.",
			Category:    "Communication",
			Level:       domain.CourseBeginner,
			Duration:    "3h 45m",
			Thumbnail:   "https://images.unsplash.com/photo-1560472354-b33ff0c44a43?auto=format&fit=crop&w=400&h=250",
			AuthorID:    authorID,
			Modules: []domain.Module{
				{ID: "module-1", Type: domain.ModuleText, Title: "Active Listening",
					Content: domain.TextContent{Body: "Listen to understand, not to reply."}},
				{ID: "module-2", Type: domain.ModuleText, Title: "Giving Feedback",
					Content: domain.TextContent{Body: "Be specific, timely and kind."}},
			},
			Tags:        []string{"communication", "presentation", "soft-skills"},
			IsPublished: true,
		},
	}
}

// Badges returns the starter badge catalog.
func Badges() []domain.Badge {
	return []domain.Badge{
		{
			Name:        "First Course",
			Description: "Complete your first course",
			Icon:        "fas fa-graduation-cap",
			Type:        domain.BadgeCourse,
			Requirement: domain.CourseCountRequirement{CourseCount: 1},
			XPReward:    100,
		},
		{
			Name:        "Quick Learner",
			Description: "Complete a course in under 24 hours",
			Icon:        "fas fa-brain",
			Type:        domain.BadgeStreak,
			Requirement: domain.CompletionTimeRequirement{TimeLimit: 24},
			XPReward:    200,
		},
	}
}
