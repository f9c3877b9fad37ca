package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"skillnest/internal/app"
	"skillnest/internal/domain"
	"skillnest/internal/infra/memory"
	"skillnest/internal/logger"
)

func TestLoginHidesPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "john.doe@company.com", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Fatalf("response leaks password: %s", rec.Body)
	}
	var resp struct {
		User domain.User `json:"user"`
	}
	decode(t, rec, &resp)
	if resp.User.Email != "john.doe@company.com" {
		t.Fatalf("unexpected user %+v", resp.User)
	}

	rec = do(t, router, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "john.doe@company.com", "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestEnrollValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/enrollments", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	decode(t, rec, &resp)
	if resp.Errors["userId"] == "" || resp.Errors["courseId"] == "" {
		t.Fatalf("expected field errors for userId and courseId, got %+v", resp.Errors)
	}
}

func TestProgressFlowIssuesCertificate(t *testing.T) {
	router, fx := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/enrollments", map[string]any{"userId": fx.userID, "courseId": fx.courseID})
	if rec.Code != http.StatusOK {
		t.Fatalf("enroll: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var enrollment domain.Enrollment
	decode(t, rec, &enrollment)

	rec = do(t, router, http.MethodPost, "/api/enrollments", map[string]any{"userId": fx.userID, "courseId": fx.courseID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate enroll: expected 400, got %d", rec.Code)
	}

	path := "/api/enrollments/" + itoa(enrollment.ID) + "/progress"
	rec = do(t, router, http.MethodPatch, path, map[string]any{"moduleId": "m1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["progress"] != float64(50) || body["id"] != float64(enrollment.ID) || body["certificate"] != nil {
		t.Fatalf("expected a flat enrollment at 50%% without certificate, got %v", body)
	}
	if _, ok := body["enrollment"]; ok {
		t.Fatalf("enrollment must not be nested: %v", body)
	}
	if _, ok := body["rewards"].(map[string]any); !ok {
		t.Fatalf("expected rewards next to the enrollment, got %v", body)
	}

	rec = do(t, router, http.MethodPatch, path, map[string]any{"completedModules": []string{"m2"}, "score": 90})
	var result app.ProgressResult
	decode(t, rec, &result)
	if result.Progress != 100 || result.Certificate == nil {
		t.Fatalf("expected completion with certificate, got %+v", result)
	}
	if result.Certificate.Score != 90 {
		t.Fatalf("expected certificate score 90, got %d", result.Certificate.Score)
	}

	rec = do(t, router, http.MethodGet, "/api/certificates/"+strings.ToLower(result.Certificate.CertificateID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify certificate: expected 200, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/api/users/"+itoa(fx.userID)+"/stats", nil)
	var stats domain.UserStats
	decode(t, rec, &stats)
	if stats.Completed != 1 || stats.Certificates != 1 || stats.InProgress != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestProgressRejectsUnknownModule(t *testing.T) {
	router, fx := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/enrollments", map[string]any{"userId": fx.userID, "courseId": fx.courseID})
	var enrollment domain.Enrollment
	decode(t, rec, &enrollment)

	rec = do(t, router, http.MethodPatch, "/api/enrollments/"+itoa(enrollment.ID)+"/progress", map[string]any{"moduleId": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a foreign module, got %d", rec.Code)
	}
	rec = do(t, router, http.MethodPatch, "/api/enrollments/999/progress", map[string]any{"moduleId": "m1"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown enrollment, got %d", rec.Code)
	}
}

func TestQuizAttemptIsGradedOnServer(t *testing.T) {
	router, fx := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/quiz-attempts", map[string]any{
		"userId":  fx.userID, "courseId": fx.courseID, "moduleId": "m2",
		"answers": map[string]int{"q1": 1, "q2": 0},
		"score":   100,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["score"] != float64(50) || body["moduleId"] != "m2" {
		t.Fatalf("expected a flat attempt scored 50, got %v", body)
	}
	grade, ok := body["grade"].(map[string]any)
	if !ok || grade["correctCount"] != float64(1) || grade["total"] != float64(2) {
		t.Fatalf("expected grade breakdown next to the attempt, got %v", body)
	}

	rec = do(t, router, http.MethodPost, "/api/quiz-attempts", map[string]any{
		"userId": fx.userID, "courseId": fx.courseID, "moduleId": "m1", "answers": map[string]int{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-quiz module, got %d", rec.Code)
	}
}

func TestGetCourseNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	if rec := do(t, router, http.MethodGet, "/api/courses/404", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/api/courses/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed id, got %d", rec.Code)
	}
}

func TestLeaderboardLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/leaderboard?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var users []domain.User
	decode(t, rec, &users)
	if len(users) != 1 || users[0].Username != "admin" {
		t.Fatalf("expected admin on top, got %+v", users)
	}
}

type fixture struct {
	userID   int64
	courseID int64
}

func newTestRouter(t *testing.T) (*gin.Engine, fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := memory.NewStore()
	service := app.NewService(store, nil, memory.NewLocker(), logger.NewNop())

	user, err := service.Register(ctx, app.RegisterInput{
		Username:  "john.doe", Email: "john.doe@company.com", Password: "password123",
		FirstName: "John", LastName: "Doe",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	admin, err := service.Register(ctx, app.RegisterInput{
		Username: "admin", Email: "admin@company.com", Password: "admin-pass",
		Role:     domain.RoleAdmin, FirstName: "Admin", LastName: "User",
	})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	admin.SetXP(500)
	if err := store.UpdateUser(ctx, admin); err != nil {
		t.Fatalf("update admin: %v", err)
	}

	course, err := service.CreateCourse(ctx, domain.Course{
		Title:       "Leadership Fundamentals",
		Description: "Essential leadership skills",
		Category:    "Leadership",
		Level:       domain.CourseBeginner,
		Duration:    "2 hours",
		IsPublished: true,
		Modules: []domain.Module{
			{ID: "m1", Type: domain.ModuleText, Title: "Intro", Content: domain.TextContent{Body: "Welcome"}},
			{ID: "m2", Type: domain.ModuleQuiz, Title: "Check", Content: domain.QuizContent{Questions: []domain.Question{
				{ID: "q1", Prompt: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1},
				{ID: "q2", Prompt: "3+3?", Options: []string{"5", "6"}, CorrectAnswer: 1},
			}}},
		},
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}

	router := NewRouter(NewHandler(service), logger.NewNop(), RouterConfig{})
	return router, fixture{userID: user.ID, courseID: course.ID}
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
