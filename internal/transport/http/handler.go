package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"skillnest/internal/app"
	"skillnest/internal/domain"
)

// Handler exposes the learning service over JSON/HTTP.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       domain.Role `json:"role"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Department string      `json:"department"`
}

type userResponse struct {
	User domain.User `json:"user"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: user})
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.Register(c.Request.Context(), app.RegisterInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: user})
}

// Courses

type publishRequest struct {
	IsPublished *bool `json:"isPublished" validate:"required"`
}

func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context(), c.Query("category"), c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handler) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	course, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var course domain.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		writeError(c, domain.NewValidationError("body", "must be valid JSON: "+err.Error()))
		return
	}
	course.ID = 0
	created, err := h.service.CreateCourse(c.Request.Context(), course)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (h *Handler) PublishCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req publishRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.service.SetCoursePublished(c.Request.Context(), id, *req.IsPublished)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// Enrollments

type enrollRequest struct {
	UserID   int64 `json:"userId" validate:"required,gt=0"`
	CourseID int64 `json:"courseId" validate:"required,gt=0"`
}

type progressRequest struct {
	ModuleID         string   `json:"moduleId"`
	CompletedModules []string `json:"completedModules" validate:"omitempty,dive,required"`
	Score            *int     `json:"score" validate:"omitempty,gte=0,lte=100"`
}

// moduleIDs merges the single and bulk forms of the request.
func (r progressRequest) moduleIDs() []string {
	ids := make([]string, 0, len(r.CompletedModules)+1)
	if r.ModuleID != "" {
		ids = append(ids, r.ModuleID)
	}
	return append(ids, r.CompletedModules...)
}

func (h *Handler) ListEnrollments(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	views, err := h.service.ListEnrollments(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) Enroll(c *gin.Context) {
	var req enrollRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.service.Enroll(c.Request.Context(), req.UserID, req.CourseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *Handler) UpdateProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	ids := req.moduleIDs()
	if len(ids) == 0 {
		writeError(c, domain.NewValidationError("moduleId", "moduleId or completedModules is required"))
		return
	}
	result, err := h.service.UpdateProgress(c.Request.Context(), id, ids, req.Score)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quizzes

type quizAttemptRequest struct {
	UserID   int64          `json:"userId" validate:"required,gt=0"`
	CourseID int64          `json:"courseId" validate:"required,gt=0"`
	ModuleID string         `json:"moduleId" validate:"required"`
	Answers  map[string]int `json:"answers"`
}

func (h *Handler) SubmitQuiz(c *gin.Context) {
	var req quizAttemptRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.SubmitQuiz(c.Request.Context(), app.QuizSubmission(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListQuizAttempts(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	courseID, ok := queryInt(c, "courseId", 0)
	if !ok {
		return
	}
	attempts, err := h.service.ListQuizAttempts(c.Request.Context(), userID, int64(courseID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// Certificates

func (h *Handler) ListCertificates(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	certs, err := h.service.ListCertificates(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, certs)
}

func (h *Handler) VerifyCertificate(c *gin.Context) {
	cert, err := h.service.VerifyCertificate(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

// Gamification

func (h *Handler) ListBadges(c *gin.Context) {
	badges, err := h.service.ListBadges(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, badges)
}

func (h *Handler) CreateBadge(c *gin.Context) {
	var badge domain.Badge
	if err := c.ShouldBindJSON(&badge); err != nil {
		writeError(c, domain.NewValidationError("body", "must be valid JSON: "+err.Error()))
		return
	}
	badge.ID = 0
	created, err := h.service.CreateBadge(c.Request.Context(), badge)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (h *Handler) ListUserBadges(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	badges, err := h.service.ListUserBadges(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, badges)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	limit, ok := queryInt(c, "limit", app.DefaultLeaderboardLimit)
	if !ok {
		return
	}
	users, err := h.service.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) Stats(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
