package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"skillnest/internal/app"
	"skillnest/internal/domain"
)

// Store implements app.Repository on Postgres through bun. Uniqueness is
// enforced by the schema; violations are mapped back to domain errors.
// db is the pool handle, or a bun.Tx inside RunInTx.
type Store struct {
	db bun.IDB
}

var _ app.Repository = (*Store)(nil)

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// RunInTx runs fn against a Store bound to one transaction. Nested calls
// become savepoints.
func (s *Store) RunInTx(ctx context.Context, fn func(app.Repository) error) error {
	return s.db.RunInTx(ctx, nil, func(_ context.Context, tx bun.Tx) error {
		return fn(&Store{db: tx})
	})
}

// OpenDB opens a bun handle on the pgdriver connector for dsn.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Users

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var row userRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.User{}, notFound(err, domain.ErrUserNotFound)
	}
	return row.toDomain(), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	if err := s.db.NewSelect().Model(&row).Where("lower(email) = lower(?)", email).Scan(ctx); err != nil {
		return domain.User{}, notFound(err, domain.ErrUserNotFound)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	row := newUserRow(user)
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	res, err := s.db.NewUpdate().Model(newUserRow(user)).WherePK().Exec(ctx)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res, domain.ErrUserNotFound)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// Courses

func (s *Store) GetCourse(ctx context.Context, id int64) (domain.Course, error) {
	var row courseRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Course{}, notFound(err, domain.ErrCourseNotFound)
	}
	return row.toDomain(), nil
}

func (s *Store) ListCourses(ctx context.Context, filter app.CourseFilter) ([]domain.Course, error) {
	var rows []courseRow
	q := s.db.NewSelect().Model(&rows).Order("id ASC")
	if filter.PublishedOnly {
		q = q.Where("is_published")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		q = q.Where("(title ILIKE ? OR description ILIKE ? OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE ?))",
			pattern, pattern, pattern)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]domain.Course, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CreateCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	row := newCourseRow(course)
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return domain.Course{}, mapConstraint(err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateCourse(ctx context.Context, course domain.Course) error {
	res, err := s.db.NewUpdate().Model(newCourseRow(course)).WherePK().Exec(ctx)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res, domain.ErrCourseNotFound)
}

// Enrollments

func (s *Store) GetEnrollment(ctx context.Context, id int64) (domain.Enrollment, error) {
	var row enrollmentRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Enrollment{}, notFound(err, domain.ErrEnrollmentNotFound)
	}
	return row.toDomain(), nil
}

func (s *Store) FindEnrollment(ctx context.Context, userID, courseID int64) (domain.Enrollment, error) {
	var row enrollmentRow
	err := s.db.NewSelect().Model(&row).
		Where("user_id = ?", userID).
		Where("course_id = ?", courseID).
		Scan(ctx)
	if err != nil {
		return domain.Enrollment{}, notFound(err, domain.ErrEnrollmentNotFound)
	}
	return row.toDomain(), nil
}

func (s *Store) ListEnrollments(ctx context.Context, userID int64) ([]domain.Enrollment, error) {
	var rows []enrollmentRow
	if err := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	out := make([]domain.Enrollment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, e domain.Enrollment) (domain.Enrollment, error) {
	row := newEnrollmentRow(e)
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return domain.Enrollment{}, mapConstraint(err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateEnrollment(ctx context.Context, e domain.Enrollment) error {
	res, err := s.db.NewUpdate().Model(newEnrollmentRow(e)).WherePK().Exec(ctx)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res, domain.ErrEnrollmentNotFound)
}

// Certificates

func (s *Store) FindCertificate(ctx context.Context, userID, courseID int64) (domain.Certificate, error) {
	var row certificateRow
	err := s.db.NewSelect().Model(&row).
		Where("user_id = ?", userID).
		Where("course_id = ?", courseID).
		Scan(ctx)
	if err != nil {
		return domain.Certificate{}, notFound(err, domain.ErrCertificateNotFound)
	}
	return row.toDomain(), nil
}

func (s *Store) GetCertificateByCode(ctx context.Context, code string) (domain.Certificate, error) {
	var row certificateRow
	if err := s.db.NewSelect().Model(&row).Where("certificate_id = ?", code).Scan(ctx); err != nil {
		return domain.Certificate{}, notFound(err, domain.ErrCertificateNotFound)
	}
	return row.toDomain(), nil
}

func (s *Store) ListCertificates(ctx context.Context, userID int64) ([]domain.Certificate, error) {
	var rows []certificateRow
	if err := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	out := make([]domain.Certificate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CreateCertificate(ctx context.Context, cert domain.Certificate) (domain.Certificate, error) {
	row := &certificateRow{
		UserID:        cert.UserID,
		CourseID:      cert.CourseID,
		CertificateID: cert.CertificateID,
		Score:         cert.Score,
		IssuedAt:      cert.IssuedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return domain.Certificate{}, mapConstraint(err)
	}
	return row.toDomain(), nil
}

// Badges

func (s *Store) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	var rows []badgeRow
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	out := make([]domain.Badge, 0, len(rows))
	for _, r := range rows {
		b, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("badge %d: %w", r.ID, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) CreateBadge(ctx context.Context, badge domain.Badge) (domain.Badge, error) {
	row, err := newBadgeRow(badge)
	if err != nil {
		return domain.Badge{}, err
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return domain.Badge{}, mapConstraint(err)
	}
	badge.ID = row.ID
	return badge, nil
}

func (s *Store) ListUserBadges(ctx context.Context, userID int64) ([]domain.UserBadge, error) {
	var rows []userBadgeRow
	if err := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	out := make([]domain.UserBadge, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CreateUserBadge(ctx context.Context, award domain.UserBadge) (domain.UserBadge, error) {
	row := &userBadgeRow{UserID: award.UserID, BadgeID: award.BadgeID, EarnedAt: award.EarnedAt}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return domain.UserBadge{}, mapConstraint(err)
	}
	return row.toDomain(), nil
}

// Quiz attempts

func (s *Store) CreateQuizAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	row := &quizAttemptRow{
		UserID:      attempt.UserID,
		CourseID:    attempt.CourseID,
		ModuleID:    attempt.ModuleID,
		Answers:     attempt.Answers,
		Score:       attempt.Score,
		CompletedAt: attempt.CompletedAt,
	}
	if row.Answers == nil {
		row.Answers = map[string]int{}
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return domain.QuizAttempt{}, mapConstraint(err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListQuizAttempts(ctx context.Context, userID, courseID int64) ([]domain.QuizAttempt, error) {
	var rows []quizAttemptRow
	q := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).Order("id ASC")
	if courseID > 0 {
		q = q.Where("course_id = ?", courseID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	out := make([]domain.QuizAttempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}

func requireRow(res sql.Result, target error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return target
	}
	return nil
}

// constraintErrors maps schema constraint names to domain errors.
var constraintErrors = map[string]error{
	"users_email_key":              domain.ErrEmailTaken,
	"enrollments_user_course_key":  domain.ErrAlreadyEnrolled,
	"certificates_user_course_key": domain.ErrAlreadyCertified,
	"certificates_code_key":        domain.ErrCertificateCodeTaken,
	"user_badges_user_badge_key":   domain.ErrBadgeAlreadyEarned,
	"user_badges_badge_id_fkey":    domain.ErrBadgeNotFound,
}

func mapConstraint(err error) error {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) || !pgErr.IntegrityViolation() {
		return err
	}
	if mapped, ok := constraintErrors[pgErr.Field('n')]; ok {
		return mapped
	}
	if pgErr.Field('C') == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Field('n'))
	}
	return err
}
