package app

import (
	"context"
	"errors"
	"strings"

	"skillnest/internal/domain"
)

// CertificateView is a certificate joined with its course.
type CertificateView struct {
	domain.Certificate
	Course *domain.Course `json:"course"`
}

// ListCertificates returns the user's certificates with course details.
func (s *Service) ListCertificates(ctx context.Context, userID int64) ([]CertificateView, error) {
	certs, err := s.repo.ListCertificates(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]CertificateView, 0, len(certs))
	for _, c := range certs {
		view, err := s.certificateView(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// VerifyCertificate looks a certificate up by its public code.
func (s *Service) VerifyCertificate(ctx context.Context, code string) (CertificateView, error) {
	cert, err := s.repo.GetCertificateByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return CertificateView{}, err
	}
	return s.certificateView(ctx, cert)
}

func (s *Service) certificateView(ctx context.Context, c domain.Certificate) (CertificateView, error) {
	view := CertificateView{Certificate: c}
	course, err := s.courses.GetCourse(ctx, c.CourseID)
	switch {
	case err == nil:
		view.Course = &course
	case !errors.Is(err, domain.ErrNotFound):
		return CertificateView{}, err
	}
	return view, nil
}
