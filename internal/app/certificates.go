package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"skillnest/internal/domain"
)

// CertificateIssuer creates at most one certificate per (user, course).
type CertificateIssuer struct {
	repo Repository
	now  func() time.Time
}

func NewCertificateIssuer(repo Repository, now func() time.Time) *CertificateIssuer {
	if now == nil {
		now = time.Now
	}
	return &CertificateIssuer{repo: repo, now: now}
}

// using returns an issuer writing through repo, typically a transaction.
func (i *CertificateIssuer) using(repo Repository) *CertificateIssuer {
	return &CertificateIssuer{repo: repo, now: i.now}
}

// IssueIfEligible creates a certificate when the enrollment is at 100% and
// none exists yet. It returns nil (and no error) when not eligible or
// already certified. A code collision with another pair is fatal.
func (i *CertificateIssuer) IssueIfEligible(ctx context.Context, e domain.Enrollment, course domain.Course, score int) (*domain.Certificate, error) {
	if e.Progress != 100 {
		return nil, nil
	}
	if _, err := i.repo.FindCertificate(ctx, e.UserID, e.CourseID); err == nil {
		return nil, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// A savepoint keeps a uniqueness violation from aborting the caller's transaction.
	var cert domain.Certificate
	err := i.repo.RunInTx(ctx, func(repo Repository) error {
		var err error
		cert, err = repo.CreateCertificate(ctx, domain.Certificate{
			UserID:        e.UserID,
			CourseID:      e.CourseID,
			CertificateID: CertificateCode(course, e.UserID),
			Score:         clampScore(score),
			IssuedAt:      i.now(),
		})
		return err
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyCertified):
		return nil, nil
	case errors.Is(err, domain.ErrCertificateCodeTaken):
		return nil, fmt.Errorf("%w: certificate code %s collides with an existing certificate", domain.ErrInternal, CertificateCode(course, e.UserID))
	case err != nil:
		return nil, err
	}
	return &cert, nil
}

// CertificateCode builds the human-readable code, e.g. CERT-LF-001-0001.
func CertificateCode(course domain.Course, userID int64) string {
	return fmt.Sprintf("CERT-%s-%03d-%04d", initials(course.Title), course.ID, userID)
}

func initials(title string) string {
	var b strings.Builder
	for _, word := range strings.Fields(title) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
		if b.Len() >= 4 {
			break
		}
	}
	if b.Len() == 0 {
		return "C"
	}
	return b.String()
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
