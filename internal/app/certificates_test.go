package app_test

import (
	"context"
	"testing"
	"time"

	"skillnest/internal/app"
	"skillnest/internal/domain"
	"skillnest/internal/infra/memory"
)

func TestCertificateCode(t *testing.T) {
	course := domain.Course{ID: 1, Title: "Leadership Fundamentals"}
	if got := app.CertificateCode(course, 7); got != "CERT-LF-001-0007" {
		t.Fatalf("unexpected code %q", got)
	}
	if got := app.CertificateCode(domain.Course{ID: 12, Title: "  "}, 3); got != "CERT-C-012-0003" {
		t.Fatalf("unexpected code for blank title %q", got)
	}
}

func TestIssueIfEligible(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	issuer := app.NewCertificateIssuer(store, func() time.Time { return now })
	course := domain.Course{ID: 1, Title: "Data Science"}

	cert, err := issuer.IssueIfEligible(ctx, domain.Enrollment{UserID: 1, CourseID: 1, Progress: 99}, course, 80)
	if err != nil || cert != nil {
		t.Fatalf("expected no certificate below 100%%, got %+v, %v", cert, err)
	}

	done := domain.Enrollment{UserID: 1, CourseID: 1, Progress: 100}
	cert, err = issuer.IssueIfEligible(ctx, done, course, 140)
	if err != nil || cert == nil {
		t.Fatalf("expected certificate, got %v", err)
	}
	if cert.Score != 100 || cert.CertificateID != "CERT-DS-001-0001" || !cert.IssuedAt.Equal(now) {
		t.Fatalf("unexpected certificate %+v", cert)
	}

	again, err := issuer.IssueIfEligible(ctx, done, course, 80)
	if err != nil || again != nil {
		t.Fatalf("expected no second certificate, got %+v, %v", again, err)
	}
	certs, _ := store.ListCertificates(ctx, 1)
	if len(certs) != 1 {
		t.Fatalf("expected exactly one certificate, got %d", len(certs))
	}
}
