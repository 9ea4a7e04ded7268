package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubAnalyzer struct {
	calls int
	err   error
}

func (s *stubAnalyzer) Analyze(_ context.Context, company, website string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%s at %s", company, website), nil
}

func TestSynthesizeCounts(t *testing.T) {
	s := New(nil, zap.NewNop())
	for _, tc := range []struct{ requested, want int }{
		{0, 0}, {-3, 0}, {1, 1}, {10, 10}, {20, 20}, {21, 20}, {100, 20},
	} {
		got := s.Synthesize(context.Background(), "Technology", tc.requested)
		if len(got) != tc.want {
			t.Fatalf("count %d: expected %d leads, got %d", tc.requested, tc.want, len(got))
		}
	}
}

func TestSynthesizeUniqueEmails(t *testing.T) {
	s := New(nil, zap.NewNop())
	for industry := range templates {
		leads := s.Synthesize(context.Background(), industry, MaxLeads)
		seen := map[string]bool{}
		for _, l := range leads {
			if seen[l.Email] {
				t.Fatalf("%s: duplicate email %s", industry, l.Email)
			}
			seen[l.Email] = true
		}
	}
}

func TestSynthesizeFinanceExample(t *testing.T) {
	s := New(nil, zap.NewNop())
	leads := s.Synthesize(context.Background(), "Finance", 3)
	if len(leads) != 3 {
		t.Fatalf("expected 3 leads, got %d", len(leads))
	}
	wantCompanies := []string{"CapitalFirst Bank", "WealthBuild Advisors", "CapitalFirst Bank"}
	wantEmails := []string{"robert0@capitalfirst.com", "emily1@wealthbuild.com", "robert2@capitalfirst.com"}
	for i, l := range leads {
		if l.Company != wantCompanies[i] {
			t.Fatalf("lead %d: expected %s, got %s", i, wantCompanies[i], l.Company)
		}
		if l.Email != wantEmails[i] {
			t.Fatalf("lead %d: expected %s, got %s", i, wantEmails[i], l.Email)
		}
		if l.Score != 80+i {
			t.Fatalf("lead %d: expected score %d, got %d", i, 80+i, l.Score)
		}
	}
}

func TestSynthesizeUnknownIndustryFallsBack(t *testing.T) {
	s := New(nil, zap.NewNop())
	leads := s.Synthesize(context.Background(), "Unknown", 5)
	if len(leads) != 5 {
		t.Fatalf("expected 5 leads, got %d", len(leads))
	}
	tech := templates["Technology"]
	for i, l := range leads {
		if l.Company != tech[i%len(tech)].Company {
			t.Fatalf("lead %d: expected technology company, got %s", i, l.Company)
		}
		if !strings.Contains(l.Email, fmt.Sprintf("%d@", i)) {
			t.Fatalf("lead %d: expected index in email, got %s", i, l.Email)
		}
		if l.Score != 80+i {
			t.Fatalf("lead %d: expected score %d, got %d", i, 80+i, l.Score)
		}
	}
}

func TestSynthesizeScoresInRange(t *testing.T) {
	leads := New(nil, zap.NewNop()).Synthesize(context.Background(), "Healthcare", 50)
	for _, l := range leads {
		if l.Score < 80 || l.Score > 99 {
			t.Fatalf("score out of range: %d", l.Score)
		}
	}
}

func TestSynthesizeWithoutAnalyzerUsesPlaceholder(t *testing.T) {
	leads := New(nil, zap.NewNop()).Synthesize(context.Background(), "Technology", 4)
	for _, l := range leads {
		if l.Analysis != PlaceholderAnalysis {
			t.Fatalf("expected placeholder, got %q", l.Analysis)
		}
	}
}

func TestSynthesizeWithAnalyzer(t *testing.T) {
	a := &stubAnalyzer{}
	leads := New(a, zap.NewNop()).Synthesize(context.Background(), "Technology", 2)
	if a.calls != 2 {
		t.Fatalf("expected 2 analyzer calls, got %d", a.calls)
	}
	if leads[0].Analysis != "TechFlow Inc at techflow.com" {
		t.Fatalf("unexpected analysis %q", leads[0].Analysis)
	}
}

func TestSynthesizeAnalyzerErrorDegrades(t *testing.T) {
	a := &stubAnalyzer{err: errors.New("quota exceeded")}
	leads := New(a, zap.NewNop()).Synthesize(context.Background(), "Finance", 3)
	if len(leads) != 3 {
		t.Fatalf("expected 3 leads despite errors, got %d", len(leads))
	}
	for _, l := range leads {
		if l.Analysis != "AI analysis error: quota exceeded" {
			t.Fatalf("unexpected analysis %q", l.Analysis)
		}
	}
}

func TestSynthesizeDoesNotMutateTemplates(t *testing.T) {
	New(nil, zap.NewNop()).Synthesize(context.Background(), "Technology", 6)
	if templates["Technology"][0].Email != "sarah@techflow.com" {
		t.Fatalf("template mutated: %s", templates["Technology"][0].Email)
	}
}
