package synth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cloudlead/internal/models"
)

const (
	// MaxLeads caps a single synthesis regardless of the requested count.
	MaxLeads = 20

	baseScore = 80

	PlaceholderAnalysis = "AI analysis will be enabled with OpenAI API key"
)

// Analyzer returns a short narrative about a company.
type Analyzer interface {
	Analyze(ctx context.Context, company, website string) (string, error)
}

// Synthesizer expands the template table into demo leads.
type Synthesizer struct {
	analyzer Analyzer
	logger   *zap.Logger
}

// New builds a synthesizer. A nil analyzer leaves every lead with the placeholder note.
func New(analyzer Analyzer, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{analyzer: analyzer, logger: logger.With(zap.String("component", "synth"))}
}

// Synthesize produces min(count, MaxLeads) leads for industry. It never fails.
func (s *Synthesizer) Synthesize(ctx context.Context, industry string, count int) []models.Lead {
	if count > MaxLeads {
		count = MaxLeads
	}
	if count <= 0 {
		return []models.Lead{}
	}

	tmpl := Templates(industry)
	leads := make([]models.Lead, 0, count)
	for i := 0; i < count; i++ {
		lead := tmpl[i%len(tmpl)]
		lead.Email = indexEmail(lead.Email, i)
		lead.Score = baseScore + i%MaxLeads
		lead.Analysis = s.analyze(ctx, lead)
		leads = append(leads, lead)
	}
	return leads
}

func (s *Synthesizer) analyze(ctx context.Context, lead models.Lead) string {
	if s.analyzer == nil {
		return PlaceholderAnalysis
	}
	text, err := s.analyzer.Analyze(ctx, lead.Company, lead.Website)
	if err != nil {
		s.logger.Warn("analysis failed", zap.String("company", lead.Company), zap.Error(err))
		return fmt.Sprintf("AI analysis error: %v", err)
	}
	return text
}

// indexEmail inserts i before the @ so cycled templates stay unique.
func indexEmail(email string, i int) string {
	return strings.Replace(email, "@", fmt.Sprintf("%d@", i), 1)
}
