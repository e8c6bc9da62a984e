// Package report shapes stored scores for display. Rounding happens only here;
// the scores held in results are never modified.
package report

import (
	"math"
	"strings"
	"time"

	"disciple-assessment-service/internal/domain"
)

// MaxScore is the top of the scale.
const MaxScore = 5.0

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ShortName is the part of a title before the first ASCII or full-width colon.
func ShortName(title string) string {
	if i := strings.IndexAny(title, ":："); i >= 0 {
		return strings.TrimSpace(title[:i])
	}
	return strings.TrimSpace(title)
}

// SectionLine is one row of the results view.
type SectionLine struct {
	ID      string       `json:"id"`
	Group   domain.Group `json:"group"`
	NameEN  string       `json:"name_en"`
	NameZH  string       `json:"name_zh"`
	TitleEN string       `json:"title_en"`
	TitleZH string       `json:"title_zh"`
	Score   float64      `json:"score"`
}

// Summary is the display form of a result.
type Summary struct {
	ResultID    string        `json:"result_id,omitempty"`
	CompletedAt time.Time     `json:"completed_at"`
	Overall     float64       `json:"overall"`
	Being       float64       `json:"being"`
	Doing       float64       `json:"doing"`
	MaxScore    float64       `json:"max_score"`
	Sections    []SectionLine `json:"sections"`
}

// Summarize builds the results view for r. Sections missing from r.Scores read as 0.
func Summarize(b domain.Bank, r domain.Result) Summary {
	lines := make([]SectionLine, 0, len(b.Sections))
	var all, being, doing []float64
	for _, section := range b.Sections {
		score := r.Scores[section.ID]
		all = append(all, score)
		switch section.Group {
		case domain.GroupBeing:
			being = append(being, score)
		case domain.GroupDoing:
			doing = append(doing, score)
		}
		lines = append(lines, SectionLine{
			ID:      section.ID,
			Group:   section.Group,
			NameEN:  ShortName(section.TitleEN),
			NameZH:  ShortName(section.TitleZH),
			TitleEN: section.TitleEN,
			TitleZH: section.TitleZH,
			Score:   Round1(score),
		})
	}
	return Summary{
		ResultID:    r.ID,
		CompletedAt: r.CompletedAt,
		Overall:     Round1(mean(all)),
		Being:       Round1(mean(being)),
		Doing:       Round1(mean(doing)),
		MaxScore:    MaxScore,
		Sections:    lines,
	}
}

// Change is the per-section delta between two results.
type Change struct {
	SectionID   string  `json:"section_id"`
	NameEN      string  `json:"name_en"`
	NameZH      string  `json:"name_zh"`
	Score1      float64 `json:"score1"`
	Score2      float64 `json:"score2"`
	Diff        float64 `json:"diff"`
	DiffPercent float64 `json:"diff_percent"`
}

// Comparison puts two results side by side.
type Comparison struct {
	First   Summary  `json:"first"`
	Second  Summary  `json:"second"`
	Changes []Change `json:"changes"`
}

// Compare diffs second against first. The percentage is relative to the first
// score and is 0 when the first score is 0.
func Compare(b domain.Bank, first, second domain.Result) Comparison {
	changes := make([]Change, 0, len(b.Sections))
	for _, section := range b.Sections {
		s1 := first.Scores[section.ID]
		s2 := second.Scores[section.ID]
		diff := s2 - s1
		pct := 0.0
		if s1 > 0 {
			pct = diff / s1 * 100
		}
		changes = append(changes, Change{
			SectionID:   section.ID,
			NameEN:      ShortName(section.TitleEN),
			NameZH:      ShortName(section.TitleZH),
			Score1:      Round1(s1),
			Score2:      Round1(s2),
			Diff:        Round1(diff),
			DiffPercent: Round1(pct),
		})
	}
	return Comparison{
		First:   Summarize(b, first),
		Second:  Summarize(b, second),
		Changes: changes,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
