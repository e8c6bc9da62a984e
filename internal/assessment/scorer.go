package assessment

import "disciple-assessment-service/internal/domain"

// Score folds answers into a per-section (total, count) and averages them.
// Every section that owns at least one item gets an entry; a section with no
// answered items averages 0. Unanswered items are excluded from the count and
// answers for unknown item ids are ignored.
func Score(answers domain.AnswerMap, items []domain.Item) map[string]domain.SectionScore {
	sections := make(map[string]string, len(items))
	scores := make(map[string]domain.SectionScore)
	for _, item := range items {
		sections[item.ID] = item.SectionID
		if _, ok := scores[item.SectionID]; !ok {
			scores[item.SectionID] = domain.SectionScore{}
		}
	}

	for itemID, value := range answers {
		sectionID, ok := sections[itemID]
		if !ok {
			continue
		}
		s := scores[sectionID]
		s.Total += value
		s.Count++
		scores[sectionID] = s
	}

	for sectionID, s := range scores {
		if s.Count > 0 {
			s.Average = float64(s.Total) / float64(s.Count)
		}
		scores[sectionID] = s
	}
	return scores
}

// Averages projects section scores onto the section id -> mean mapping that is
// persisted with a result.
func Averages(scores map[string]domain.SectionScore) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for sectionID, s := range scores {
		out[sectionID] = s.Average
	}
	return out
}
