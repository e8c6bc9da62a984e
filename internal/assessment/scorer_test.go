package assessment_test

import (
	"math"
	"testing"

	"disciple-assessment-service/internal/assessment"
	"disciple-assessment-service/internal/bank"
	"disciple-assessment-service/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestScoreEmptyAnswersIsZero(t *testing.T) {
	b := mustBank(t)
	scores := assessment.Score(domain.AnswerMap{}, b.Items())
	if len(scores) != len(b.Sections) {
		t.Fatalf("expected %d sections, got %d", len(b.Sections), len(scores))
	}
	for id, s := range scores {
		if s != (domain.SectionScore{}) {
			t.Fatalf("section %s: expected zero score, got %+v", id, s)
		}
	}
}

func TestScoreUniformSectionEqualsValue(t *testing.T) {
	b := mustBank(t)
	for v := 1; v <= 5; v++ {
		answers := domain.AnswerMap{}
		for _, item := range b.Sections[2].Items {
			answers[item.ID] = v
		}
		scores := assessment.Score(answers, b.Items())
		if got := scores[b.Sections[2].ID].Average; got != float64(v) {
			t.Fatalf("expected %d, got %v", v, got)
		}
	}
}

func TestScoreExcludesUnansweredFromDenominator(t *testing.T) {
	items := []domain.Item{
		{ID: "a1", SectionID: "a"}, {ID: "a2", SectionID: "a"}, {ID: "a3", SectionID: "a"},
		{ID: "b1", SectionID: "b"},
	}
	scores := assessment.Score(domain.AnswerMap{"a1": 5, "a2": 2, "ghost": 5}, items)

	want := map[string]domain.SectionScore{
		"a": {Total: 7, Count: 2, Average: 3.5},
		"b": {},
	}
	if diff := cmp.Diff(want, scores); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreIgnoresInsertionOrder(t *testing.T) {
	b := mustBank(t)
	items := b.Items()

	forward := assessment.NewAnswers()
	backward := assessment.NewAnswers()
	for i, item := range items {
		forward.Set(item.ID, i%5+1)
	}
	for i := len(items) - 1; i >= 0; i-- {
		backward.Set(items[i].ID, i%5+1)
	}

	if diff := cmp.Diff(assessment.Score(forward.Snapshot(), items), assessment.Score(backward.Snapshot(), items)); diff != "" {
		t.Fatalf("order changed scores:\n%s", diff)
	}
	first := assessment.Score(forward.Snapshot(), items)
	if diff := cmp.Diff(first, assessment.Score(forward.Snapshot(), items)); diff != "" {
		t.Fatalf("repeat computation differs:\n%s", diff)
	}
}

func TestScoreIdentityScenario(t *testing.T) {
	b := mustBank(t)
	answers := domain.AnswerMap{}
	for _, item := range b.Items() {
		if item.SectionID == "identity" {
			answers[item.ID] = 4
		} else {
			answers[item.ID] = 2
		}
	}

	averages := assessment.Averages(assessment.Score(answers, b.Items()))
	if averages["identity"] != 4.0 {
		t.Fatalf("expected identity 4.0, got %v", averages["identity"])
	}
	sum := 0.0
	for id, avg := range averages {
		if id != "identity" && avg != 2.0 {
			t.Fatalf("expected %s 2.0, got %v", id, avg)
		}
		sum += avg
	}
	if mean := sum / float64(len(averages)); math.Abs(mean-2.2) > 1e-9 {
		t.Fatalf("expected overall 2.2, got %v", mean)
	}
}

func mustBank(t *testing.T) domain.Bank {
	t.Helper()
	b, err := bank.Default()
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	return b
}
