package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"disciple-assessment-service/internal/assessment"
	"disciple-assessment-service/internal/domain"
	"disciple-assessment-service/internal/metrics"
	"disciple-assessment-service/internal/report"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options tunes an AssessmentService. Zero values pick defaults.
type Options struct {
	BankID   string
	PageSize int
	Permuter assessment.Permuter
	Now      func() time.Time
	Logger   *zap.Logger
}

// AssessmentService contains the attempt use cases: start, page, answer, submit
// and the read side over stored results.
type AssessmentService struct {
	banks    BankRepository
	attempts AttemptRepository
	results  ResultRepository
	sink     *ResultSink

	bankID   string
	pageSize int
	permuter assessment.Permuter
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

func NewAssessmentService(banks BankRepository, attempts AttemptRepository, results ResultRepository, sink *ResultSink, opts Options) *AssessmentService {
	s := &AssessmentService{
		banks:    banks,
		attempts: attempts,
		results:  results,
		sink:     sink,
		bankID:   opts.BankID,
		pageSize: opts.PageSize,
		permuter: opts.Permuter,
		now:      opts.Now,
		newID:    uuid.NewString,
		logger:   opts.Logger,
	}
	if s.pageSize < 1 {
		s.pageSize = assessment.DefaultPageSize
	}
	if s.permuter == nil {
		s.permuter = assessment.NewRandomizer()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// PageView is one page of an attempt together with the answers already given on it.
type PageView struct {
	Number   int                 `json:"number"`
	Items    []domain.Item       `json:"items"`
	Answers  domain.AnswerMap    `json:"answers"`
	Scale    []domain.ScaleLabel `json:"scale"`
	IsLast   bool                `json:"is_last"`
	Progress assessment.Progress `json:"progress"`
}

// Submission is the outcome of a submit call.
type Submission struct {
	Receipt
	Sections   map[string]domain.SectionScore `json:"sections,omitempty"`
	Summary    *report.Summary                `json:"summary,omitempty"`
	Progress   assessment.Progress            `json:"progress"`
	Unanswered []string                       `json:"unanswered,omitempty"`
}

// Bank returns the configured question bank. A load failure is fatal to any attempt.
func (s *AssessmentService) Bank(ctx context.Context) (domain.Bank, error) {
	b, err := s.banks.GetBank(ctx, s.bankID)
	if err != nil {
		s.logger.Error("loading question bank failed", zap.String("bank_id", s.bankID), zap.Error(err))
		if errors.Is(err, domain.ErrBankInvalid) || errors.Is(err, domain.ErrBankUnavailable) {
			return domain.Bank{}, err
		}
		return domain.Bank{}, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, err)
	}
	return b, nil
}

// Start creates a new attempt. The item order is drawn once here and stays
// fixed until the attempt is submitted or restarted.
func (s *AssessmentService) Start(ctx context.Context, userID string, pageSize int) (*assessment.Attempt, error) {
	b, err := s.Bank(ctx)
	if err != nil {
		return nil, err
	}
	if pageSize < 1 {
		pageSize = s.pageSize
	}
	attempt := assessment.NewAttempt(s.newID(), userID, b, s.permuter, pageSize, s.now())
	s.attempts.Put(attempt)
	metrics.AttemptsStarted.Inc()
	s.logger.Debug("attempt started",
		zap.String("attempt_id", attempt.ID()),
		zap.String("user_id", userID),
		zap.Int("items", attempt.Total()))
	return attempt, nil
}

// Attempt looks up an in-flight attempt. Attempts started by a signed-in user
// are only visible to that user.
func (s *AssessmentService) Attempt(_ context.Context, attemptID, userID string) (*assessment.Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	if attempt.UserID() != "" && attempt.UserID() != userID {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// Page returns page n (1-based) of an attempt.
func (s *AssessmentService) Page(ctx context.Context, attemptID, userID string, n int) (PageView, error) {
	attempt, err := s.Attempt(ctx, attemptID, userID)
	if err != nil {
		return PageView{}, err
	}
	items, err := attempt.Page(n)
	if err != nil {
		return PageView{}, err
	}
	b, err := s.Bank(ctx)
	if err != nil {
		return PageView{}, err
	}

	answers := make(domain.AnswerMap, len(items))
	for _, item := range items {
		if v, ok := attempt.Value(item.ID); ok {
			answers[item.ID] = v
		}
	}
	return PageView{
		Number:   n,
		Items:    items,
		Answers:  answers,
		Scale:    b.Scale,
		IsLast:   n == attempt.PageCount(),
		Progress: attempt.Progress(),
	}, nil
}

// Answer records one answer, replacing any earlier value for the item.
func (s *AssessmentService) Answer(ctx context.Context, attemptID, userID, itemID string, value int) (assessment.Progress, error) {
	attempt, err := s.Attempt(ctx, attemptID, userID)
	if err != nil {
		return assessment.Progress{}, err
	}
	if err := attempt.Answer(itemID, value); err != nil {
		return assessment.Progress{}, err
	}
	metrics.AnswersRecorded.Inc()
	return attempt.Progress(), nil
}

// Restart discards an attempt and its answers and starts over with a fresh order.
func (s *AssessmentService) Restart(ctx context.Context, attemptID, userID string) (*assessment.Attempt, error) {
	old, err := s.Attempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	s.attempts.Delete(old.ID())
	return s.Start(ctx, old.UserID(), old.PageSize())
}

// Submit scores the attempt and hands it to the result sink. With unanswered
// items and confirmed=false it returns ErrIncompleteAnswers and a Submission
// describing what is missing; nothing is stored in that case.
func (s *AssessmentService) Submit(ctx context.Context, attemptID, userID string, confirmed bool) (Submission, error) {
	attempt, err := s.Attempt(ctx, attemptID, userID)
	if err != nil {
		return Submission{}, err
	}
	if !attempt.Complete() && !confirmed {
		return Submission{
			Progress:   attempt.Progress(),
			Unanswered: attempt.Unanswered(),
		}, domain.ErrIncompleteAnswers
	}

	sections := attempt.Score()
	receipt := s.sink.Submit(ctx, domain.Result{
		UserID:      userID,
		Answers:     attempt.Answers(),
		Scores:      assessment.Averages(sections),
		CompletedAt: s.now().UTC(),
	})
	s.attempts.Delete(attempt.ID())

	sub := Submission{
		Receipt:  receipt,
		Sections: sections,
		Progress: attempt.Progress(),
	}
	if b, err := s.Bank(ctx); err == nil {
		summary := report.Summarize(b, receipt.Result)
		sub.Summary = &summary
	}
	return sub, nil
}

// History lists the user's stored results, newest first.
func (s *AssessmentService) History(ctx context.Context, userID string) ([]domain.Result, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.results.List(ctx, userID)
}

// Latest returns the user's newest stored result.
func (s *AssessmentService) Latest(ctx context.Context, userID string) (domain.Result, error) {
	if userID == "" {
		return domain.Result{}, domain.ErrUnauthenticated
	}
	r, ok, err := s.results.Latest(ctx, userID)
	if err != nil {
		return domain.Result{}, err
	}
	if !ok {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return r, nil
}

// Result returns one of the user's stored results.
func (s *AssessmentService) Result(ctx context.Context, userID, resultID string) (domain.Result, error) {
	if userID == "" {
		return domain.Result{}, domain.ErrUnauthenticated
	}
	return s.results.Get(ctx, userID, resultID)
}

// Compare puts two of the user's results side by side.
func (s *AssessmentService) Compare(ctx context.Context, userID, firstID, secondID string) (report.Comparison, error) {
	first, err := s.Result(ctx, userID, firstID)
	if err != nil {
		return report.Comparison{}, err
	}
	second, err := s.Result(ctx, userID, secondID)
	if err != nil {
		return report.Comparison{}, err
	}
	b, err := s.Bank(ctx)
	if err != nil {
		return report.Comparison{}, err
	}
	return report.Compare(b, first, second), nil
}

// Summarize renders a result for display.
func (s *AssessmentService) Summarize(ctx context.Context, r domain.Result) (report.Summary, error) {
	b, err := s.Bank(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(b, r), nil
}

// Transient returns a result kept by the fallback path.
func (s *AssessmentService) Transient(ctx context.Context, key string) (domain.Result, error) {
	return s.sink.Transient(ctx, key)
}
