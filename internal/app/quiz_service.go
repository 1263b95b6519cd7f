package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"learning-service/internal/domain"
)

// ShuffleFunc permutes n elements through swap, with the contract of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// QuizOption customizes a QuizService.
type QuizOption func(*QuizService)

// WithShuffle replaces the random permutation used for question selection.
func WithShuffle(fn ShuffleFunc) QuizOption {
	return func(s *QuizService) { s.shuffle = fn }
}

// WithClock is used by tests for deterministic attempt timestamps.
func WithClock(now func() time.Time) QuizOption {
	return func(s *QuizService) { s.now = now }
}

// QuizService contains the quiz use cases: question selection, grading and the completion reward.
type QuizService struct {
	quizzes  QuizStore
	bank     QuestionBank
	progress *ProgressService
	users    *UserService
	shuffle  ShuffleFunc
	now      func() time.Time
}

func NewQuizService(quizzes QuizStore, bank QuestionBank, progress *ProgressService, users *UserService, opts ...QuizOption) *QuizService {
	s := &QuizService{
		quizzes:  quizzes,
		bank:     bank,
		progress: progress,
		users:    users,
		shuffle:  rand.Shuffle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectAttemptQuestions draws a uniformly random subset of min(questionsPerAttempt, total)
// questions without their answer keys.
func (s *QuizService) SelectAttemptQuestions(ctx context.Context, quizID int64) ([]domain.PublicQuestion, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.bank.Questions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz %d has no questions", domain.ErrInvalidState, quizID)
	}

	// the bank may be shared through the cache; shuffle a copy
	pool := make([]domain.Question, len(questions))
	copy(pool, questions)
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	n := quiz.QuestionsPerAttempt
	if n <= 0 || n > len(pool) {
		n = len(pool)
	}

	selected := make([]domain.PublicQuestion, 0, n)
	for _, q := range pool[:n] {
		selected = append(selected, q.Public())
	}
	return selected, nil
}

// GradeAttempt scores a submission, persists the attempt and, on a first pass of the
// owning module, marks it complete and awards one knowledge token.
func (s *QuizService) GradeAttempt(ctx context.Context, userID, quizID int64, answers []domain.Answer) (domain.AttemptResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if len(answers) == 0 {
		return domain.AttemptResult{}, fmt.Errorf("%w: no answers submitted", domain.ErrInvalidInput)
	}

	questions, err := s.bank.Questions(ctx, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	byID := make(map[int64]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	ordered := make([]domain.Answer, len(answers))
	copy(ordered, answers)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].QuestionID < ordered[j].QuestionID })

	result, err := scoreAnswers(byID, ordered)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	result.Passed = result.Score >= quiz.PassingScore

	attempt := domain.QuizAttempt{
		UserID:            userID,
		QuizID:            quizID,
		SelectedQuestions: make([]int64, 0, len(ordered)),
		Answers:           make(map[int64]int, len(ordered)),
		Score:             result.Score,
		Passed:            result.Passed,
		SubmittedAt:       s.now().UTC(),
	}
	for _, a := range ordered {
		attempt.SelectedQuestions = append(attempt.SelectedQuestions, a.QuestionID)
		attempt.Answers[a.QuestionID] = a.SelectedOption
	}
	if _, err := s.quizzes.CreateAttempt(ctx, attempt); err != nil {
		return domain.AttemptResult{}, fmt.Errorf("save attempt: %w", err)
	}

	if result.Passed {
		if err := s.rewardCompletion(ctx, userID, quizID); err != nil {
			return domain.AttemptResult{}, err
		}
	}
	return result, nil
}

// ListAttempts returns the user's attempts at the quiz, newest first.
func (s *QuizService) ListAttempts(ctx context.Context, userID, quizID int64) ([]domain.QuizAttempt, error) {
	return s.quizzes.ListAttempts(ctx, userID, quizID)
}

func (s *QuizService) rewardCompletion(ctx context.Context, userID, quizID int64) error {
	moduleID, err := s.quizzes.ModuleIDForQuiz(ctx, quizID)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("passed quiz has no owning module, skipping reward", "quiz_id", quizID, "user_id", userID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve module: %w", err)
	}

	newlyCompleted, err := s.progress.MarkComplete(ctx, userID, moduleID)
	if err != nil {
		return err
	}
	if !newlyCompleted {
		return nil
	}

	balance, err := s.users.AwardTokens(ctx, userID, 1)
	if err != nil {
		return err
	}
	slog.Info("module completed", "user_id", userID, "module_id", moduleID, "knowledge_tokens", balance)
	return nil
}

// scoreAnswers validates every answer against the bank before producing any result.
// answers must be sorted by question id.
func scoreAnswers(bank map[int64]domain.Question, answers []domain.Answer) (domain.AttemptResult, error) {
	feedback := make([]domain.Feedback, 0, len(answers))
	correct := 0
	for i, a := range answers {
		if i > 0 && answers[i-1].QuestionID == a.QuestionID {
			return domain.AttemptResult{}, fmt.Errorf("%w: question %d answered twice", domain.ErrInvalidInput, a.QuestionID)
		}
		q, ok := bank[a.QuestionID]
		if !ok {
			return domain.AttemptResult{}, fmt.Errorf("%w: invalid question id %d", domain.ErrInvalidInput, a.QuestionID)
		}
		if a.SelectedOption < 0 || a.SelectedOption >= len(q.Options) {
			return domain.AttemptResult{}, fmt.Errorf("%w: option %d out of range for question %d", domain.ErrInvalidInput, a.SelectedOption, a.QuestionID)
		}

		isCorrect := a.SelectedOption == q.CorrectAnswer
		explanation := q.CorrectExplanation
		if isCorrect {
			correct++
		} else if q.IncorrectExplanation != "" {
			explanation = q.IncorrectExplanation
		}
		feedback = append(feedback, domain.Feedback{
			QuestionID:     q.ID,
			Question:       q.Question,
			SelectedOption: a.SelectedOption,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      isCorrect,
			Explanation:    explanation,
		})
	}

	total := len(answers)
	return domain.AttemptResult{
		Score:          percent(correct, total),
		CorrectCount:   correct,
		TotalQuestions: total,
		Feedback:       feedback,
	}, nil
}

// percent returns round(part/total*100), or 0 when total is 0.
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
