package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"learning-service/internal/domain"
)

func (s *Store) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var q domain.Quiz
	err := s.pool.QueryRow(ctx, `
		SELECT id, resource_id, passing_score, questions_per_attempt, created_at
		FROM quizzes WHERE id = $1`, quizID).
		Scan(&q.ID, &q.ResourceID, &q.PassingScore, &q.QuestionsPerAttempt, &q.CreatedAt)
	if err != nil {
		return domain.Quiz{}, wrapNoRows(err, "quiz", quizID)
	}
	return q, nil
}

// LoadQuestions loads the full question bank, answer keys included.
func (s *Store) LoadQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, quiz_id, question, options, correct_answer,
		       COALESCE(hint, ''), COALESCE(correct_explanation, ''), COALESCE(incorrect_explanation, '')
		FROM quiz_questions WHERE quiz_id = $1 ORDER BY id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Question, &q.Options, &q.CorrectAnswer,
			&q.Hint, &q.CorrectExplanation, &q.IncorrectExplanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) ModuleIDForQuiz(ctx context.Context, quizID int64) (int64, error) {
	var moduleID int64
	err := s.pool.QueryRow(ctx, `
		SELECT r.module_id
		FROM quizzes q JOIN resources r ON r.id = q.resource_id
		WHERE q.id = $1`, quizID).Scan(&moduleID)
	if err != nil {
		return 0, wrapNoRows(err, "module for quiz", quizID)
	}
	return moduleID, nil
}

func (s *Store) CreateAttempt(ctx context.Context, a domain.QuizAttempt) (domain.QuizAttempt, error) {
	selected, err := json.Marshal(a.SelectedQuestions)
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("encode selected questions: %w", err)
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("encode answers: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO quiz_attempts (user_id, quiz_id, selected_questions, answers, score, passed, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		a.UserID, a.QuizID, string(selected), string(answers), a.Score, a.Passed, a.SubmittedAt).Scan(&a.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.QuizAttempt{}, fmt.Errorf("%w: user %d or quiz %d", domain.ErrNotFound, a.UserID, a.QuizID)
		}
		return domain.QuizAttempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	return a, nil
}

func (s *Store) ListAttempts(ctx context.Context, userID, quizID int64) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, quiz_id, selected_questions, answers, score, passed, submitted_at
		FROM quiz_attempts
		WHERE user_id = $1 AND quiz_id = $2
		ORDER BY submitted_at DESC, id DESC`, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	attempts := []domain.QuizAttempt{}
	for rows.Next() {
		var (
			a                 domain.QuizAttempt
			selected, answers []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuizID, &selected, &answers, &a.Score, &a.Passed, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(selected, &a.SelectedQuestions); err != nil {
			return nil, fmt.Errorf("decode selected questions: %w", err)
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
