package postgres

import (
	"context"
	"fmt"
	"time"

	"learning-service/internal/domain"
)

// MarkComplete reports true only for the statement that flips the row to completed.
func (s *Store) MarkComplete(ctx context.Context, userID, moduleID int64, at time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE user_module_progress
		SET completed = true, completed_at = $3
		WHERE user_id = $1 AND module_id = $2 AND NOT completed`, userID, moduleID, at)
	if err != nil {
		return false, fmt.Errorf("complete progress row: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	tag, err = s.pool.Exec(ctx, `
		INSERT INTO user_module_progress (user_id, module_id, completed, completed_at)
		VALUES ($1, $2, true, $3)
		ON CONFLICT (user_id, module_id) DO NOTHING`, userID, moduleID, at)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("%w: user %d or module %d", domain.ErrNotFound, userID, moduleID)
		}
		return false, fmt.Errorf("insert progress row: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// already completed: refresh the stamp only
	if _, err := s.pool.Exec(ctx, `
		UPDATE user_module_progress SET completed_at = $3
		WHERE user_id = $1 AND module_id = $2`, userID, moduleID, at); err != nil {
		return false, fmt.Errorf("restamp progress row: %w", err)
	}
	return false, nil
}

func (s *Store) IsCompleted(ctx context.Context, userID, moduleID int64) (bool, error) {
	var done bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_module_progress
			WHERE user_id = $1 AND module_id = $2 AND completed
		)`, userID, moduleID).Scan(&done)
	if err != nil {
		return false, fmt.Errorf("check progress: %w", err)
	}
	return done, nil
}

func (s *Store) CompletedModuleIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT module_id FROM user_module_progress
		WHERE user_id = $1 AND completed
		ORDER BY module_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("completed modules: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CountModules(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM modules`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count modules: %w", err)
	}
	return n, nil
}
