package postgres

import (
	"context"
	"fmt"

	"learning-service/internal/domain"
)

const userColumns = `id, last_name, knowledge_tokens, created_at, updated_at`

// FindOrCreateUser relies on the unique last_name constraint so concurrent logins converge on one row.
func (s *Store) FindOrCreateUser(ctx context.Context, lastName string) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (last_name, knowledge_tokens)
		VALUES ($1, 0)
		ON CONFLICT (last_name) DO UPDATE SET last_name = users.last_name
		RETURNING `+userColumns, lastName).
		Scan(&u.ID, &u.LastName, &u.KnowledgeTokens, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.LastName, &u.KnowledgeTokens, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, wrapNoRows(err, "user", id)
	}
	return u, nil
}

func (s *Store) IncrementKnowledgeTokens(ctx context.Context, userID int64, n int) (int, error) {
	var balance int
	err := s.pool.QueryRow(ctx, `
		UPDATE users
		SET knowledge_tokens = knowledge_tokens + $2, updated_at = now()
		WHERE id = $1
		RETURNING knowledge_tokens`, userID, n).Scan(&balance)
	if err != nil {
		return 0, wrapNoRows(err, "user", userID)
	}
	return balance, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.LastName, &u.KnowledgeTokens, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
