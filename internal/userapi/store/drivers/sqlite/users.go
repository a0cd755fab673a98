package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/arkelhq/userapi/internal/userapi/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, name, email, password_hash, roles, active, token, created_at, updated_at, last_login_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(ctx, row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(ctx, row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, roles, active, token, created_at, updated_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Roles, u.Active, u.Token,
		u.CreatedAt, u.UpdatedAt, optionalTime(u.LastLoginAt),
	)
	if err != nil {
		return mapConstraint(err)
	}
	return r.insertPhones(ctx, u.ID, u.Phones)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, password_hash = ?, roles = ?, active = ?, token = ?, updated_at = ?, last_login_at = ?
		 WHERE id = ?`,
		u.Name, u.PasswordHash, u.Roles, u.Active, u.Token,
		time.Now().UTC(), optionalTime(u.LastLoginAt), u.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return mapNotFound(sql.ErrNoRows)
	}

	// Phones are replaced wholesale; callers send the full list.
	if _, err := r.q.ExecContext(ctx, `DELETE FROM phones WHERE user_id = ?`, u.ID); err != nil {
		return err
	}
	return r.insertPhones(ctx, u.ID, u.Phones)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		phones, err := r.loadPhones(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Phones = phones
	}
	return users, nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *usersRepo) insertPhones(ctx context.Context, userID string, phones []domain.Phone) error {
	for _, p := range phones {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO phones (user_id, number, city_code, country_code) VALUES (?, ?, ?, ?)`,
			userID, p.Number, p.CityCode, p.CountryCode,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *usersRepo) loadPhones(ctx context.Context, userID string) ([]domain.Phone, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, number, city_code, country_code FROM phones WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []domain.Phone
	for rows.Next() {
		var p domain.Phone
		if err := rows.Scan(&p.ID, &p.Number, &p.CityCode, &p.CountryCode); err != nil {
			return nil, err
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row rowScanner) (domain.User, error) {
	var u domain.User
	var lastLogin sql.NullTime

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Roles,
		&u.Active, &u.Token, &u.CreatedAt, &u.UpdatedAt, &lastLogin,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func (r *usersRepo) scanUser(ctx context.Context, row *sql.Row) (domain.User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		return domain.User{}, err
	}
	u.Phones, err = r.loadPhones(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func optionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
