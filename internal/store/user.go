package store

import (
	"database/sql"
	"time"
)

// CreateUser inserts a user with the given opaque API token.
func (db *DB) CreateUser(firstName, lastName, apiToken string) (*User, error) {
	now := time.Now().UnixMilli()
	res, err := db.Exec(`
		INSERT INTO users (first_name, last_name, api_token, created_at)
		VALUES (?, ?, ?, ?)`,
		firstName, lastName, apiToken, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &User{ID: id, FirstName: firstName, LastName: lastName, APIToken: apiToken, CreatedAt: now}, nil
}

// GetUser returns a user by id, or nil when missing.
func (db *DB) GetUser(id int64) (*User, error) {
	return db.scanUser(db.QueryRow(`
		SELECT id, first_name, last_name, api_token, created_at
		FROM users WHERE id = ?`, id))
}

// UserByToken resolves a bearer credential to its user, or nil when unknown.
func (db *DB) UserByToken(token string) (*User, error) {
	return db.scanUser(db.QueryRow(`
		SELECT id, first_name, last_name, api_token, created_at
		FROM users WHERE api_token = ?`, token))
}

func (db *DB) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.APIToken, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
