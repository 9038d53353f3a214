package inventory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// CreateFilm adds a catalog entry.
func (m *Manager) CreateFilm(ctx context.Context, film NewFilm) (*Film, error) {
	const op = "create film"
	name := strings.TrimSpace(film.Name)
	if name == "" {
		return nil, validationf(op, "name is required")
	}
	if film.ISO < 0 {
		return nil, validationf(op, "iso must not be negative")
	}
	var iso any
	if film.ISO > 0 {
		iso = film.ISO
	}
	res, err := m.stmts.Run(ctx, stmtFilmInsert,
		name,
		nullableString(strings.TrimSpace(film.Brand)),
		nullableString(strings.TrimSpace(film.Format)),
		iso,
		nullableString(strings.TrimSpace(film.Process)),
		formatTime(m.now()),
	)
	if err != nil {
		return nil, wrapStorage(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapStorage(op, err)
	}
	return m.GetFilm(ctx, id)
}

// GetFilm returns a catalog entry, or nil when none exists.
func (m *Manager) GetFilm(ctx context.Context, id int64) (*Film, error) {
	row, err := m.stmts.Get(ctx, stmtFilmByID, id)
	if err != nil {
		return nil, wrapStorage("get film", err)
	}
	film, err := scanFilm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStorage("get film", err)
	}
	return film, nil
}

// ListFilms returns the catalog ordered by name.
func (m *Manager) ListFilms(ctx context.Context) ([]*Film, error) {
	rows, err := m.stmts.Query(ctx, stmtFilmList)
	if err != nil {
		return nil, wrapStorage("list films", err)
	}
	defer rows.Close()

	var films []*Film
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, wrapStorage("list films", err)
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("list films", err)
	}
	return films, nil
}

// CreateRoll adds an empty roll record ready to be linked.
func (m *Manager) CreateRoll(ctx context.Context, roll NewRoll) (*Roll, error) {
	const op = "create roll"
	res, err := m.stmts.Run(ctx, stmtRollInsert,
		nullableString(strings.TrimSpace(roll.Title)),
		nullableString(strings.TrimSpace(roll.Camera)),
		nullableString(strings.TrimSpace(roll.StartDate)),
		nullableString(strings.TrimSpace(roll.Notes)),
		formatTime(m.now()),
	)
	if err != nil {
		return nil, wrapStorage(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapStorage(op, err)
	}
	return m.GetRoll(ctx, id)
}

// GetRoll returns a roll, or nil when none exists.
func (m *Manager) GetRoll(ctx context.Context, id int64) (*Roll, error) {
	row, err := m.stmts.Get(ctx, stmtRollByID, id)
	if err != nil {
		return nil, wrapStorage("get roll", err)
	}
	roll, err := scanRoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStorage("get roll", err)
	}
	return roll, nil
}
