package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	Store(ctx context.Context, user User) (User, error)
	GetByUid(ctx context.Context, uid string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, uid string) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, user User) (User, error) {
	query := `INSERT INTO app_user (uid, username, display_name, currency, week_first_day)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		user.Uid,
		user.Username,
		user.DisplayName,
		user.Settings.Currency,
		int(user.Settings.WeekFirstDay),
	).Scan(&user.Id)
	if err != nil {
		err := fmt.Errorf("could not store user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}

func (r *RepositoryImpl) GetByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT id, uid, username, display_name, currency, week_first_day
			  FROM app_user WHERE uid = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not get user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context) ([]User, error) {
	query := `SELECT id, uid, username, display_name, currency, week_first_day
			  FROM app_user ORDER BY username`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query users: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			err := fmt.Errorf("could not scan user: %w", err)
			log.Error(err)
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, user User) (User, error) {
	query := `UPDATE app_user SET username = $1, display_name = $2, currency = $3, week_first_day = $4
			  WHERE uid = $5 RETURNING id`
	err := r.db.QueryRow(ctx, query,
		user.Username,
		user.DisplayName,
		user.Settings.Currency,
		int(user.Settings.WeekFirstDay),
		user.Uid,
	).Scan(&user.Id)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not update user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return user, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, uid string) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM app_user WHERE uid = $1", uid)
	if err != nil {
		err := fmt.Errorf("could not delete user: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var weekFirstDay int
	if err := row.Scan(
		&user.Id,
		&user.Uid,
		&user.Username,
		&user.DisplayName,
		&user.Settings.Currency,
		&weekFirstDay,
	); err != nil {
		return User{}, err
	}
	user.Settings.WeekFirstDay = toWeekday(weekFirstDay)
	return user, nil
}

func toWeekday(d int) (w time.Weekday) {
	if d < 0 || d > 6 {
		return time.Monday
	}
	return time.Weekday(d)
}
