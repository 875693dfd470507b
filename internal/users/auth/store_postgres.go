// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	googleuuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/schemely/internal/platform/conn"
	"github.com/taibuivan/schemely/internal/platform/database/schema"
	"github.com/taibuivan/schemely/internal/platform/dberr"
	"github.com/taibuivan/schemely/pkg/pointer"
	"github.com/taibuivan/schemely/pkg/uuid"
)

var account = schema.UserAccount

// DBTX is the subset of [pgxpool.Pool] the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
	Ping(ctx context.Context) error
}

// # User Repository

// PostgresUserRepository implements [UserRepository] on the users.account table.
type PostgresUserRepository struct {
	db conn.Source[DBTX]
}

// NewPostgresUserRepository creates a repository that resolves its pool on every call.
func NewPostgresUserRepository(pools conn.Source[*pgxpool.Pool]) *PostgresUserRepository {
	return &PostgresUserRepository{db: poolSource{pools: pools}}
}

type poolSource struct {
	pools conn.Source[*pgxpool.Pool]
}

func (source poolSource) Get(ctx context.Context) (DBTX, error) {
	pool, err := source.pools.Get(ctx)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

/*
Create persists a new account into users.account.

Description: Assigns a time-sortable ID when none is set and initializes the
timestamps. Unique-index violations map onto [ErrEmailTaken] / [ErrUsernameTaken].
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	db, err := repository.db.Get(ctx)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_connect_failed: %w", err)
	}

	query := `INSERT INTO ` + account.Table + ` (` + account.ColumnList() + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if user.ID == "" {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	usage, describes, heardFrom := questionColumns(user.Questions)

	_, err = db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Username,
		nullable(user.ProfilePicture),
		nullable(user.Bio),
		usage,
		describes,
		heardFrom,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := dberr.UniqueViolation(err); ok {
			switch constraint {
			case account.UsernameKey:
				return ErrUsernameTaken
			default:
				return ErrEmailTaken
			}
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves an account by its normalized email.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findOne(ctx, account.Email, email)
}

// FindByUsername retrieves an account by its username.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return repository.findOne(ctx, account.Username, username)
}

// FindByID retrieves an account by its UUID. Malformed IDs match nothing.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := googleuuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	return repository.findOne(ctx, account.ID, id)
}

func (repository *PostgresUserRepository) findOne(ctx context.Context, column, value string) (*User, error) {
	db, err := repository.db.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_connect_failed: %w", err)
	}

	query := `SELECT ` + account.ColumnList() + ` FROM ` + account.Table + ` WHERE ` + column + ` = $1`

	user, err := scanUser(db.QueryRow(ctx, query, value))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_%s_failed: %w", column, err)
	}

	return user, nil
}

/*
UpdateProfile writes only the onboarding fields present in update.

Empty strings clear a field (stored as NULL).
*/
func (repository *PostgresUserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	if update.Empty() {
		return nil
	}
	if _, err := googleuuid.Parse(id); err != nil {
		return ErrUserNotFound
	}

	db, err := repository.db.Get(ctx)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_connect_failed: %w", err)
	}

	var (
		assignments []string
		arguments   []any
	)
	set := func(column string, value any) {
		arguments = append(arguments, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(arguments)))
	}

	if update.Bio != nil {
		set(account.Bio, nullable(*update.Bio))
	}
	if update.ProfilePicture != nil {
		set(account.ProfilePicture, nullable(*update.ProfilePicture))
	}
	if update.Questions != nil {
		usage, describes, heardFrom := questionColumns(update.Questions)
		set(account.AnswerUsage, usage)
		set(account.AnswerDescribes, describes)
		set(account.AnswerHeardFrom, heardFrom)
	}
	set(account.UpdatedAt, time.Now().UTC())

	arguments = append(arguments, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", account.Table, strings.Join(assignments, ", "), account.ID, len(arguments))

	tag, err := db.Exec(ctx, query, arguments...)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_profile_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Ping checks the pool, dialing it first if needed.
func (repository *PostgresUserRepository) Ping(ctx context.Context) error {
	db, err := repository.db.Get(ctx)
	if err != nil {
		return err
	}
	return db.Ping(ctx)
}

// # Row Mapping

func scanUser(row pgx.Row) (*User, error) {
	var (
		user                        User
		profilePicture, bio         *string
		usage, describes, heardFrom *string
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&profilePicture,
		&bio,
		&usage,
		&describes,
		&heardFrom,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ProfilePicture = pointer.Val(profilePicture)
	user.Bio = pointer.Val(bio)
	if usage != nil || describes != nil || heardFrom != nil {
		user.Questions = &Questionnaire{
			HowDoYouWantToUseThisPlatform: pointer.Val(usage),
			WhatBestDescribesYou:          pointer.Val(describes),
			HowDoYouHeardAboutUs:          pointer.Val(heardFrom),
		}
	}

	return &user, nil
}

func questionColumns(questions *Questionnaire) (usage, describes, heardFrom *string) {
	if questions == nil {
		return nil, nil, nil
	}
	return nullable(questions.HowDoYouWantToUseThisPlatform),
		nullable(questions.WhatBestDescribesYou),
		nullable(questions.HowDoYouHeardAboutUs)
}

// nullable maps the empty string onto SQL NULL.
func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return pointer.To(value)
}
