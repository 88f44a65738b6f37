package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

const pollColumns = `
	p.id, p.title, p.description, p.created_at, p.expires_at, p.is_active, p.allow_multiple_votes,
	u.id, u.username, u.email, u.first_name, u.last_name,
	(SELECT COUNT(*) FROM votes v WHERE v.poll_id = p.id),
	(SELECT COUNT(*) FROM poll_options o WHERE o.poll_id = p.id)
`

var orderColumns = map[string]string{
	"created_at": "p.created_at",
	"expires_at": "p.expires_at",
	"title":      "LOWER(p.title)",
}

type pollRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db:  db,
		now: time.Now,
	}
}

// List hides inactive and expired polls unless ShowAll is set. Every search
// term must appear in the title or the description.
func (r *pollRepository) List(ctx context.Context, query domain.ListQuery) ([]domain.Poll, error) {
	var (
		where []string
		args  []any
	)
	if !query.ShowAll {
		args = append(args, r.now())
		where = append(where, fmt.Sprintf("p.is_active AND (p.expires_at IS NULL OR p.expires_at >= $%d)", len(args)))
	}
	for _, term := range strings.Fields(query.Search) {
		args = append(args, "%"+escapeLike(term)+"%")
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	sqlQuery := "SELECT " + pollColumns + " FROM polls p JOIN users u ON u.id = p.created_by"
	if len(where) > 0 {
		sqlQuery += " WHERE " + strings.Join(where, " AND ")
	}
	sqlQuery += orderBy(query.Ordering)

	return r.queryPolls(ctx, sqlQuery, args...)
}

func (r *pollRepository) ListCreatedBy(ctx context.Context, userID int64) ([]domain.Poll, error) {
	query := "SELECT " + pollColumns + `
		FROM polls p
		JOIN users u ON u.id = p.created_by
		WHERE p.created_by = $1
	` + orderBy(domain.SortNewest)
	return r.queryPolls(ctx, query, userID)
}

func (r *pollRepository) ListVotedBy(ctx context.Context, userID int64) ([]domain.Poll, error) {
	query := "SELECT " + pollColumns + `
		FROM polls p
		JOIN users u ON u.id = p.created_by
		WHERE p.id IN (SELECT poll_id FROM votes WHERE user_id = $1)
	` + orderBy(domain.SortNewest)
	return r.queryPolls(ctx, query, userID)
}

func (r *pollRepository) GetByID(ctx context.Context, id, viewerID int64) (*domain.Poll, error) {
	return r.detail(ctx, r.db, id, viewerID)
}

// Save stores a poll whose input already passed domain.NormalizeCreatePoll.
func (r *pollRepository) Save(ctx context.Context, userID int64, input domain.CreatePollInput) (*domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (title, description, created_by, created_at, expires_at, is_active, allow_multiple_votes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	active := input.IsActive == nil || *input.IsActive
	var id int64
	err = tx.QueryRowContext(ctx, queryPoll,
		input.Title, input.Description, userID, r.now(), input.ExpiresAt, active, input.AllowMultipleVotes,
	).Scan(&id)
	if err != nil {
		if hasCode(err, foreignKeyViolation) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to insert poll: %w", err)
	}

	queryOption := `
		INSERT INTO poll_options (poll_id, text, position)
		VALUES ($1, $2, $3)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for i, text := range input.Options {
		if _, err := stmt.ExecContext(ctx, id, text, i); err != nil {
			return nil, fmt.Errorf("failed to insert option: %w", err)
		}
	}

	poll, err := r.detail(ctx, tx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return poll, nil
}

// Delete relies on the schema's cascades for options and votes.
func (r *pollRepository) Delete(ctx context.Context, id, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var createdBy int64
	err = tx.QueryRowContext(ctx, "SELECT created_by FROM polls WHERE id = $1 FOR UPDATE", id).Scan(&createdBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPollNotFound
		}
		return fmt.Errorf("failed to get poll: %w", err)
	}
	if createdBy != userID {
		return domain.ErrNotPollCreator
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM polls WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *pollRepository) queryPolls(ctx context.Context, query string, args ...any) ([]domain.Poll, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	now := r.now()
	polls := []domain.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows, now)
		if err != nil {
			return nil, err
		}
		polls = append(polls, *poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

// detail loads the detail view of a poll: options with their counts and the
// viewer's votes. viewerID 0 is anonymous.
func (r *pollRepository) detail(ctx context.Context, q queryer, id, viewerID int64) (*domain.Poll, error) {
	query := "SELECT " + pollColumns + `
		FROM polls p
		JOIN users u ON u.id = p.created_by
		WHERE p.id = $1
	`
	poll, err := scanPoll(q.QueryRowContext(ctx, query, id), r.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, err
	}

	options, _, err := pollOptions(ctx, q, id)
	if err != nil {
		return nil, err
	}
	poll.Options = options

	poll.UserVotes = []int64{}
	if viewerID != 0 {
		poll.UserVotes, err = userVotes(ctx, q, id, viewerID)
		if err != nil {
			return nil, err
		}
	}
	return poll, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPoll(row scanner, now time.Time) (*domain.Poll, error) {
	var (
		poll      domain.Poll
		expiresAt sql.NullTime
	)
	err := row.Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.CreatedAt, &expiresAt, &poll.IsActive, &poll.AllowMultipleVotes,
		&poll.CreatedBy.ID, &poll.CreatedBy.Username, &poll.CreatedBy.Email, &poll.CreatedBy.FirstName, &poll.CreatedBy.LastName,
		&poll.TotalVotes, &poll.OptionCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan poll: %w", err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		poll.ExpiresAt = &t
		poll.IsExpired = now.After(t)
	}
	return &poll, nil
}

// pollOptions returns the options of a poll in display order with their vote
// counts, plus the poll's total.
func pollOptions(ctx context.Context, q queryer, pollID int64) ([]domain.Option, int, error) {
	query := `
		SELECT o.id, o.text, o.position, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id
		ORDER BY o.position, o.id
	`
	rows, err := q.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	options := []domain.Option{}
	total := 0
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.Order, &opt.VoteCount); err != nil {
			return nil, 0, fmt.Errorf("failed to scan option: %w", err)
		}
		total += opt.VoteCount
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating options: %w", err)
	}

	for i := range options {
		options[i].VotePercentage = domain.Percentage(options[i].VoteCount, total)
	}
	return options, total, nil
}

func userVotes(ctx context.Context, q queryer, pollID, userID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, "SELECT option_id FROM votes WHERE poll_id = $1 AND user_id = $2 ORDER BY id", pollID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user votes: %w", err)
	}
	defer rows.Close()

	votes := []int64{}
	for rows.Next() {
		var optionID int64
		if err := rows.Scan(&optionID); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, optionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

// orderBy maps an ordering to its ORDER BY clause with id as the tie breaker.
// PostgreSQL puts missing expiry dates last in ascending order and first in
// descending order.
func orderBy(ordering domain.SortKey) string {
	field, desc := ordering.OrderField()
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, p.id %s", orderColumns[field], dir, dir)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
