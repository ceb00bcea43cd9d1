package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
)

const challengeColumns = "id, title, description, goal, unit, resource, start_date, end_date, created_at, updated_at"

type challengeRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Goal        float64   `db:"goal"`
	Unit        string    `db:"unit"`
	Resource    string    `db:"resource"`
	StartDate   time.Time `db:"start_date"`
	EndDate     time.Time `db:"end_date"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row challengeRow) challenge() challenge.Challenge {
	return challenge.Challenge{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Goal:        row.Goal,
		Unit:        row.Unit,
		Resource:    consumption.Resource(row.Resource),
		StartDate:   row.StartDate.UTC(),
		EndDate:     row.EndDate.UTC(),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type challengeRepository struct {
	exec core.DBExecutor
}

var _ challenge.Repository = (*challengeRepository)(nil) // interface compliance check

func NewChallengeRepository(exec core.DBExecutor) *challengeRepository {
	return &challengeRepository{exec: exec}
}

func (repo challengeRepository) CreateChallenge(ctx context.Context, chal challenge.Challenge) (challenge.Challenge, error) {
	chal.ID = uuid.New().String()
	q := repo.exec.Rebind(`INSERT INTO challenges (` + challengeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.exec.ExecContext(ctx, q,
		chal.ID, chal.Title, chal.Description, chal.Goal, chal.Unit, string(chal.Resource),
		chal.StartDate.UTC(), chal.EndDate.UTC(), chal.CreatedAt.UTC(), chal.UpdatedAt.UTC(),
	)
	if err != nil {
		return challenge.Challenge{}, errors.Wrap(err, "inserting challenge")
	}
	return repo.GetChallenge(ctx, chal.ID)
}

func (repo challengeRepository) GetChallenge(ctx context.Context, id string) (challenge.Challenge, error) {
	if !isUUID(id) {
		return challenge.Challenge{}, challenge.ErrNotFound
	}
	var row challengeRow
	q := repo.exec.Rebind(`SELECT ` + challengeColumns + ` FROM challenges WHERE id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, id); err != nil {
		return challenge.Challenge{}, trapNoRowsErr(err, challenge.ErrNotFound, "getting challenge")
	}
	return row.challenge(), nil
}

func (repo challengeRepository) QueryChallenges(ctx context.Context, filter challenge.QueryFilter) ([]challenge.Challenge, error) {
	var w where
	if !filter.ActiveAt.IsZero() {
		at := filter.ActiveAt.UTC()
		w.add("start_date <= ? AND end_date >= ?", at, at)
	}

	var rows []challengeRow
	q := repo.exec.Rebind(`SELECT ` + challengeColumns + ` FROM challenges` + w.String() +
		orderBy(filter.Ordering, challenge.OrderingFields, "start_date DESC, id"))
	if err := repo.exec.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying challenges")
	}
	challenges := make([]challenge.Challenge, 0, len(rows))
	for _, row := range rows {
		challenges = append(challenges, row.challenge())
	}
	return challenges, nil
}

func (repo challengeRepository) UpdateChallenge(ctx context.Context, chal challenge.Challenge) (challenge.Challenge, error) {
	if !isUUID(chal.ID) {
		return challenge.Challenge{}, challenge.ErrNotFound
	}
	q := repo.exec.Rebind(`UPDATE challenges SET title = ?, description = ?, goal = ?, unit = ?, resource = ?,
		start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`)
	res, err := repo.exec.ExecContext(ctx, q,
		chal.Title, chal.Description, chal.Goal, chal.Unit, string(chal.Resource),
		chal.StartDate.UTC(), chal.EndDate.UTC(), chal.UpdatedAt.UTC(), chal.ID,
	)
	if err != nil {
		return challenge.Challenge{}, errors.Wrap(err, "updating challenge")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return challenge.Challenge{}, challenge.ErrNotFound
	}
	return repo.GetChallenge(ctx, chal.ID)
}

func (repo challengeRepository) DeleteChallenge(ctx context.Context, id string) error {
	if !isUUID(id) {
		return challenge.ErrNotFound
	}
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(`DELETE FROM challenges WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting challenge")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return challenge.ErrNotFound
	}
	return nil
}
