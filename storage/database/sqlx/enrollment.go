package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
)

const enrollmentColumns = `id, user_id, challenge_id, start_value, end_value, status, points_earned,
	joined_date, completion_date`

type enrollmentRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	ChallengeID    string    `db:"challenge_id"`
	StartValue     float64   `db:"start_value"`
	EndValue       float64   `db:"end_value"`
	Status         string    `db:"status"`
	PointsEarned   int       `db:"points_earned"`
	JoinedDate     time.Time `db:"joined_date"`
	CompletionDate null.Time `db:"completion_date"`
}

func (row enrollmentRow) enrollment() enrollment.Enrollment {
	enr := enrollment.Enrollment{
		ID:           row.ID,
		UserID:       row.UserID,
		ChallengeID:  row.ChallengeID,
		StartValue:   row.StartValue,
		EndValue:     row.EndValue,
		Status:       enrollment.Status(row.Status),
		PointsEarned: row.PointsEarned,
		JoinedDate:   row.JoinedDate.UTC(),
	}
	if row.CompletionDate.Valid {
		completed := row.CompletionDate.Time.UTC()
		enr.CompletionDate = &completed
	}
	return enr
}

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	enr.ID = uuid.New().String()
	enr.JoinedDate = enr.JoinedDate.UTC()
	q := repo.exec.Rebind(`INSERT INTO enrollments (` + enrollmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.exec.ExecContext(ctx, q,
		enr.ID, enr.UserID, enr.ChallengeID, enr.StartValue, enr.EndValue,
		string(enr.Status), enr.PointsEarned, enr.JoinedDate, null.TimeFromPtr(enr.CompletionDate),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyJoined
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, challengeID, userID string) (enrollment.Enrollment, error) {
	if !isUUID(challengeID) || !isUUID(userID) {
		return enrollment.Enrollment{}, enrollment.ErrEnrollmentNotFound
	}
	var row enrollmentRow
	q := repo.exec.Rebind(`SELECT ` + enrollmentColumns + ` FROM enrollments WHERE challenge_id = ? AND user_id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, challengeID, userID); err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrEnrollmentNotFound, "getting enrollment")
	}
	return row.enrollment(), nil
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	var w where
	if filter.UserID != "" {
		w.add("user_id = ?", filter.UserID)
	}
	if filter.ChallengeID != "" {
		w.add("challenge_id = ?", filter.ChallengeID)
	}
	if filter.Status != "" {
		w.add("status = ?", string(filter.Status))
	}

	var rows []enrollmentRow
	q := repo.exec.Rebind(`SELECT ` + enrollmentColumns + ` FROM enrollments` + w.String() + ` ORDER BY joined_date, id`)
	if err := repo.exec.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enrollment.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrs = append(enrs, row.enrollment())
	}
	return enrs, nil
}

func (repo enrollmentRepository) FinalizeEnrollment(ctx context.Context, fin enrollment.Finalization) (enrollment.Enrollment, error) {
	if err := enrollment.Transition(fin.From, fin.To); err != nil {
		return enrollment.Enrollment{}, err
	}
	if !isUUID(fin.ChallengeID) || !isUUID(fin.UserID) {
		return enrollment.Enrollment{}, enrollment.ErrEnrollmentNotFound
	}

	q := repo.exec.Rebind(`UPDATE enrollments
		SET status = ?, end_value = COALESCE(?, end_value), points_earned = points_earned + ?, completion_date = ?
		WHERE challenge_id = ? AND user_id = ? AND status = ?`)
	res, err := repo.exec.ExecContext(ctx, q,
		string(fin.To), null.Float64FromPtr(fin.EndValue), fin.AddPoints, fin.CompletionDate.UTC(),
		fin.ChallengeID, fin.UserID, string(fin.From),
	)
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "finalizing enrollment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "finalizing enrollment")
	}

	enr, err := repo.GetEnrollment(ctx, fin.ChallengeID, fin.UserID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	if n == 0 {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyFinalized
	}
	return enr, nil
}
