package enrollment

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
)

var (
	// errors
	ErrChallengeNotFound   = challenge.ErrNotFound
	ErrChallengeNotStarted = core.NewValidationError(errors.New("this challenge has not started yet"))
	ErrChallengeExpired    = core.NewValidationError(errors.New("this challenge has ended"))
	ErrNoBaselineData      = core.NewValidationError(errors.New("log some consumption for this challenge's resource before joining"))
	ErrAlreadyJoined       = core.NewConflictError("you have already joined this challenge")
	ErrEnrollmentNotFound  = core.NewNotFoundError("enrollment not found")
	ErrAlreadyFinalized    = core.NewStateError("this enrollment is no longer active")
	ErrInvalidPoints       = core.NewValidationError(
		errors.New("points must be a positive integer"),
		core.FieldError{Field: "points", Error: "points must be a positive integer"},
	)
)

type (
	Repository interface {
		// CreateEnrollment fails with ErrAlreadyJoined when (UserID, ChallengeID) exists.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, challengeID, userID string) (Enrollment, error)
		QueryEnrollments(ctx context.Context, filter QueryFilter) ([]Enrollment, error)
		// FinalizeEnrollment applies fin in a single conditional write.
		// Fails with ErrEnrollmentNotFound, or ErrAlreadyFinalized when the status is no longer fin.From.
		FinalizeEnrollment(ctx context.Context, fin Finalization) (Enrollment, error)
	}

	ChallengeGetter interface {
		GetChallenge(ctx context.Context, id string) (challenge.Challenge, error)
		QueryChallenges(ctx context.Context, filter challenge.QueryFilter) ([]challenge.Challenge, error)
	}

	RecordQuerier interface {
		QueryRecords(ctx context.Context, filter consumption.QueryFilter) ([]consumption.Record, error)
	}

	UserGetter interface {
		GetUser(ctx context.Context, filter user.GetFilter) (user.User, error)
	}

	Service struct {
		repo       Repository
		challenges ChallengeGetter
		records    RecordQuerier
		users      UserGetter
		mailSvc    core.EmailService
		logger     core.Logger
		nowFunc    func() time.Time
	}
)

func NewService(
	repo Repository,
	challenges ChallengeGetter,
	records RecordQuerier,
	users UserGetter,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		challenges: challenges,
		records:    records,
		users:      users,
		mailSvc:    mailSvc,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

func (svc *Service) now() time.Time { return svc.nowFunc().UTC() }

// currentTotal is the measured total of the challenge's resource for userID.
func (svc *Service) currentTotal(ctx context.Context, userID string, chal challenge.Challenge) (float64, int, error) {
	if chal.Resource == "" {
		return 0, 0, nil
	}
	records, err := svc.records.QueryRecords(ctx, consumption.QueryFilter{UserID: userID, Resource: chal.Resource})
	if err != nil {
		return 0, 0, errors.Wrap(err, "querying consumption records")
	}
	return consumption.Total(chal.Resource, records), len(records), nil
}

// Join enrolls userID in an active challenge, snapshotting their current total as the start value.
func (svc *Service) Join(ctx context.Context, userID, challengeID string) (Enrollment, error) {
	chal, err := svc.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return Enrollment{}, err
	}
	now := svc.now()
	if now.Before(chal.StartDate) {
		return Enrollment{}, ErrChallengeNotStarted
	}
	if chal.HasEnded(now) {
		return Enrollment{}, ErrChallengeExpired
	}

	total, count, err := svc.currentTotal(ctx, userID, chal)
	if err != nil {
		return Enrollment{}, err
	}
	if count == 0 {
		return Enrollment{}, ErrNoBaselineData
	}

	// uniqueness is left to the store
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:      userID,
		ChallengeID: challengeID,
		StartValue:  total,
		Status:      StatusJoined,
		JoinedDate:  now,
	})
}

// Award completes the joined enrollment of userID and grants it points.
func (svc *Service) Award(ctx context.Context, challengeID, userID string, points int) (Enrollment, error) {
	if points <= 0 {
		return Enrollment{}, ErrInvalidPoints
	}
	if err := Transition(StatusJoined, StatusCompleted); err != nil {
		return Enrollment{}, err
	}
	chal, err := svc.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return Enrollment{}, err
	}
	total, _, err := svc.currentTotal(ctx, userID, chal)
	if err != nil {
		return Enrollment{}, err
	}

	enr, err := svc.repo.FinalizeEnrollment(ctx, Finalization{
		ChallengeID:    challengeID,
		UserID:         userID,
		From:           StatusJoined,
		To:             StatusCompleted,
		EndValue:       &total,
		AddPoints:      points,
		CompletionDate: svc.now(),
	})
	if err != nil {
		return Enrollment{}, err
	}

	svc.sendCompletedMail(ctx, enr, chal, points)
	return enr, nil
}

// Withdraw lets userID leave a challenge they are still taking part in.
func (svc *Service) Withdraw(ctx context.Context, userID, challengeID string) (Enrollment, error) {
	if err := Transition(StatusJoined, StatusWithdrawn); err != nil {
		return Enrollment{}, err
	}
	return svc.repo.FinalizeEnrollment(ctx, Finalization{
		ChallengeID:    challengeID,
		UserID:         userID,
		From:           StatusJoined,
		To:             StatusWithdrawn,
		CompletionDate: svc.now(),
	})
}

// ExpireStale fails every joined enrollment of the challenges that have ended. Returns the number failed.
func (svc *Service) ExpireStale(ctx context.Context) (int, error) {
	if err := Transition(StatusJoined, StatusFailed); err != nil {
		return 0, err
	}
	now := svc.now()
	challenges, err := svc.challenges.QueryChallenges(ctx, challenge.QueryFilter{})
	if err != nil {
		return 0, errors.Wrap(err, "querying challenges")
	}

	var expired int
	for _, chal := range challenges {
		if !chal.HasEnded(now) {
			continue
		}
		enrs, err := svc.repo.QueryEnrollments(ctx, QueryFilter{ChallengeID: chal.ID, Status: StatusJoined})
		if err != nil {
			return expired, errors.Wrap(err, "querying enrollments")
		}
		for _, enr := range enrs {
			_, err := svc.repo.FinalizeEnrollment(ctx, Finalization{
				ChallengeID:    enr.ChallengeID,
				UserID:         enr.UserID,
				From:           StatusJoined,
				To:             StatusFailed,
				CompletionDate: now,
			})
			switch {
			case err == nil:
				expired++
			case errors.Is(err, ErrAlreadyFinalized), errors.Is(err, ErrEnrollmentNotFound):
				// finalized or removed since queried
			default:
				return expired, errors.Wrap(err, "expiring enrollment")
			}
		}
	}
	return expired, nil
}

func (svc *Service) QueryByUser(ctx context.Context, userID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, QueryFilter{UserID: userID})
}

func (svc *Service) QueryByChallenge(ctx context.Context, challengeID string) ([]Enrollment, error) {
	if _, err := svc.challenges.GetChallenge(ctx, challengeID); err != nil {
		return nil, err
	}
	return svc.repo.QueryEnrollments(ctx, QueryFilter{ChallengeID: challengeID})
}

// QueryAll returns every enrollment, with any status.
func (svc *Service) QueryAll(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, QueryFilter{})
}

func (svc *Service) sendCompletedMail(ctx context.Context, enr Enrollment, chal challenge.Challenge, points int) {
	usr, err := svc.users.GetUser(ctx, user.GetFilter{ID: enr.UserID})
	if err != nil {
		svc.logger.Error(err.Error(), errors.Wrap(err, "getting awarded user"))
		return
	}
	if usr.Email == "" {
		return
	}

	totalPoints := enr.PointsEarned
	if enrs, err := svc.QueryByUser(ctx, enr.UserID); err == nil {
		totalPoints = 0
		for _, e := range enrs {
			totalPoints += e.PointsEarned
		}
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Challenge completed!",
		TemplateName: "challenge_completed",
		TemplateData: completedMailData{
			Name:           usr.Name,
			ChallengeTitle: chal.Title,
			Points:         points,
			TotalPoints:    totalPoints,
		},
	})
}
