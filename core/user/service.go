package user

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		// CreateUser fails with ErrEmailExists when the email is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryUsers(ctx context.Context, filter *QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) now() time.Time { return svc.nowFunc().UTC() }

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := svc.now()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		City:      nu.City,
		Photo:     nu.Photo,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, pkgerrors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return User{}, pkgerrors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter)
}

// QueryByIDs returns the users with the given ids, keyed by id.
func (svc *Service) QueryByIDs(ctx context.Context, ids ...string) (map[string]User, error) {
	users := make(map[string]User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	found, err := svc.repo.QueryUsers(ctx, &QueryFilter{IDs: ids})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying users by ID")
	}
	for _, usr := range found {
		users[usr.ID] = usr
	}
	return users, nil
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = svc.now()
	return svc.repo.UpdateUser(ctx, usr)
}

// UpdateOrCreate saves usr, creating it when it has no ID yet.
func (svc *Service) UpdateOrCreate(ctx context.Context, usr User) (User, error) {
	usr.UpdatedAt = svc.now()
	if usr.ID == "" {
		usr.CreatedAt = usr.UpdatedAt
		return svc.repo.CreateUser(ctx, usr)
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// ResetPassword sets a new password on the user with the given email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return pkgerrors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = svc.now()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
