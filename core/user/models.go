package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

// Roles
const (
	RoleAdmin = "admin:"
	RoleUser  = "user:"
)

var (
	AdminRoles = []string{RoleAdmin}
	UserRoles  = []string{RoleUser}
	AllRoles   = getAllRoles()

	Roles = []Role{
		{Name: "User", Value: RoleUser},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 2)
	all = append(all, AdminRoles...)
	all = append(all, UserRoles...)
	return all
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	City         string    `json:"city"`
	Photo        string    `json:"photo"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) roleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.roleStartsWith(RoleAdmin)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required,notblank"`
	Email           string   `json:"email" validate:"required,email"`
	City            string   `json:"city"`
	Photo           string   `json:"photo" validate:"omitempty,url"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.City = core.CleanString(nu.City)
	nu.Photo = core.CleanString(nu.Photo)
	if len(nu.Roles) == 0 {
		nu.Roles = []string{RoleUser}
	}
	return validate.Struct(nu)
}

type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	IDs    []string `query:"id"`
	Search string   `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
