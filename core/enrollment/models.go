package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

type Enrollment struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	ChallengeID    string     `json:"challenge_id"`
	StartValue     float64    `json:"start_value"`
	EndValue       float64    `json:"end_value"`
	Status         Status     `json:"status"`
	PointsEarned   int        `json:"points_earned"`
	JoinedDate     time.Time  `json:"joined_date"`     // UTC
	CompletionDate *time.Time `json:"completion_date"` // UTC; nil while joined
}

// Finalization moves an enrollment out of From, if it is still in From.
type Finalization struct {
	ChallengeID    string
	UserID         string
	From           Status
	To             Status
	EndValue       *float64 // unchanged when nil
	AddPoints      int
	CompletionDate time.Time
}

type QueryFilter struct {
	UserID      string
	ChallengeID string
	Status      Status
}

// AwardRequest is the body of an award action.
type AwardRequest struct {
	UserID string `json:"user_id" validate:"required,notblank"`
	Points int    `json:"points" validate:"gt=0"`
}

func (ar *AwardRequest) Validate(validate *validator.Validate) error {
	ar.UserID = core.CleanString(ar.UserID)
	return validate.Struct(ar)
}

type completedMailData struct {
	Name           string
	ChallengeTitle string
	Points         int
	TotalPoints    int
}
