package consumption

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

type Resource string

const (
	Electricity Resource = "electricity"
	Water       Resource = "water"
	Waste       Resource = "waste"
)

var Resources = []Resource{Electricity, Water, Waste}

func ParseResource(s string) (Resource, bool) {
	res := Resource(core.CleanString(s, true /* lower */))
	return res, res.Valid()
}

func (r Resource) Valid() bool {
	switch r {
	case Electricity, Water, Waste:
		return true
	}
	return false
}

// Monthly reports whether records of r are billed once a month.
func (r Resource) Monthly() bool {
	return r == Electricity || r == Water
}

// Record is a single consumption reading.
// Electricity and water readings carry Units; waste collections carry bag counts.
type Record struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Resource      Resource  `json:"resource"`
	Period        time.Time `json:"period"` // billing month or collection date, UTC
	Units         float64   `json:"units"`
	PlasticBags   float64   `json:"plastic_bags"`
	PaperBags     float64   `json:"paper_bags"`
	FoodWasteBags float64   `json:"food_waste_bags"`
	CreatedAt     time.Time `json:"created_at"`
}

// Bags is the number of waste bags collected.
func (rec Record) Bags() float64 {
	return rec.PlasticBags + rec.PaperBags + rec.FoodWasteBags
}

// Quantity is the measured amount of the record's resource.
func (rec Record) Quantity() float64 {
	if rec.Resource == Waste {
		return rec.Bags()
	}
	return rec.Units
}

func (rec Record) HasNegativeQuantity() bool {
	return rec.Units < 0 || rec.PlasticBags < 0 || rec.PaperBags < 0 || rec.FoodWasteBags < 0
}

// Total sums the quantities of the records of resource res.
func Total(res Resource, records []Record) float64 {
	var total float64
	for _, rec := range records {
		if rec.Resource == res {
			total += rec.Quantity()
		}
	}
	return total
}

var periodLayouts = []string{"2006-01-02", "2006-01"}

// ParsePeriod accepts `YYYY-MM` or `YYYY-MM-DD`.
func ParsePeriod(s string) (time.Time, bool) {
	s = core.CleanString(s)
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizePeriod truncates monthly periods to the first day of their month.
func NormalizePeriod(res Resource, period time.Time) time.Time {
	period = period.UTC()
	if res.Monthly() {
		return time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(period.Year(), period.Month(), period.Day(), 0, 0, 0, 0, time.UTC)
}

// NewRecord contains information needed to log a reading.
type NewRecord struct {
	Period        string  `json:"period" validate:"required,period"`
	Units         float64 `json:"units" validate:"gte=0"`
	PlasticBags   float64 `json:"plastic_bags" validate:"gte=0"`
	PaperBags     float64 `json:"paper_bags" validate:"gte=0"`
	FoodWasteBags float64 `json:"food_waste_bags" validate:"gte=0"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Period = strings.TrimSpace(nr.Period)
	return validate.Struct(nr)
}

type QueryFilter struct {
	UserID   string
	Resource Resource // all resources when empty
	From     time.Time
	To       time.Time
}
