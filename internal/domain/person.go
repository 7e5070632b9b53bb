package domain

import (
	"database/sql"
	"regexp"
	"time"
)

// Person is a citizen record (people table).
type Person struct {
	ID            int64          `db:"id"`
	Name          string         `db:"name"`
	Age           int            `db:"age"`   // 1..120
	Phone         string         `db:"phone"` // 10 digits, UNIQUE
	Address       string         `db:"address"`
	Ward          string         `db:"ward"`
	Street        string         `db:"street"`
	Direction     Direction      `db:"direction"`
	AadharNumber  string         `db:"aadhar_number"`   // 12 digits, UNIQUE
	PanNumber     string         `db:"pan_number"`      // AAAAA9999A, UNIQUE
	VoterIDNumber sql.NullString `db:"voter_id_number"` // AAA9999999, UNIQUE, optional
	Gender        string         `db:"gender"`
	Religion      string         `db:"religion"`
	Caste         string         `db:"caste"`
	Community     string         `db:"community"`
	CreatedBy     string         `db:"created_by"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

var (
	phonePattern  = regexp.MustCompile(`^[0-9]{10}$`)
	aadharPattern = regexp.MustCompile(`^[0-9]{12}$`)
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	voterPattern  = regexp.MustCompile(`^[A-Z]{3}[0-9]{7}$`)
)

// Genders and Communities are the accepted enum values.
var (
	Genders     = []string{"Male", "Female", "Other"}
	Communities = []string{"General", "OBC", "SC", "ST", "Other"}
)

const (
	MinAge = 1
	MaxAge = 120
)

// ValidPhone reports whether s is exactly ten digits.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// ValidAadhar reports whether s is exactly twelve digits.
func ValidAadhar(s string) bool { return aadharPattern.MatchString(s) }

// ValidPAN expects an already uppercased value.
func ValidPAN(s string) bool { return panPattern.MatchString(s) }

// ValidVoterID expects an already uppercased value.
func ValidVoterID(s string) bool { return voterPattern.MatchString(s) }

// ValidAge reports whether age is inside the accepted range.
func ValidAge(age int) bool { return age >= MinAge && age <= MaxAge }

// ValidGender reports enum membership.
func ValidGender(s string) bool { return contains(Genders, s) }

// ValidCommunity reports enum membership.
func ValidCommunity(s string) bool { return contains(Communities, s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
