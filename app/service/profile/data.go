package profile

import (
	"time"

	"babybites/app/rules"
)

type FeedingType string

const (
	FeedingBreastfed FeedingType = "breastfed"
	FeedingFormula   FeedingType = "formula"
	FeedingMixed     FeedingType = "mixed"
)

type Preference string

const (
	PrefVeg    Preference = "veg"
	PrefEgg    Preference = "egg"
	PrefNonVeg Preference = "non_veg"
)

// Profile is one baby profile keyed by phone number. It is created on START,
// mutated only via a completed UPDATE dialogue and overwritten in place.
type Profile struct {
	BabyName        string       `json:"baby_name,omitempty"`
	DOB             time.Time    `json:"dob"`
	Gender          string       `json:"gender,omitempty"`
	BirthWeightKg   float64      `json:"birth_weight_kg,omitempty"`
	CurrentWeightKg float64      `json:"current_weight_kg,omitempty"`
	HeightCm        float64      `json:"height_cm,omitempty"`
	FeedingType     FeedingType  `json:"feeding_type"`
	Preferences     []Preference `json:"preferences,omitempty"`
	Allergies       []string     `json:"allergies,omitempty"`
	FoodsIntroduced []string     `json:"foods_introduced,omitempty"`
	Location        string       `json:"location,omitempty"`
}

// AgeInMonths floors to whole months, day-aware, never negative.
func (p Profile) AgeInMonths(ref time.Time) int {
	months := (ref.Year()-p.DOB.Year())*12 + int(ref.Month()) - int(p.DOB.Month())
	if ref.Day() < p.DOB.Day() {
		months--
	}
	if months < 0 {
		return 0
	}

	return months
}

// RuleSubject projects the profile into what the rule engine needs.
func (p Profile) RuleSubject(ref time.Time) rules.Subject {
	return rules.Subject{
		AgeMonths: p.AgeInMonths(ref),
		Allergies: p.Allergies,
	}
}
