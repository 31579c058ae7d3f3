package profile

import (
	"fmt"
	"strings"
	"time"

	"babybites/app/rules"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Default profile created on START: a six month old starting solids, details
// filled in later via UPDATE.
const defaultAgeDays = 180

type Service struct {
	store   Store
	catalog *rules.Catalog
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		store:   do.MustInvoke[Store](di),
		catalog: do.MustInvoke[*rules.Catalog](di),
	}, nil
}

func (s *Service) Get(phone string) (Profile, error) {
	return s.store.Get(phone)
}

func (s *Service) Save(phone string, p Profile) error {
	return s.store.Put(phone, p)
}

func (s *Service) CreateDefault(phone string) (Profile, error) {
	p := Profile{
		DOB:         time.Now().AddDate(0, 0, -defaultAgeDays),
		FeedingType: FeedingMixed,
		Preferences: []Preference{PrefVeg},
	}

	if err := s.store.Put(phone, p); err != nil {
		return Profile{}, err
	}

	return p, nil
}

// Format renders the profile card for WhatsApp, short and copy-paste friendly.
func (s *Service) Format(p Profile) string {
	prefs := strings.Join(pie.Map(p.Preferences, func(pr Preference) string {
		return string(pr)
	}), ", ")

	introduced := p.FoodsIntroduced
	if len(introduced) > 8 {
		introduced = introduced[:8]
	}

	lines := []string{
		"*Baby Profile*",
		"Name: " + orDash(p.BabyName),
		fmt.Sprintf("Age: %d months", p.AgeInMonths(time.Now())),
		"Gender: " + orDash(p.Gender),
		"Feeding: " + string(p.FeedingType),
		"Preferences: " + orDefault(prefs, "any"),
		"Allergies: " + orDefault(strings.Join(p.Allergies, ", "), "none"),
		"Foods introduced: " + orDefault(strings.Join(introduced, ", "), "none"),
		"Location: " + orDash(p.Location),
	}

	if p.CurrentWeightKg > 0 {
		lines = append(lines, fmt.Sprintf("Weight: %.1f kg", p.CurrentWeightKg))
	}
	if p.HeightCm > 0 {
		lines = append(lines, fmt.Sprintf("Height: %.0f cm", p.HeightCm))
	}

	lines = append(lines, "", s.catalog.Disclaimer())

	return strings.Join(lines, "\n")
}

// PromptContext builds the generator prompt values. Keep PII out of it, only
// feeding-relevant fields go to the model.
func (s *Service) PromptContext(p Profile, ref time.Time) map[string]any {
	prefs := strings.Join(pie.Map(p.Preferences, func(pr Preference) string {
		return string(pr)
	}), ", ")

	weight := "not provided"
	if p.CurrentWeightKg > 0 {
		weight = fmt.Sprintf("%.1f", p.CurrentWeightKg)
	}

	return map[string]any{
		"age_in_months":    p.AgeInMonths(ref),
		"feeding_type":     string(p.FeedingType),
		"preferences":      orDefault(prefs, "any"),
		"allergies":        orDefault(strings.Join(p.Allergies, ", "), "none"),
		"foods_introduced": orDefault(strings.Join(p.FoodsIntroduced, ", "), "starting solids"),
		"location":         orDefault(p.Location, "India"),
		"weight_kg":        weight,
	}
}

func orDash(s string) string {
	return orDefault(s, "-")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}

	return s
}
