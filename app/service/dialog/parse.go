package dialog

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"babybites/app/service/profile"
)

func fieldPrompt(f Field) string {
	switch f {
	case FieldDOB:
		return "Enter date of birth (YYYY-MM-DD):"
	case FieldFeeding:
		return "Enter feeding type: breastfed, formula, or mixed"
	case FieldPreferences:
		return "Enter diet: veg, egg, non_veg (comma-separated for multiple)"
	case FieldAllergies:
		return "Enter allergies (comma-separated) or 'none':"
	case FieldFoods:
		return "Enter foods already introduced (comma-separated):"
	case FieldLocation:
		return "Enter city/location:"
	case FieldWeight:
		return "Enter current weight in kg (e.g. 7.5):"
	case FieldHeight:
		return "Enter height in cm (e.g. 68):"
	}

	return "Enter value:"
}

// parseField validates a value and applies it to a copy of the draft. The
// returned error text doubles as the user-facing format hint.
func parseField(p profile.Profile, f Field, value string) (profile.Profile, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return p, errors.New("empty value")
	}

	switch f {
	case FieldDOB:
		dob, err := time.Parse("2006-01-02", value)
		if err != nil {
			return p, errors.New("use YYYY-MM-DD (e.g. 2024-05-15)")
		}
		if dob.After(time.Now()) {
			return p, errors.New("date cannot be in the future")
		}
		p.DOB = dob

	case FieldFeeding:
		switch strings.ToLower(value) {
		case "breastfed", "breast", "bf":
			p.FeedingType = profile.FeedingBreastfed
		case "formula", "formula-fed":
			p.FeedingType = profile.FeedingFormula
		case "mixed", "both":
			p.FeedingType = profile.FeedingMixed
		default:
			return p, errors.New("use: breastfed, formula, or mixed")
		}

	case FieldPreferences:
		var prefs []profile.Preference
		for _, tok := range splitTags(value) {
			switch tok {
			case "veg", "vegetarian":
				prefs = appendUnique(prefs, profile.PrefVeg)
			case "egg", "eggs":
				prefs = appendUnique(prefs, profile.PrefEgg)
			case "non_veg", "nonveg", "non-veg":
				prefs = appendUnique(prefs, profile.PrefNonVeg)
			}
		}
		if len(prefs) == 0 {
			return p, errors.New("use: veg, egg, non_veg (comma-separated)")
		}
		p.Preferences = prefs

	case FieldAllergies:
		if strings.EqualFold(value, "none") {
			p.Allergies = nil
		} else {
			p.Allergies = splitTags(value)
		}

	case FieldFoods:
		p.FoodsIntroduced = splitTags(value)

	case FieldLocation:
		p.Location = value

	case FieldWeight:
		w, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
		if err != nil || w <= 0 || w >= 50 {
			return p, errors.New("enter a number between 0 and 50 (e.g. 7.5)")
		}
		p.CurrentWeightKg = w

	case FieldHeight:
		h, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
		if err != nil || h <= 0 || h >= 150 {
			return p, errors.New("enter a number between 0 and 150 (e.g. 68)")
		}
		p.HeightCm = h

	default:
		return p, errors.New("unknown field")
	}

	return p, nil
}

func splitTags(value string) []string {
	var out []string
	for _, tok := range strings.Split(strings.ToLower(value), ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}

	return out
}

func appendUnique(prefs []profile.Preference, p profile.Preference) []profile.Preference {
	for _, existing := range prefs {
		if existing == p {
			return prefs
		}
	}

	return append(prefs, p)
}
