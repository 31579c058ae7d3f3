package rules

// Texture scale ordered from finest to coarsest. A proposed texture is only
// safe when its rank does not exceed the coarsest texture allowed for the age.
const (
	TexturePuree      = "puree"
	TextureMashed     = "mashed"
	TextureSoftChunks = "soft_chunks"
	TextureFingerFood = "finger_food"
	TextureFamilyFood = "family_food"
)

var textureRank = map[string]int{
	TexturePuree:      0,
	TextureMashed:     1,
	TextureSoftChunks: 2,
	TextureFingerFood: 3,
	TextureFamilyFood: 4,
}

type AgeBucket struct {
	Name      string `yaml:"name"`
	MinMonths int    `yaml:"min_months"`
	MaxMonths int    `yaml:"max_months"`
}

type FoodRule struct {
	Name       string   `yaml:"name"`
	Categories []string `yaml:"categories"`
	// Minimum age in months before the food may be introduced
	MinAgeMonths int `yaml:"min_age_months"`
	// Maximum safe quantity in spoons per age bucket
	MaxSpoons map[string]int `yaml:"max_spoons"`
	// Hard-forbidden below this age regardless of other checks, 0 disables
	ForbiddenBelowMonths int `yaml:"forbidden_below_months"`
	// Tags matched against the profile allergy set
	AllergyTags []string `yaml:"allergy_tags"`
	// Optional per-food texture override per bucket
	TextureByAge map[string]string `yaml:"texture_by_age"`
}

type Safety struct {
	NoSaltSugarUntilMonths int `yaml:"no_salt_sugar_until_months"`
	NoHoneyUntilMonths     int `yaml:"no_honey_until_months"`
	NoWholeNutsUntilMonths int `yaml:"no_whole_nuts_until_months"`
}

type SafeDefault struct {
	Dish    string `yaml:"dish"`
	Spoons  int    `yaml:"spoons"`
	Texture string `yaml:"texture"`
}

// Slot is one proposed meal occasion. The engine only reads Dish, Spoons and
// Texture; Name and Time travel through untouched.
type Slot struct {
	Name    string
	Time    string
	Dish    string
	Spoons  int
	Texture string
	Note    string
}

// Subject is the part of a baby profile the engine needs. Age is already
// floored to whole months at evaluation time.
type Subject struct {
	AgeMonths int
	Allergies []string
}

type RejectReason string

const (
	RejectNone          RejectReason = ""
	RejectHardForbidden RejectReason = "hard_forbidden"
	RejectTooYoung      RejectReason = "too_young"
	RejectAllergy       RejectReason = "allergy"
	RejectBlocklist     RejectReason = "blocklist"
)

// Decision is the outcome of a single evaluation. Exactly one of the accepted
// and rejected shapes applies: Accepted carries the possibly adjusted Slot,
// rejection carries a Reason and an optional Substitute.
type Decision struct {
	Accepted   bool
	Slot       Slot
	Reason     RejectReason
	Substitute *Slot
	// Unverified marks a food absent from the catalog that passed the keyword
	// blocklist, for observability only
	Unverified bool
}
