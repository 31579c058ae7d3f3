package rules

import (
	"os"
	"strings"

	_ "embed"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

//go:embed food_rules.yaml
var defaultRulesYAML []byte

type catalogFile struct {
	AgeBuckets   []AgeBucket            `yaml:"age_buckets"`
	TextureByAge map[string][]string    `yaml:"texture_by_age"`
	Safety       Safety                 `yaml:"safety"`
	SafeDefaults map[string]SafeDefault `yaml:"safe_defaults"`
	Disclaimer   string                 `yaml:"disclaimer"`
	Foods        []FoodRule             `yaml:"foods"`
}

// Catalog is the immutable age-indexed food rule table. It is loaded once at
// startup and shared by reference across all requests, no mutation API exists.
type Catalog struct {
	buckets      []AgeBucket
	textureByAge map[string][]string
	safety       Safety
	safeDefaults map[string]SafeDefault
	disclaimer   string
	foods        []FoodRule
	byName       map[string]int
}

func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, oops.Code("config_error").Errorf("failed to parse food rules: %w", err)
	}

	c := &Catalog{
		buckets:      file.AgeBuckets,
		textureByAge: file.TextureByAge,
		safety:       file.Safety,
		safeDefaults: file.SafeDefaults,
		disclaimer:   file.Disclaimer,
		foods:        file.Foods,
		byName:       make(map[string]int, len(file.Foods)),
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	for i, f := range c.foods {
		c.byName[normalizeFood(f.Name)] = i
	}

	return c, nil
}

func LoadCatalogFile(path string) (*Catalog, error) {
	if path == "" {
		return LoadCatalog(defaultRulesYAML)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("config_error").Errorf("failed to read food rules file: %w", err)
	}

	return LoadCatalog(data)
}

func (c *Catalog) validate() error {
	errBuilder := oops.Code("config_error")

	if len(c.buckets) == 0 {
		return errBuilder.Errorf("no age buckets defined")
	}

	maxSafeAge := 0
	bucketNames := make(map[string]bool, len(c.buckets))

	for _, b := range c.buckets {
		if b.MinMonths >= b.MaxMonths {
			return errBuilder.Errorf("age bucket %q: min_months %d >= max_months %d", b.Name, b.MinMonths, b.MaxMonths)
		}
		if bucketNames[b.Name] {
			return errBuilder.Errorf("duplicate age bucket %q", b.Name)
		}
		bucketNames[b.Name] = true
		if b.MaxMonths > maxSafeAge {
			maxSafeAge = b.MaxMonths
		}
	}

	for bucket, textures := range c.textureByAge {
		if !bucketNames[bucket] {
			return errBuilder.Errorf("texture_by_age references unknown age bucket %q", bucket)
		}
		for _, t := range textures {
			if _, ok := textureRank[t]; !ok {
				return errBuilder.Errorf("unknown texture %q for bucket %q", t, bucket)
			}
		}
	}

	for bucket := range c.safeDefaults {
		if !bucketNames[bucket] {
			return errBuilder.Errorf("safe_defaults references unknown age bucket %q", bucket)
		}
	}

	seen := make(map[string]bool, len(c.foods))

	for _, f := range c.foods {
		key := normalizeFood(f.Name)
		if key == "" {
			return errBuilder.Errorf("food with empty name")
		}
		if seen[key] {
			return errBuilder.Errorf("duplicate food key %q", key)
		}
		seen[key] = true

		if f.MinAgeMonths > maxSafeAge {
			return errBuilder.Errorf("food %q: min age %d exceeds maximum safe age %d", f.Name, f.MinAgeMonths, maxSafeAge)
		}

		for bucket := range f.MaxSpoons {
			if !bucketNames[bucket] {
				return errBuilder.Errorf("food %q: max_spoons references unknown age bucket %q", f.Name, bucket)
			}
		}
		for bucket, texture := range f.TextureByAge {
			if !bucketNames[bucket] {
				return errBuilder.Errorf("food %q: texture_by_age references unknown age bucket %q", f.Name, bucket)
			}
			if _, ok := textureRank[texture]; !ok {
				return errBuilder.Errorf("food %q: unknown texture %q", f.Name, texture)
			}
		}
	}

	return nil
}

// Lookup finds the rule for a proposed dish. Exact normalized match wins,
// otherwise the first catalog rule whose name occurs inside the dish text
// matches, so "ragi porridge with ghee" still resolves to "ragi porridge".
func (c *Catalog) Lookup(dish string) (FoodRule, bool) {
	key := normalizeFood(dish)

	if i, ok := c.byName[key]; ok {
		return c.foods[i], true
	}

	idx := pie.FindFirstUsing(c.foods, func(f FoodRule) bool {
		return strings.Contains(key, normalizeFood(f.Name))
	})
	if idx < 0 {
		return FoodRule{}, false
	}

	return c.foods[idx], true
}

func (c *Catalog) AgeBucket(ageMonths int) string {
	for _, b := range c.buckets {
		if ageMonths >= b.MinMonths && ageMonths < b.MaxMonths {
			return b.Name
		}
	}

	return c.buckets[len(c.buckets)-1].Name
}

// AllowedTextures lists textures permitted for the age, ordered finest first.
func (c *Catalog) AllowedTextures(ageMonths int) []string {
	textures := c.textureByAge[c.AgeBucket(ageMonths)]
	if len(textures) == 0 {
		return []string{TexturePuree}
	}

	return textures
}

func (c *Catalog) Safety() Safety {
	return c.safety
}

func (c *Catalog) Disclaimer() string {
	return c.disclaimer
}

// SafeDefault returns the fixed fallback slot content for the age, used when
// a proposal is rejected with no substitute or generation fails.
func (c *Catalog) SafeDefault(ageMonths int) SafeDefault {
	if d, ok := c.safeDefaults[c.AgeBucket(ageMonths)]; ok {
		return d
	}

	return SafeDefault{Dish: "plain rice water", Spoons: 2, Texture: TexturePuree}
}

// Foods returns the rule list in catalog order. Callers must not mutate it.
func (c *Catalog) Foods() []FoodRule {
	return c.foods
}

// maxSpoonsFor returns the quantity ceiling for a bucket, falling back to the
// largest configured ceiling. Zero means the rule carries no quantity cap.
func (f FoodRule) maxSpoonsFor(bucket string) int {
	if n, ok := f.MaxSpoons[bucket]; ok {
		return n
	}

	maxSpoons := 0
	for _, n := range f.MaxSpoons {
		if n > maxSpoons {
			maxSpoons = n
		}
	}

	return maxSpoons
}

func normalizeFood(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
