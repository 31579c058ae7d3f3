package rules

import (
	"strings"

	"github.com/elliotchance/pie/v2"
)

// Keyword blocklist for foods absent from the catalog. These must never pass
// through below the safety thresholds even when the generator invents a dish
// the catalog has no rule for.
var forbiddenBefore12m = []string{"salt", "sugar", "honey", "jaggery", "gur"}

var forbiddenWholeNuts = []string{"whole nuts", "whole peanuts", "whole almonds", "whole cashews"}

// Engine validates proposed meal slots against the catalog. It never trusts
// generated content: every proposal is gated on age, allergies and the hard
// safety thresholds, and quantities and textures are adjusted downward. Given
// the same subject, slot and catalog the outcome is always identical.
type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

func (e *Engine) Evaluate(sub Subject, proposed Slot) Decision {
	dishLower := strings.ToLower(proposed.Dish)
	allergies := normalizeTags(sub.Allergies)

	rule, found := e.catalog.Lookup(proposed.Dish)

	// Allergy first: an allergen is rejected outright with no substitute
	// search, the caller is expected to prompt for an alternative.
	if matchAllergy(rule, dishLower, allergies) {
		return Decision{Reason: RejectAllergy, Slot: proposed}
	}

	if !found {
		if reason, blocked := e.checkBlocklist(sub.AgeMonths, dishLower); blocked {
			return Decision{Reason: reason, Slot: proposed}
		}

		// Unverified dishes pass through with adjusted texture, flagged for
		// observability.
		slot := proposed
		slot.Texture = e.safeTexture(FoodRule{}, sub.AgeMonths, slot.Texture)

		return Decision{Accepted: true, Slot: slot, Unverified: true}
	}

	if rule.ForbiddenBelowMonths > 0 && sub.AgeMonths < rule.ForbiddenBelowMonths {
		return Decision{
			Reason:     RejectHardForbidden,
			Slot:       proposed,
			Substitute: e.findSubstitute(sub, rule, allergies),
		}
	}

	if sub.AgeMonths < rule.MinAgeMonths {
		return Decision{
			Reason:     RejectTooYoung,
			Slot:       proposed,
			Substitute: e.findSubstitute(sub, rule, allergies),
		}
	}

	// The keyword blocklist still applies to catalog hits. A known food
	// prepared with a forbidden ingredient ("salted rice porridge") is just
	// as unsafe as an unknown one.
	if reason, blocked := e.checkBlocklist(sub.AgeMonths, dishLower); blocked {
		return Decision{
			Reason:     reason,
			Slot:       proposed,
			Substitute: e.findSubstitute(sub, rule, allergies),
		}
	}

	slot := proposed
	slot.Spoons = e.clampSpoons(rule, sub.AgeMonths, slot.Spoons)
	slot.Texture = e.safeTexture(rule, sub.AgeMonths, slot.Texture)

	return Decision{Accepted: true, Slot: slot}
}

func (e *Engine) checkBlocklist(ageMonths int, dishLower string) (RejectReason, bool) {
	safety := e.catalog.Safety()

	if ageMonths < safety.NoSaltSugarUntilMonths || ageMonths < safety.NoHoneyUntilMonths {
		if containsAny(dishLower, forbiddenBefore12m) {
			return RejectBlocklist, true
		}
	}

	if ageMonths < safety.NoWholeNutsUntilMonths && containsAny(dishLower, forbiddenWholeNuts) {
		return RejectBlocklist, true
	}

	return RejectNone, false
}

// findSubstitute looks for one catalog food matching the age band that shares
// at least one category with the rejected food. Catalog order keeps the
// search deterministic.
func (e *Engine) findSubstitute(sub Subject, rejected FoodRule, allergies []string) *Slot {
	idx := pie.FindFirstUsing(e.catalog.Foods(), func(f FoodRule) bool {
		if f.Name == rejected.Name {
			return false
		}
		if sub.AgeMonths < f.MinAgeMonths {
			return false
		}
		if f.ForbiddenBelowMonths > 0 && sub.AgeMonths < f.ForbiddenBelowMonths {
			return false
		}
		if matchAllergy(f, strings.ToLower(f.Name), allergies) {
			return false
		}

		return len(pie.Intersect(f.Categories, rejected.Categories)) > 0
	})
	if idx < 0 {
		return nil
	}

	f := e.catalog.Foods()[idx]
	bucket := e.catalog.AgeBucket(sub.AgeMonths)

	return &Slot{
		Dish:    f.Name,
		Spoons:  f.maxSpoonsFor(bucket),
		Texture: e.safeTexture(f, sub.AgeMonths, ""),
	}
}

func (e *Engine) clampSpoons(rule FoodRule, ageMonths, proposed int) int {
	maxSpoons := rule.maxSpoonsFor(e.catalog.AgeBucket(ageMonths))
	if maxSpoons <= 0 {
		return proposed
	}
	if proposed <= 0 || proposed > maxSpoons {
		return maxSpoons
	}

	return proposed
}

// safeTexture downgrades a proposed texture that is coarser than allowed for
// the age, and replaces unknown textures with the finest allowed one. A
// per-food texture override for the bucket takes precedence.
func (e *Engine) safeTexture(rule FoodRule, ageMonths int, proposed string) string {
	bucket := e.catalog.AgeBucket(ageMonths)
	if t, ok := rule.TextureByAge[bucket]; ok {
		return t
	}

	allowed := e.catalog.AllowedTextures(ageMonths)
	coarsest := allowed[len(allowed)-1]

	rank, known := textureRank[strings.ToLower(strings.TrimSpace(proposed))]
	if !known {
		return allowed[0]
	}
	if rank > textureRank[coarsest] {
		return coarsest
	}

	return strings.ToLower(strings.TrimSpace(proposed))
}

func matchAllergy(rule FoodRule, dishLower string, allergies []string) bool {
	tags := normalizeTags(rule.AllergyTags)

	for _, a := range allergies {
		if a == "" {
			continue
		}
		if pie.Contains(tags, a) || strings.Contains(dishLower, a) {
			return true
		}
	}

	return false
}

func containsAny(s string, keywords []string) bool {
	return pie.Any(keywords, func(k string) bool {
		return strings.Contains(s, k)
	})
}

func normalizeTags(tags []string) []string {
	return pie.Map(tags, func(t string) string {
		return strings.ToLower(strings.TrimSpace(t))
	})
}
