package mealplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"babybites/app/client/generator"
	"babybites/app/rules"
	"babybites/app/service/profile"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	g.calls++

	if g.err != nil {
		return "", g.err
	}

	return g.reply, nil
}

func newTestService(t *testing.T, gen generator.Generator) *Service {
	t.Helper()

	catalog, err := rules.LoadCatalogFile("")
	require.NoError(t, err)

	di := do.New()
	do.ProvideValue(di, catalog)
	do.ProvideValue(di, rules.NewEngine(catalog))
	do.ProvideValue[generator.Generator](di, gen)
	do.ProvideValue[profile.Store](di, profile.NewMemoryStore())
	do.Provide(di, profile.New)
	do.Provide(di, New)

	return do.MustInvoke[*Service](di)
}

func babyOfMonths(months int) profile.Profile {
	return profile.Profile{
		DOB:         time.Now().AddDate(0, -months, -1),
		FeedingType: profile.FeedingMixed,
	}
}

func assertFullPlan(t *testing.T, plan Plan) {
	t.Helper()

	require.Len(t, plan.Slots, 4)

	names := []string{"breakfast", "mid_morning", "lunch", "evening"}
	for i, slot := range plan.Slots {
		assert.Equal(t, names[i], slot.Name)
		assert.NotEmpty(t, slot.Dish, "slot %s", slot.Name)
		assert.NotZero(t, slot.Spoons, "slot %s", slot.Name)
		assert.NotEmpty(t, slot.Texture, "slot %s", slot.Name)
	}
}

func TestDailyPlanHasFourFullSlots(t *testing.T) {
	gen := &stubGenerator{reply: `{"dish": "rice porridge", "spoons": 3, "texture": "puree"}`}
	svc := newTestService(t, gen)

	plan := svc.BuildDailyPlan(context.Background(), babyOfMonths(7))

	assertFullPlan(t, plan)
	assert.Equal(t, 7, plan.AgeMonths)
	assert.Equal(t, 4, gen.calls, "exactly one generator call per slot")
	assert.Contains(t, plan.Note, "pediatrician")
}

func TestGeneratorFailureFallsBackToSafeDefault(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream timeout")}
	svc := newTestService(t, gen)

	plan := svc.BuildDailyPlan(context.Background(), babyOfMonths(4))

	assertFullPlan(t, plan)
	for _, slot := range plan.Slots {
		assert.Equal(t, "plain rice water", slot.Dish)
	}
}

func TestRejectedProposalUsesSubstituteWithoutSecondCall(t *testing.T) {
	// oats porridge needs 8 months, the baby is 6, rice porridge substitutes.
	gen := &stubGenerator{reply: `{"dish": "oats porridge", "spoons": 3, "texture": "puree"}`}
	svc := newTestService(t, gen)

	plan := svc.BuildDailyPlan(context.Background(), babyOfMonths(6))

	assertFullPlan(t, plan)
	for _, slot := range plan.Slots {
		assert.Equal(t, "rice porridge", slot.Dish)
	}
	assert.Equal(t, 4, gen.calls)
}

func TestForbiddenProposalWithNoSubstituteUsesSafeDefault(t *testing.T) {
	gen := &stubGenerator{reply: `{"dish": "honey", "spoons": 1, "texture": "puree"}`}
	svc := newTestService(t, gen)

	plan := svc.BuildDailyPlan(context.Background(), babyOfMonths(7))

	assertFullPlan(t, plan)
	for _, slot := range plan.Slots {
		assert.Equal(t, "plain rice porridge", slot.Dish)
	}
}

func TestBareTextReplyTreatedAsDish(t *testing.T) {
	gen := &stubGenerator{reply: "mashed banana with a pinch of cardamom\nserve warm"}
	svc := newTestService(t, gen)

	plan := svc.BuildDailyPlan(context.Background(), babyOfMonths(7))

	assertFullPlan(t, plan)
	assert.Equal(t, "mashed banana with a pinch of cardamom", plan.Slots[0].Dish)
}

func TestMonthlyPlanYieldsFixedWindow(t *testing.T) {
	gen := &stubGenerator{reply: `{"dish": "rice porridge", "spoons": 3, "texture": "puree"}`}
	svc := newTestService(t, gen)

	var plans []Plan
	for plan := range svc.BuildMonthlyPlan(context.Background(), babyOfMonths(9)) {
		plans = append(plans, plan)
	}

	require.Len(t, plans, 30)
	for i, plan := range plans {
		assertFullPlan(t, plan)
		if i > 0 {
			assert.Equal(t, plans[i-1].Date.AddDate(0, 0, 1), plan.Date)
		}
	}
}

func TestMonthlyPlanStopsOnCancelledContext(t *testing.T) {
	gen := &stubGenerator{reply: `{"dish": "rice porridge", "spoons": 3, "texture": "puree"}`}
	svc := newTestService(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := 0
	for range svc.BuildMonthlyPlan(ctx, babyOfMonths(9)) {
		count++
		if count == 3 {
			cancel()
		}
	}

	assert.Equal(t, 3, count)
}

func TestParseSlotResponse(t *testing.T) {
	tmpl := rules.Slot{Name: "lunch", Time: "12:00-14:00"}

	slot, err := parseSlotResponse(`{"dish": "curd rice", "spoons": "2-3 spoons", "texture": "soft_chunks"}`, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "curd rice", slot.Dish)
	assert.Equal(t, 2, slot.Spoons)
	assert.Equal(t, "soft_chunks", slot.Texture)
	assert.Equal(t, "lunch", slot.Name)

	_, err = parseSlotResponse(`{"spoons": 2}`, tmpl)
	assert.Error(t, err)

	_, err = parseSlotResponse("", tmpl)
	assert.Error(t, err)
}

func TestWhatsAppText(t *testing.T) {
	plan := Plan{
		Date:      time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		AgeMonths: 8,
		Slots: []rules.Slot{
			{Name: "breakfast", Time: "07:00-09:00", Dish: "ragi porridge", Spoons: 3, Texture: "puree"},
		},
		Note: "note text",
	}

	text := plan.WhatsAppText()
	assert.Contains(t, text, "*Meal Plan - 2026-09-01*")
	assert.Contains(t, text, "*breakfast* (07:00-09:00)")
	assert.Contains(t, text, "Qty: 3 spoons | Texture: puree")
	assert.Contains(t, text, "_note text_")
}
