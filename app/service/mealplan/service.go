package mealplan

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"babybites/app/client/generator"
	"babybites/app/rules"
	"babybites/app/service/profile"

	_ "embed"

	"github.com/samber/do"
)

//go:embed system_prompt.txt
var systemPrompt string

//go:embed slot_prompt.txt
var slotPromptTemplate string

// monthWindowDays is the fixed length of the MONTH view.
const monthWindowDays = 30

// Service synthesizes meal plans. Each slot costs at most one generator call;
// every candidate goes through the rule engine and rejected slots fall back
// to a substitute or the age band's safe default, never to an empty slot.
type Service struct {
	gen        generator.Generator
	engine     *rules.Engine
	catalog    *rules.Catalog
	profileSvc *profile.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		gen:        do.MustInvoke[generator.Generator](di),
		engine:     do.MustInvoke[*rules.Engine](di),
		catalog:    do.MustInvoke[*rules.Catalog](di),
		profileSvc: do.MustInvoke[*profile.Service](di),
	}, nil
}

func (s *Service) BuildDailyPlan(ctx context.Context, p profile.Profile) Plan {
	return s.buildPlanFor(ctx, p, time.Now())
}

// BuildMonthlyPlan lazily yields one plan per day of a fixed 30-day window
// starting today. Days are independent, a failed day does not stop the rest.
func (s *Service) BuildMonthlyPlan(ctx context.Context, p profile.Profile) iter.Seq[Plan] {
	start := time.Now()

	return func(yield func(Plan) bool) {
		for day := 0; day < monthWindowDays; day++ {
			if ctx.Err() != nil {
				return
			}
			if !yield(s.buildPlanFor(ctx, p, start.AddDate(0, 0, day))) {
				return
			}
		}
	}
}

func (s *Service) buildPlanFor(ctx context.Context, p profile.Profile, date time.Time) Plan {
	sub := p.RuleSubject(date)

	plan := Plan{
		Date:      date,
		AgeMonths: sub.AgeMonths,
		Slots:     make([]rules.Slot, 0, len(slotTemplates)),
		Note:      s.catalog.Disclaimer(),
	}

	for _, tmpl := range slotTemplates {
		plan.Slots = append(plan.Slots, s.fillSlot(ctx, p, sub, tmpl, date))
	}

	return plan
}

// fillSlot runs the generate-evaluate-fallback pipeline for one slot. A slot
// failure never aborts the rest of the plan.
func (s *Service) fillSlot(ctx context.Context, p profile.Profile, sub rules.Subject, tmpl rules.Slot, date time.Time) rules.Slot {
	proposed, err := s.proposeSlot(ctx, p, tmpl, date)
	if err != nil {
		slog.Warn("Slot generation failed, using safe default",
			"slot", tmpl.Name,
			"error", err)

		return s.defaultSlot(sub, tmpl)
	}

	decision := s.engine.Evaluate(sub, proposed)

	if decision.Accepted {
		slot := decision.Slot
		if decision.Unverified {
			slog.Info("Unverified dish passed blocklist",
				"slot", tmpl.Name,
				"dish", slot.Dish)
		}
		// Unverified foods have no rule to clamp against, so a missing
		// quantity borrows the age band's default.
		if slot.Spoons <= 0 {
			slot.Spoons = s.catalog.SafeDefault(sub.AgeMonths).Spoons
		}

		return slot
	}

	slog.Info("Slot rejected by rule engine",
		"slot", tmpl.Name,
		"dish", proposed.Dish,
		"reason", decision.Reason,
		"substitute", decision.Substitute != nil)

	// Substitute comes from the catalog, no second generator call.
	if decision.Substitute != nil {
		subst := *decision.Substitute
		subst.Name = tmpl.Name
		subst.Time = tmpl.Time

		return subst
	}

	return s.defaultSlot(sub, tmpl)
}

func (s *Service) proposeSlot(ctx context.Context, p profile.Profile, tmpl rules.Slot, date time.Time) (rules.Slot, error) {
	templateValues := s.profileSvc.PromptContext(p, date)
	templateValues["slot_name"] = tmpl.Name
	templateValues["slot_time"] = tmpl.Time
	templateValues["allowed_textures"] = strings.Join(s.catalog.AllowedTextures(p.AgeInMonths(date)), ", ")

	prompt := slotPromptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	raw, err := s.gen.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return rules.Slot{}, err
	}

	return parseSlotResponse(raw, tmpl)
}

func (s *Service) defaultSlot(sub rules.Subject, tmpl rules.Slot) rules.Slot {
	def := s.catalog.SafeDefault(sub.AgeMonths)

	return rules.Slot{
		Name:    tmpl.Name,
		Time:    tmpl.Time,
		Dish:    def.Dish,
		Spoons:  def.Spoons,
		Texture: def.Texture,
	}
}

type slotResponse struct {
	Dish    string          `json:"dish"`
	Spoons  json.RawMessage `json:"spoons"`
	Texture string          `json:"texture"`
	Note    string          `json:"note"`
}

// parseSlotResponse reads the generator's JSON leniently. A reply that is not
// JSON at all is treated as a bare dish name, the engine normalizes quantity
// and texture afterwards.
func parseSlotResponse(raw string, tmpl rules.Slot) (rules.Slot, error) {
	slot := rules.Slot{Name: tmpl.Name, Time: tmpl.Time}

	var resp slotResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		dish := strings.TrimSpace(raw)
		if dish == "" {
			return rules.Slot{}, fmt.Errorf("empty generator response")
		}
		slot.Dish = firstLine(dish)

		return slot, nil
	}

	slot.Dish = strings.TrimSpace(resp.Dish)
	if slot.Dish == "" {
		return rules.Slot{}, fmt.Errorf("generator response has no dish")
	}

	slot.Spoons = parseSpoons(resp.Spoons)
	slot.Texture = strings.TrimSpace(resp.Texture)
	slot.Note = strings.TrimSpace(resp.Note)

	return slot, nil
}

// parseSpoons accepts both a JSON number and strings like "2-3 spoons",
// taking the first integer it finds.
func parseSpoons(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}

	digits := strings.FieldsFunc(s, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(digits) == 0 {
		return 0
	}

	n, _ = strconv.Atoi(digits[0])

	return n
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}

	return s
}
