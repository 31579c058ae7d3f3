package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"babybites/app/service/dialog"
	"babybites/app/service/mealplan"
	"babybites/app/service/profile"
	"babybites/app/service/story"

	"github.com/samber/do"
)

const helpText = "Commands: START, PROFILE, UPDATE, TODAY, MONTH, STORY\n" +
	"Send one of these for baby nutrition guidance."

const noProfileText = "No profile found. Send START to create your baby's profile first."

// Service routes one inbound message to either the active UPDATE dialogue or
// command dispatch. Keywords are case-insensitive and whitespace-trimmed.
// Every path returns non-empty reply text.
type Service struct {
	profileSvc *profile.Service
	dialogSvc  *dialog.Service
	planSvc    *mealplan.Service
	storySvc   *story.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		profileSvc: do.MustInvoke[*profile.Service](di),
		dialogSvc:  do.MustInvoke[*dialog.Service](di),
		planSvc:    do.MustInvoke[*mealplan.Service](di),
		storySvc:   do.MustInvoke[*story.Service](di),
	}, nil
}

func (s *Service) HandleCommand(ctx context.Context, phone, raw string) string {
	if s.dialogSvc.Active(phone) {
		reply, _ := s.dialogSvc.Handle(phone, raw)
		return reply
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "start":
		return s.handleStart(phone)
	case "profile":
		return s.handleProfile(phone)
	case "update":
		return s.handleUpdate(phone)
	case "today":
		return s.handleToday(ctx, phone)
	case "month":
		return s.handleMonth(ctx, phone)
	case "story":
		return s.handleStory(ctx, phone)
	default:
		return helpText
	}
}

func (s *Service) handleStart(phone string) string {
	existing, err := s.profileSvc.Get(phone)
	if err == nil {
		return "Profile already exists.\n" + s.profileSvc.Format(existing) +
			"\n\nSend PROFILE to view, TODAY for meal plan, STORY for bedtime story."
	}
	if !errors.Is(err, profile.ErrNotFound) {
		slog.Error("Failed to load profile", "phone", phone, "error", err)
		return "Something went wrong, please try again later."
	}

	if _, err = s.profileSvc.CreateDefault(phone); err != nil {
		slog.Error("Failed to create profile", "phone", phone, "error", err)
		return "Something went wrong, please try again later."
	}

	return "Welcome! A default profile was created.\n" +
		"Send PROFILE to view it. Send UPDATE to fill in your baby's details.\n" +
		"Commands: PROFILE, UPDATE, TODAY, MONTH, STORY"
}

func (s *Service) handleProfile(phone string) string {
	p, err := s.profileSvc.Get(phone)
	if err != nil {
		return "No profile. Send START to create one."
	}

	return s.profileSvc.Format(p)
}

func (s *Service) handleUpdate(phone string) string {
	p, err := s.profileSvc.Get(phone)
	if err != nil {
		return noProfileText
	}

	return s.dialogSvc.Start(phone, p)
}

func (s *Service) handleToday(ctx context.Context, phone string) string {
	p, err := s.profileSvc.Get(phone)
	if err != nil {
		return noProfileText
	}

	return s.planSvc.BuildDailyPlan(ctx, p).WhatsAppText()
}

func (s *Service) handleMonth(ctx context.Context, phone string) string {
	p, err := s.profileSvc.Get(phone)
	if err != nil {
		return noProfileText
	}

	var builder strings.Builder
	builder.WriteString("*Monthly Meal Plan*\n\n")

	for plan := range s.planSvc.BuildMonthlyPlan(ctx, p) {
		builder.WriteString(plan.SummaryLine())
		builder.WriteString("\n")
	}

	builder.WriteString("\nSend TODAY for the full plan of any single day.")

	return builder.String()
}

func (s *Service) handleStory(ctx context.Context, phone string) string {
	p, err := s.profileSvc.Get(phone)
	if err != nil {
		return noProfileText
	}

	return s.storySvc.Tell(ctx, p)
}
