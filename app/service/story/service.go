package story

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"babybites/app/client/generator"
	"babybites/app/rules"
	"babybites/app/service/profile"

	_ "embed"

	"github.com/samber/do"
)

//go:embed story_prompt.txt
var storyPromptTemplate string

const systemPrompt = "You are a gentle storyteller for babies and toddlers. " +
	"Stories are warm, soothing, short, with simple language and no scary elements."

const fallbackStory = "Once upon a time, in a cozy home in India, a little baby " +
	"yawned a tiny yawn, cuddled close, and drifted off to the softest dreams. The end."

type Service struct {
	gen     generator.Generator
	catalog *rules.Catalog
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		gen:     do.MustInvoke[generator.Generator](di),
		catalog: do.MustInvoke[*rules.Catalog](di),
	}, nil
}

// Tell generates a bedtime story for the baby's age bucket. Generation
// failure falls back to a fixed cozy story, never an error for the user.
func (s *Service) Tell(ctx context.Context, p profile.Profile) string {
	templateValues := map[string]any{
		"age_bucket": s.catalog.AgeBucket(p.AgeInMonths(time.Now())),
		"language":   "en",
	}

	prompt := storyPromptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	text, err := s.gen.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		slog.Warn("Story generation failed, using fallback", "error", err)
		text = ""
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = fallbackStory
	}

	return "*Bedtime Story*\n\n" + text
}
