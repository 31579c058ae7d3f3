package router

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"babybites/app/client/generator"
	"babybites/app/rules"
	"babybites/app/service/dialog"
	"babybites/app/service/mealplan"
	"babybites/app/service/profile"
	"babybites/app/service/story"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone = "919876543210"

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.reply, g.err
}

func newTestRouter(t *testing.T, gen generator.Generator) (*Service, *profile.MemoryStore) {
	t.Helper()

	catalog, err := rules.LoadCatalogFile("")
	require.NoError(t, err)

	store := profile.NewMemoryStore()

	di := do.New()
	do.ProvideValue(di, catalog)
	do.ProvideValue(di, rules.NewEngine(catalog))
	do.ProvideValue[generator.Generator](di, gen)
	do.ProvideValue[profile.Store](di, store)
	do.ProvideValue[dialog.StateStore](di, dialog.NewMemoryStateStore())
	do.Provide(di, profile.New)
	do.Provide(di, dialog.New)
	do.Provide(di, mealplan.New)
	do.Provide(di, story.New)
	do.Provide(di, New)

	return do.MustInvoke[*Service](di), store
}

func TestUnknownTextYieldsHelp(t *testing.T) {
	svc, _ := newTestRouter(t, &stubGenerator{})

	reply := svc.HandleCommand(context.Background(), phone, "how do I feed my baby?")
	assert.Contains(t, reply, "Commands: START, PROFILE, UPDATE, TODAY, MONTH, STORY")
}

func TestCommandsAreCaseInsensitive(t *testing.T) {
	svc, _ := newTestRouter(t, &stubGenerator{reply: "a gentle story"})

	reply := svc.HandleCommand(context.Background(), phone, "  StArT  ")
	assert.Contains(t, reply, "Welcome")

	reply = svc.HandleCommand(context.Background(), phone, "PROFILE")
	assert.Contains(t, reply, "*Baby Profile*")

	reply = svc.HandleCommand(context.Background(), phone, "story")
	assert.Contains(t, reply, "*Bedtime Story*")
}

func TestStartTwiceKeepsExistingProfile(t *testing.T) {
	svc, store := newTestRouter(t, &stubGenerator{})

	svc.HandleCommand(context.Background(), phone, "start")

	first, err := store.Get(phone)
	require.NoError(t, err)

	reply := svc.HandleCommand(context.Background(), phone, "start")
	assert.Contains(t, reply, "already exists")

	second, err := store.Get(phone)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCommandsRequireProfile(t *testing.T) {
	svc, _ := newTestRouter(t, &stubGenerator{})

	for _, cmd := range []string{"today", "month", "story", "update"} {
		reply := svc.HandleCommand(context.Background(), phone, cmd)
		assert.Contains(t, reply, "Send START", "command %q", cmd)
	}
}

func TestTodayReturnsFullPlan(t *testing.T) {
	svc, store := newTestRouter(t, &stubGenerator{reply: `{"dish": "rice porridge", "spoons": 3, "texture": "puree"}`})

	require.NoError(t, store.Put(phone, profile.Profile{
		DOB:         time.Now().AddDate(0, -7, -1),
		FeedingType: profile.FeedingMixed,
	}))

	reply := svc.HandleCommand(context.Background(), phone, "today")
	assert.Contains(t, reply, "*Meal Plan")
	assert.Contains(t, reply, "breakfast")
	assert.Contains(t, reply, "evening")
	assert.Contains(t, reply, "rice porridge")
}

func TestMonthReturnsThirtySummaries(t *testing.T) {
	svc, store := newTestRouter(t, &stubGenerator{reply: `{"dish": "rice porridge", "spoons": 3, "texture": "puree"}`})

	require.NoError(t, store.Put(phone, profile.Profile{
		DOB:         time.Now().AddDate(0, -9, -1),
		FeedingType: profile.FeedingMixed,
	}))

	reply := svc.HandleCommand(context.Background(), phone, "month")
	assert.Contains(t, reply, "*Monthly Meal Plan*")
	assert.Equal(t, 30, strings.Count(reply, ": rice porridge"))
}

func TestStoryFallsBackOnGeneratorError(t *testing.T) {
	svc, store := newTestRouter(t, &stubGenerator{err: errors.New("timeout")})

	require.NoError(t, store.Put(phone, profile.Profile{
		DOB:         time.Now().AddDate(0, -10, -1),
		FeedingType: profile.FeedingMixed,
	}))

	reply := svc.HandleCommand(context.Background(), phone, "story")
	assert.Contains(t, reply, "*Bedtime Story*")
	assert.Contains(t, reply, "The end.")
}

func TestUpdateRoutesIntoDialogue(t *testing.T) {
	svc, store := newTestRouter(t, &stubGenerator{})

	svc.HandleCommand(context.Background(), phone, "start")

	reply := svc.HandleCommand(context.Background(), phone, "update")
	assert.Contains(t, reply, "1. Date of birth")

	// While the dialogue is active, input goes to the state machine, not
	// command dispatch.
	reply = svc.HandleCommand(context.Background(), phone, "6")
	assert.Contains(t, reply, "city/location")

	reply = svc.HandleCommand(context.Background(), phone, "Pune")
	assert.Contains(t, reply, "Updated")

	reply = svc.HandleCommand(context.Background(), phone, "0")
	assert.Contains(t, reply, "Profile updated")

	stored, err := store.Get(phone)
	require.NoError(t, err)
	assert.Equal(t, "Pune", stored.Location)

	// Dialogue is over, keywords dispatch again.
	reply = svc.HandleCommand(context.Background(), phone, "gibberish")
	assert.Contains(t, reply, "Commands:")
}

func TestRepliesNeverEmpty(t *testing.T) {
	svc, _ := newTestRouter(t, &stubGenerator{err: errors.New("down")})

	inputs := []string{"start", "profile", "update", "today", "month", "story", "", "   ", "hello"}
	for _, input := range inputs {
		reply := svc.HandleCommand(context.Background(), phone, input)
		assert.NotEmpty(t, reply, "input %q", input)
	}
}
