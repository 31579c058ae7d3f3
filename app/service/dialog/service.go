package dialog

import (
	"log/slog"
	"strings"

	"babybites/app/service/profile"

	"github.com/samber/do"
)

const menuText = "Reply with a number:\n" +
	"1. Date of birth\n" +
	"2. Feeding type\n" +
	"3. Diet preferences\n" +
	"4. Allergies\n" +
	"5. Foods introduced\n" +
	"6. Location\n" +
	"7. Current weight (kg)\n" +
	"8. Height (cm)\n" +
	"0. Done"

// Service drives the multi-step UPDATE dialogue, one state per phone number.
// Edits accumulate in a draft and hit the profile store only on exit 0, so a
// CANCEL at any point leaves the stored profile untouched.
type Service struct {
	states     StateStore
	profileSvc *profile.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		states:     do.MustInvoke[StateStore](di),
		profileSvc: do.MustInvoke[*profile.Service](di),
	}, nil
}

// Active reports whether a dialogue is in progress for the phone number.
func (s *Service) Active(phone string) bool {
	_, ok := s.states.Get(phone)

	return ok
}

// Start opens the dialogue and returns the field menu.
func (s *Service) Start(phone string, p profile.Profile) string {
	s.states.Put(phone, State{Step: StepMenu, Draft: p})

	return "Update profile.\n\n" + menuText
}

// Handle processes one inbound message while the dialogue is active. done is
// true when the dialogue ended and the next message goes back to command
// dispatch.
func (s *Service) Handle(phone, text string) (reply string, done bool) {
	st, ok := s.states.Get(phone)
	if !ok {
		return "No update in progress. Send UPDATE to start.", true
	}

	input := strings.TrimSpace(text)
	lower := strings.ToLower(input)

	if lower == "cancel" {
		s.states.Clear(phone)
		return "Update cancelled. Profile unchanged.", true
	}

	if st.Step == StepAwaiting {
		return s.handleValue(phone, st, input, lower)
	}

	return s.handleMenu(phone, st, input, lower)
}

func (s *Service) handleMenu(phone string, st State, input, lower string) (string, bool) {
	if input == "0" {
		s.states.Clear(phone)

		if !st.Dirty {
			return "No changes made. Send PROFILE to view your profile.", true
		}

		if err := s.profileSvc.Save(phone, st.Draft); err != nil {
			slog.Error("Failed to save profile", "phone", phone, "error", err)
			return "Could not save changes, please try again later.", true
		}

		return "Profile updated. Send PROFILE to view.", true
	}

	if lower == "update" {
		return "Update profile.\n\n" + menuText, false
	}

	if field, ok := fieldMenu[input]; ok {
		st.Step = StepAwaiting
		st.Field = field
		s.states.Put(phone, st)

		return fieldPrompt(field), false
	}

	return "Reply with a number 0-8.\n\n" + menuText, false
}

func (s *Service) handleValue(phone string, st State, input, lower string) (string, bool) {
	// UPDATE mid-prompt drops the pending field and re-shows the menu,
	// buffered edits stay.
	if lower == "update" {
		st.Step = StepMenu
		st.Field = ""
		s.states.Put(phone, st)

		return "Update profile.\n\n" + menuText, false
	}

	draft, err := parseField(st.Draft, st.Field, input)
	if err != nil {
		return err.Error() + "\n\n" + fieldPrompt(st.Field), false
	}

	st.Draft = draft
	st.Dirty = true
	st.Step = StepMenu
	st.Field = ""
	s.states.Put(phone, st)

	return "Updated. Change another field, or 0 to save.\n\n" + menuText, false
}
