package scene

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/segmentio/ksuid"

	"veoprompt/pkg/catalog"
	"veoprompt/pkg/schema"
)

var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrDialogueNotFound  = errors.New("dialogue not found")
	ErrUnknownCharacter  = errors.New("dialogue references an unknown character")
	ErrNoCharacters      = errors.New("add a character before adding dialogue")
	ErrAnalysisInFlight  = errors.New("character image is being analyzed")
	ErrDuplicateID       = errors.New("duplicate id")
)

// UIState is per-character state that never reaches the renderer.
type UIState struct {
	Preview     []byte          `json:"-"`
	PreviewType string          `json:"preview_type,omitempty"`
	Analyzing   bool            `json:"analyzing"`
	LastFailure *schema.Failure `json:"last_failure,omitempty"`

	before *Character
}

func (u UIState) HasPreview() bool { return len(u.Preview) > 0 }

// Session holds one scene model in memory together with its UI side table.
// All mutations keep dialogue references pointing at live characters.
type Session struct {
	mu    sync.RWMutex
	model Model
	ui    map[string]*UIState
	newID func() string
}

// NewSession starts with the default environment and one default character.
func NewSession() *Session {
	s := &Session{
		model: Model{
			Environment:    DefaultEnvironment(),
			Characters:     []Character{},
			Dialogues:      []Dialogue{},
			NegativePrompt: DefaultNegativePrompt,
		},
		ui:    make(map[string]*UIState),
		newID: func() string { return ksuid.New().String() },
	}
	s.AddCharacter(CharacterUpdate{})
	return s
}

// Model returns a copy of the current scene.
func (s *Session) Model() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Clone()
}

// Restore replaces the scene. Missing ids are assigned, locales re-resolved,
// and dialogue references checked.
func (s *Session) Restore(m Model) error {
	m = m.Clone()
	seen := make(map[string]struct{}, len(m.Characters))
	for i := range m.Characters {
		c := &m.Characters[i]
		if c.ID == "" {
			c.ID = s.newID()
		}
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("character %s: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = struct{}{}
		c.normalize()
	}
	m.Environment.normalize()
	dialogueIDs := make(map[string]struct{}, len(m.Dialogues))
	for i := range m.Dialogues {
		d := &m.Dialogues[i]
		if d.ID == "" {
			d.ID = s.newID()
		}
		if _, ok := dialogueIDs[d.ID]; ok {
			return fmt.Errorf("dialogue %s: %w", d.ID, ErrDuplicateID)
		}
		dialogueIDs[d.ID] = struct{}{}
		if _, ok := seen[d.CharacterID]; !ok {
			return fmt.Errorf("dialogue %s: %w", d.ID, ErrUnknownCharacter)
		}
	}
	if m.Characters == nil {
		m.Characters = []Character{}
	}
	if m.Dialogues == nil {
		m.Dialogues = []Dialogue{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
	s.ui = make(map[string]*UIState)
	return nil
}

func (s *Session) UpdateEnvironment(u EnvironmentUpdate) Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.apply(&s.model.Environment)
	return s.model.Environment
}

func (s *Session) SetNegativePrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.NegativePrompt = text
}

// AddCharacter appends a character built from the default template with u applied.
func (s *Session) AddCharacter(u CharacterUpdate) Character {
	c := DefaultCharacter()
	u.apply(&c)

	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.newID()
	s.model.Characters = append(s.model.Characters, c)
	return c
}

func (s *Session) UpdateCharacter(id string, u CharacterUpdate) (Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.model.IndexOf(id)
	if i < 0 {
		return Character{}, ErrCharacterNotFound
	}
	if st, ok := s.ui[id]; ok && st.Analyzing {
		return Character{}, ErrAnalysisInFlight
	}
	u.apply(&s.model.Characters[i])
	return s.model.Characters[i], nil
}

// DeleteCharacter removes the character, every dialogue it speaks and its UI state.
// It returns the number of dialogue lines removed along with it.
func (s *Session) DeleteCharacter(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.model.IndexOf(id)
	if i < 0 {
		return 0, ErrCharacterNotFound
	}
	s.model.Characters = slices.Delete(s.model.Characters, i, i+1)
	before := len(s.model.Dialogues)
	s.model.Dialogues = slices.DeleteFunc(s.model.Dialogues, func(d Dialogue) bool {
		return d.CharacterID == id
	})
	delete(s.ui, id)
	return before - len(s.model.Dialogues), nil
}

// AddDialogue appends a line. Without a character id it is assigned to the first character.
func (s *Session) AddDialogue(u DialogueUpdate) (Dialogue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.model.Characters) == 0 {
		return Dialogue{}, ErrNoCharacters
	}
	d := Dialogue{ID: s.newID(), CharacterID: s.model.Characters[0].ID}
	if err := s.applyDialogue(&d, u); err != nil {
		return Dialogue{}, err
	}
	s.model.Dialogues = append(s.model.Dialogues, d)
	return d, nil
}

func (s *Session) UpdateDialogue(id string, u DialogueUpdate) (Dialogue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.model.Dialogues, func(d Dialogue) bool { return d.ID == id })
	if i < 0 {
		return Dialogue{}, ErrDialogueNotFound
	}
	d := s.model.Dialogues[i]
	if err := s.applyDialogue(&d, u); err != nil {
		return Dialogue{}, err
	}
	s.model.Dialogues[i] = d
	return d, nil
}

func (s *Session) DeleteDialogue(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.model.Dialogues, func(d Dialogue) bool { return d.ID == id })
	if i < 0 {
		return ErrDialogueNotFound
	}
	s.model.Dialogues = slices.Delete(s.model.Dialogues, i, i+1)
	return nil
}

func (s *Session) applyDialogue(d *Dialogue, u DialogueUpdate) error {
	if u.CharacterID != nil {
		if s.model.IndexOf(*u.CharacterID) < 0 {
			return ErrUnknownCharacter
		}
		d.CharacterID = *u.CharacterID
	}
	if u.Text != nil {
		d.Text = *u.Text
	}
	return nil
}

// UIState returns a copy of the character's UI state.
func (s *Session) UIState(id string) (UIState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model.IndexOf(id) < 0 {
		return UIState{}, ErrCharacterNotFound
	}
	if st, ok := s.ui[id]; ok {
		out := *st
		out.before = nil
		return out, nil
	}
	return UIState{}, nil
}

// UIStates returns the UI table for every character that has state.
func (s *Session) UIStates() map[string]UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]UIState, len(s.ui))
	for id, st := range s.ui {
		cp := *st
		cp.before = nil
		out[id] = cp
	}
	return out
}

func (s *Session) uiFor(id string) *UIState {
	st, ok := s.ui[id]
	if !ok {
		st = &UIState{}
		s.ui[id] = st
	}
	return st
}

// BeginAnalysis marks the character as being analyzed, stores the preview
// image and remembers the current values so a failure can roll them back.
func (s *Session) BeginAnalysis(id string, preview []byte, previewType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.model.IndexOf(id)
	if i < 0 {
		return ErrCharacterNotFound
	}
	st := s.uiFor(id)
	if st.Analyzing {
		return ErrAnalysisInFlight
	}
	before := s.model.Characters[i]
	st.before = &before
	st.Analyzing = true
	st.LastFailure = nil
	st.Preview = preview
	st.PreviewType = previewType
	return nil
}

// CompleteAnalysis merges analyzer output into the character and clears the
// in-flight flag. The character may have been deleted meanwhile.
func (s *Session) CompleteAnalysis(id string, attrs schema.ImageAttributes) (Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.model.IndexOf(id)
	if i < 0 {
		return Character{}, ErrCharacterNotFound
	}
	c := &s.model.Characters[i]
	Merge(c, attrs)
	st := s.uiFor(id)
	st.Analyzing = false
	st.before = nil
	return *c, nil
}

// FailAnalysis restores the pre-analysis values and records why it failed.
func (s *Session) FailAnalysis(id string, failure schema.Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.model.IndexOf(id)
	if i < 0 {
		return ErrCharacterNotFound
	}
	st := s.uiFor(id)
	if st.before != nil {
		s.model.Characters[i] = *st.before
	}
	st.before = nil
	st.Analyzing = false
	st.LastFailure = &failure
	return nil
}

// Merge copies analyzer output onto c. The race is mapped onto the ethnicity
// catalog, falling back to the other tag with a custom override.
func Merge(c *Character, attrs schema.ImageAttributes) {
	race := strings.TrimSpace(attrs.Race)
	c.Ethnicity, c.CustomEthnicity = catalog.NormalizeEthnicity(race)
	if attrs.Gender == "" {
		c.Gender = catalog.GenderMale
	} else {
		c.Gender = catalog.NormalizeGender(attrs.Gender)
	}
	c.Age = attrs.Age
	c.Outfit = attrs.Outfit
	c.Hairstyle = attrs.Hairstyle
	c.Description = attrs.Description
	c.resolveLocale()
}
