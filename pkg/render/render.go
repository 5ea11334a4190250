// Package render turns a scene model into the four prompt artifacts: the
// Indonesian narrative, the English narrative, a system instruction for a
// scriptwriting model and a structured payload for video generation APIs.
//
// Rendering is a pure function of the model. It performs no I/O and holds no
// state, so identical models always render to identical bytes.
package render

import (
	"encoding/json"
	"strconv"

	"veoprompt/pkg/catalog"
	"veoprompt/pkg/scene"
	"veoprompt/pkg/schema"
)

// Output holds all four artifacts of one render.
type Output struct {
	Native    string         `json:"native"`
	Secondary string         `json:"secondary"`
	System    string         `json:"system"`
	Payload   schema.Payload `json:"payload"`
}

// PayloadJSON serializes the payload with two space indentation.
func (o Output) PayloadJSON() string {
	b, err := json.MarshalIndent(o.Payload, "", "  ")
	if err != nil {
		// Payload only holds strings, ints and bools.
		panic(err)
	}
	return string(b)
}

// Unassigned marks a dialogue whose speaker is not in the cast.
const Unassigned = "unassigned"

// speaker is a dialogue line resolved against the cast.
type speaker struct {
	index  int // 1-based; 0 when unresolved
	locale catalog.Locale
}

func (s speaker) resolved() bool { return s.index > 0 }

func (s speaker) payloadID() string {
	if !s.resolved() {
		return Unassigned
	}
	return characterID(s.index)
}

func characterID(index int) string {
	return "char_" + strconv.Itoa(index)
}

// Render produces every artifact from a single resolution pass over m.
func Render(m scene.Model) Output {
	speakers := resolveSpeakers(m)

	native := narrate(m, speakers, langIndonesian)
	secondary := narrate(m, speakers, langEnglish)

	return Output{
		Native:    native.String(),
		Secondary: secondary.String(),
		System:    systemInstruction(m),
		Payload:   buildPayload(m, speakers, secondary),
	}
}

// resolveSpeakers maps each dialogue line to its speaker's index and locale.
func resolveSpeakers(m scene.Model) []speaker {
	index := make(map[string]int, len(m.Characters))
	for i, c := range m.Characters {
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = i
		}
	}

	out := make([]speaker, len(m.Dialogues))
	for i, d := range m.Dialogues {
		ci, ok := index[d.CharacterID]
		if !ok {
			continue
		}
		out[i] = speaker{index: ci + 1, locale: localeOf(m.Characters[ci])}
	}
	return out
}

// localeOf returns the locale resolved when the ethnicity was set. Models
// built by hand may not have one yet.
func localeOf(c scene.Character) catalog.Locale {
	if c.Locale.Kind == catalog.LocaleUnresolved {
		return catalog.ResolveLocale(c.EthnicityLabel())
	}
	return c.Locale
}
