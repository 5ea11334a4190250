package scene

import (
	"slices"

	"veoprompt/pkg/catalog"
)

// Character is everything about a cast member that reaches the rendered prompts.
// Preview images and analysis state live in the session's UI table instead.
type Character struct {
	ID              string         `json:"id"`
	Ethnicity       string         `json:"ethnicity"`
	CustomEthnicity string         `json:"custom_ethnicity,omitempty"`
	Gender          string         `json:"gender"`
	Age             string         `json:"age"`
	Outfit          string         `json:"outfit"`
	Hairstyle       string         `json:"hairstyle"`
	Voice           string         `json:"voice"`
	Description     string         `json:"description"`
	LookAtCamera    bool           `json:"look_at_camera"`
	Locale          catalog.Locale `json:"locale"`
}

// EthnicityLabel is the ethnicity as written into prompts: the custom override
// for the other tag, or for tags outside the catalog when an override exists.
func (c Character) EthnicityLabel() string {
	if c.Ethnicity == catalog.OtherEthnicity {
		return c.CustomEthnicity
	}
	if c.CustomEthnicity != "" {
		if _, ok := catalog.MatchEthnicity(c.Ethnicity); !ok {
			return c.CustomEthnicity
		}
	}
	return c.Ethnicity
}

func (c *Character) resolveLocale() {
	c.Locale = catalog.ResolveLocale(c.EthnicityLabel())
}

type Dialogue struct {
	ID          string `json:"id"`
	CharacterID string `json:"character_id"`
	Text        string `json:"text"`
}

type Environment struct {
	Description    string `json:"description"`
	Style          string `json:"style"`
	Lighting       string `json:"lighting"`
	CameraAngle    string `json:"camera_angle"`
	ShotType       string `json:"shot_type"`
	CameraMovement string `json:"camera_movement"`
}

// Model is the complete scene description consumed by the renderer.
type Model struct {
	Environment    Environment `json:"environment"`
	Characters     []Character `json:"characters"`
	Dialogues      []Dialogue  `json:"dialogues"`
	NegativePrompt string      `json:"negative_prompt"`
}

// IndexOf returns the position of the character with the given id, or -1.
func (m Model) IndexOf(id string) int {
	return slices.IndexFunc(m.Characters, func(c Character) bool { return c.ID == id })
}

// Clone returns a copy that shares no slices with m.
func (m Model) Clone() Model {
	m.Characters = slices.Clone(m.Characters)
	m.Dialogues = slices.Clone(m.Dialogues)
	return m
}

func DefaultEnvironment() Environment {
	return Environment{
		Description:    "Sebuah pasar malam yang ramai di Jakarta",
		Style:          "realistis, sinematik",
		Lighting:       "neon lighting",
		CameraAngle:    "eye-level shot",
		ShotType:       "medium shot",
		CameraMovement: "static camera",
	}
}

const DefaultNegativePrompt = "bad quality, distorted, blurry, watermark, text overlay, bad anatomy, deformed, ugly, pixelated, low resolution, static camera (if movement requested), shaky camera (if static requested)"

// DefaultCharacter is the template every new character starts from.
func DefaultCharacter() Character {
	c := Character{
		Ethnicity:    catalog.BaseLocale,
		Gender:       catalog.GenderMale,
		Age:          "25",
		Outfit:       "Kaos putih dan celana jeans",
		Hairstyle:    "Rambut pendek hitam",
		Voice:        "Baritone",
		Description:  "Seorang petualang yang pemberani.",
		LookAtCamera: false,
	}
	c.resolveLocale()
	return c
}
