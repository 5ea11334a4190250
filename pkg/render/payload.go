package render

import (
	"veoprompt/pkg/scene"
	"veoprompt/pkg/schema"
)

var (
	payloadMeta = schema.Meta{
		Generator:   "VEO3 Prompt Generator",
		Version:     "1.2",
		TargetModel: "VEO3 / Gemini Video",
	}
	payloadParameters = schema.Parameters{
		AspectRatio: "16:9",
		Resolution:  "1080p",
		FrameRate:   24,
		SampleCount: 1,
	}
)

// buildPayload mirrors the model for API use. The prompt is the English
// narrative body, so Secondary == Prompt + trailer byte for byte.
func buildPayload(m scene.Model, speakers []speaker, english narrative) schema.Payload {
	env := m.Environment

	chars := make([]schema.PayloadCharacter, 0, len(m.Characters))
	for i, c := range m.Characters {
		chars = append(chars, schema.PayloadCharacter{
			ID: characterID(i + 1),
			Attributes: schema.Attributes{
				Race:       c.EthnicityLabel(),
				Gender:     c.Gender,
				Age:        c.Age,
				Outfit:     c.Outfit,
				Hairstyle:  c.Hairstyle,
				EyeContact: c.LookAtCamera,
				Voice:      c.Voice,
			},
			Action: c.Description,
		})
	}

	lines := make([]schema.PayloadDialogue, 0, len(m.Dialogues))
	for i, d := range m.Dialogues {
		lines = append(lines, schema.PayloadDialogue{
			Speaker: speakers[i].payloadID(),
			Text:    d.Text,
		})
	}

	return schema.Payload{
		Meta:           payloadMeta,
		Prompt:         english.body,
		NegativePrompt: m.NegativePrompt,
		Parameters:     payloadParameters,
		StructuredData: schema.StructuredData{
			Scene: schema.Scene{
				Environment: env.Description,
				Lighting:    env.Lighting,
				Style:       env.Style,
				Camera: schema.Camera{
					Angle:    env.CameraAngle,
					ShotType: env.ShotType,
					Movement: env.CameraMovement,
				},
			},
			Characters: chars,
			Dialogues:  lines,
		},
	}
}
