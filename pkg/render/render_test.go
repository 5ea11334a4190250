package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veoprompt/pkg/catalog"
	"veoprompt/pkg/scene"
)

func nightMarket() scene.Model {
	return scene.Model{
		Environment: scene.Environment{
			Description:    "a crowded night market",
			Style:          "cinematic",
			Lighting:       "neon lighting",
			CameraAngle:    "eye-level shot",
			ShotType:       "medium shot",
			CameraMovement: "static camera",
		},
		Characters: []scene.Character{{
			ID:          "c1",
			Ethnicity:   "Indonesia-Jawa",
			Gender:      "male",
			Age:         "25",
			Outfit:      "a denim jacket",
			Hairstyle:   "Short black",
			Voice:       "Tenor",
			Description: "buys satay",
		}},
		Dialogues:      []scene.Dialogue{{ID: "d1", CharacterID: "c1", Text: "Hello"}},
		NegativePrompt: "blurry",
	}
}

func TestRenderNightMarket(t *testing.T) {
	out := Render(nightMarket())

	wantEnglish := "High quality cinematic video, cinematic art style. " +
		"The environment is a crowded night market, illuminated by neon lighting. " +
		"Camera specifications: medium shot, eye-level shot. " +
		"Camera Movement: STATIC CAMERA.\n\n" +
		"CHARACTERS:\n" +
		"- Character 1: A 25-year-old Indonesia-Jawa male. Wearing a denim jacket. Short black hairstyle. " +
		"Not looking at camera, looking at surroundings. Action/Description: buys satay\n" +
		"\nDIALOGUE SCRIPT:\n" +
		"- Character 1 [speaking in Indonesian language with Jawa accent]: \"Hello\"\n" +
		"\nNEGATIVE PROMPT: blurry"
	assert.Equal(t, wantEnglish, out.Secondary)
	assert.True(t, strings.HasSuffix(out.Secondary, "blurry"))

	wantNative := "Video sinematik dengan gaya cinematic. " +
		"Adegan berlatar di a crowded night market dengan pencahayaan neon lighting. " +
		"Teknis Kamera: medium shot, eye-level shot.\n" +
		"Gerakan Kamera: static camera (Lihat deskripsi teknis Inggris untuk presisi).\n\n" +
		"KARAKTER:\n" +
		"- Karakter 1: Seorang Pria ras Indonesia-Jawa berusia 25 tahun. Mengenakan a denim jacket. Gaya rambut Short black. " +
		"Karakter tidak melihat ke kamera (candid). Aksi/Deskripsi: buys satay\n" +
		"\nDIALOG (Naskah):\n" +
		"- Karakter 1 (Bahasa Indonesia logat Jawa): \"Hello\"\n" +
		"\nNEGATIVE PROMPT: blurry"
	assert.Equal(t, wantNative, out.Native)

	p := out.Payload
	require.Len(t, p.StructuredData.Characters, 1)
	assert.Equal(t, "char_1", p.StructuredData.Characters[0].ID)
	assert.Equal(t, "Indonesia-Jawa", p.StructuredData.Characters[0].Attributes.Race)
	assert.Equal(t, "Tenor", p.StructuredData.Characters[0].Attributes.Voice)
	assert.Equal(t, "buys satay", p.StructuredData.Characters[0].Action)
	require.Len(t, p.StructuredData.Dialogues, 1)
	assert.Equal(t, "char_1", p.StructuredData.Dialogues[0].Speaker)
	assert.Equal(t, "Hello", p.StructuredData.Dialogues[0].Text)
	assert.Equal(t, "blurry", p.NegativePrompt)
	assert.Equal(t, "static camera", p.StructuredData.Scene.Camera.Movement)
}

func TestPayloadJSONShape(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(Render(nightMarket()).PayloadJSON()), &doc))

	meta := doc["meta"].(map[string]any)
	assert.Equal(t, "VEO3 Prompt Generator", meta["generator"])
	assert.Equal(t, "1.2", meta["version"])
	assert.Equal(t, "VEO3 / Gemini Video", meta["target_model"])

	params := doc["parameters"].(map[string]any)
	assert.Equal(t, "16:9", params["aspect_ratio"])
	assert.Equal(t, "1080p", params["resolution"])
	assert.EqualValues(t, 24, params["frame_rate"])
	assert.EqualValues(t, 1, params["sample_count"])

	data := doc["structured_data"].(map[string]any)
	chars := data["characters"].([]any)
	first := chars[0].(map[string]any)
	assert.Equal(t, "char_1", first["id"])
	attrs := first["attributes"].(map[string]any)
	assert.Equal(t, false, attrs["eye_contact"])
	for _, transient := range []string{"preview", "preview_type", "analyzing", "locale"} {
		assert.NotContains(t, attrs, transient)
		assert.NotContains(t, first, transient)
	}
	dialogues := data["dialogues"].([]any)
	assert.Equal(t, "char_1", dialogues[0].(map[string]any)["speaker"])
}

func TestRenderIsDeterministic(t *testing.T) {
	m := nightMarket()
	a, b := Render(m), Render(m)
	assert.Equal(t, a, b)
	assert.Equal(t, a.PayloadJSON(), b.PayloadJSON())
}

func TestIndicesAgreeAcrossArtifacts(t *testing.T) {
	m := nightMarket()
	m.Characters = append(m.Characters,
		scene.Character{ID: "c2", Ethnicity: "Arab", Gender: catalog.GenderFemale, Age: "30"},
		scene.Character{ID: "c3", Ethnicity: catalog.OtherEthnicity, CustomEthnicity: "Elf", Gender: catalog.GenderNonBinary, Age: "300"},
	)
	m.Dialogues = []scene.Dialogue{
		{ID: "d1", CharacterID: "c3", Text: "first"},
		{ID: "d2", CharacterID: "c1", Text: "second"},
		{ID: "d3", CharacterID: "c2", Text: "third"},
	}
	out := Render(m)

	assert.Contains(t, out.Secondary, "- Character 2: A 30-year-old Arab female.")
	assert.Contains(t, out.Secondary, "- Character 3: A 300-year-old Elf non-binary.")
	assert.Contains(t, out.Native, "- Karakter 2: Seorang Wanita ras Arab berusia 30 tahun.")
	assert.Contains(t, out.Native, "- Karakter 3: Seorang Non-Biner ras Elf berusia 300 tahun.")
	assert.Contains(t, out.System, "[ID: 2] Name: Character 2, Details: 30yo female (Arab)")
	assert.Contains(t, out.System, "[ID: 3] Name: Character 3, Details: 300yo non-binary (Elf)")

	// dialogue keeps insertion order, not grouped by speaker
	first := strings.Index(out.Secondary, "- Character 3 [speaking in Elf language/accent]: \"first\"")
	second := strings.Index(out.Secondary, "- Character 1 [speaking in Indonesian language with Jawa accent]: \"second\"")
	third := strings.Index(out.Secondary, "- Character 2 [speaking in Arab language/accent]: \"third\"")
	require.True(t, first > 0 && second > 0 && third > 0, out.Secondary)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
	assert.Contains(t, out.Native, "- Karakter 3 (Bahasa/Aksen Elf): \"first\"")

	chars := out.Payload.StructuredData.Characters
	assert.Equal(t, []string{"char_1", "char_2", "char_3"}, []string{chars[0].ID, chars[1].ID, chars[2].ID})
	lines := out.Payload.StructuredData.Dialogues
	assert.Equal(t, []string{"char_3", "char_1", "char_2"}, []string{lines[0].Speaker, lines[1].Speaker, lines[2].Speaker})
	assert.Equal(t, "Elf", chars[2].Attributes.Race)
}

func TestDanglingDialogueIsTolerated(t *testing.T) {
	m := nightMarket()
	m.Dialogues = append(m.Dialogues, scene.Dialogue{ID: "d2", CharacterID: "gone", Text: "who said this"})

	var out Output
	require.NotPanics(t, func() { out = Render(m) })
	assert.Contains(t, out.Secondary, "- Character (unassigned): \"who said this\"\n")
	assert.Contains(t, out.Native, "- Karakter (tidak ditetapkan): \"who said this\"\n")
	assert.Equal(t, Unassigned, out.Payload.StructuredData.Dialogues[1].Speaker)
	assert.Equal(t, "char_1", out.Payload.StructuredData.Dialogues[0].Speaker)
}

func TestNegativePromptPlacement(t *testing.T) {
	for _, neg := range []string{"blurry, watermark", ""} {
		m := nightMarket()
		m.NegativePrompt = neg
		out := Render(m)

		trailer := "\nNEGATIVE PROMPT: " + neg
		assert.True(t, strings.HasSuffix(out.Native, trailer))
		assert.True(t, strings.HasSuffix(out.Secondary, trailer))
		assert.Equal(t, out.Secondary, out.Payload.Prompt+trailer)
		assert.NotContains(t, out.Payload.Prompt, "NEGATIVE PROMPT")
		assert.Equal(t, neg, out.Payload.NegativePrompt)
	}
}

func TestNoDialogueBlockWithoutDialogue(t *testing.T) {
	m := nightMarket()
	m.Dialogues = nil
	out := Render(m)
	assert.NotContains(t, out.Secondary, "DIALOGUE SCRIPT")
	assert.NotContains(t, out.Native, "DIALOG (Naskah)")
	assert.Contains(t, out.Secondary, "buys satay\n\nNEGATIVE PROMPT: blurry")
}

func TestEmptyModelRendersValidPayload(t *testing.T) {
	m := scene.Model{Dialogues: []scene.Dialogue{{ID: "d", CharacterID: "nobody", Text: "echo"}}}
	out := Render(m)

	assert.Contains(t, out.Secondary, "CHARACTERS:\n\nDIALOGUE SCRIPT:\n")
	assert.True(t, strings.HasSuffix(out.System, systemTask))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(Render(scene.Model{}).PayloadJSON()), &doc))
	data := doc["structured_data"].(map[string]any)
	assert.Equal(t, []any{}, data["characters"])
	assert.Equal(t, []any{}, data["dialogues"])
}

func TestSystemInstructionLeavesOutGazeAndDialogue(t *testing.T) {
	m := nightMarket()
	m.Characters[0].LookAtCamera = true
	out := Render(m)

	assert.True(t, strings.HasPrefix(out.System, "Role: Professional Cinematographer and Screenwriter.\n"))
	assert.Contains(t, out.System, "Context: You are writing a scene set in a crowded night market.\n")
	assert.Contains(t, out.System, "Technical Constraints: Style: cinematic, Lighting: neon lighting, Camera: medium shot/eye-level shot, Movement: static camera.\n")
	assert.Contains(t, out.System, "[ID: 1] Name: Character 1, Details: 25yo male (Indonesia-Jawa), a denim jacket, Short black. Mood/Action: buys satay.\n")
	assert.NotContains(t, out.System, "Hello")
	assert.NotContains(t, out.System, "CAMERA, making eye contact")
	assert.NotContains(t, out.System, "NEGATIVE PROMPT")

	assert.Contains(t, out.Secondary, "LOOKING DIRECTLY AT CAMERA, making eye contact.")
	assert.Contains(t, out.Native, "Karakter MENATAP LANGSUNG ke kamera (kontak mata).")
	assert.True(t, out.Payload.StructuredData.Characters[0].Attributes.EyeContact)
}

func TestDeletingCharacterRemovesItsDialogue(t *testing.T) {
	s := scene.NewSession()
	first := s.Model().Characters[0]
	second := s.AddCharacter(scene.CharacterUpdate{Ethnicity: scene.Ptr("Afrika")})
	_, err := s.AddDialogue(scene.DialogueUpdate{CharacterID: scene.Ptr(second.ID), Text: scene.Ptr("farewell line")})
	require.NoError(t, err)
	_, err = s.AddDialogue(scene.DialogueUpdate{CharacterID: scene.Ptr(first.ID), Text: scene.Ptr("staying line")})
	require.NoError(t, err)

	before := Render(s.Model())
	assert.Contains(t, before.Secondary, "farewell line")

	_, err = s.DeleteCharacter(second.ID)
	require.NoError(t, err)
	out := Render(s.Model())

	for _, text := range []string{out.Native, out.Secondary, out.System, out.PayloadJSON()} {
		assert.NotContains(t, text, "farewell line")
		assert.NotContains(t, text, "Afrika")
	}
	assert.Contains(t, out.Secondary, "- Character 1 [speaking in Indonesian language]: \"staying line\"")
	assert.Len(t, out.Payload.StructuredData.Characters, 1)
	assert.NotContains(t, out.PayloadJSON(), Unassigned)
}
