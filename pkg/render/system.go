package render

import (
	"fmt"
	"strings"

	"veoprompt/pkg/catalog"
	"veoprompt/pkg/scene"
)

const systemTask = "Task: Generate a detailed script, visual narration, or further dialogue for this scene while strictly adhering to the technical constraints and character descriptions provided above."

// systemInstruction primes a chat model to act as the scene's screenwriter.
// Gaze and dialogue are left out; the model is asked to write those.
func systemInstruction(m scene.Model) string {
	env := m.Environment

	var w strings.Builder
	w.WriteString("Role: Professional Cinematographer and Screenwriter.\n")
	fmt.Fprintf(&w, "Context: You are writing a scene set in %s.\n", env.Description)
	fmt.Fprintf(&w, "Technical Constraints: Style: %s, Lighting: %s, Camera: %s/%s, Movement: %s.\n\n",
		env.Style, env.Lighting, env.ShotType, env.CameraAngle, env.CameraMovement)

	w.WriteString("Characters:\n")
	for i, c := range m.Characters {
		fmt.Fprintf(&w, "[ID: %d] Name: Character %d, Details: %syo %s (%s), %s, %s. Mood/Action: %s.\n",
			i+1, i+1, c.Age, catalog.GenderEnglish(c.Gender), c.EthnicityLabel(), c.Outfit, c.Hairstyle, c.Description)
	}

	w.WriteString("\n")
	w.WriteString(systemTask)
	return w.String()
}
