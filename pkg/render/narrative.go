package render

import (
	"fmt"
	"strings"

	"veoprompt/pkg/catalog"
	"veoprompt/pkg/scene"
)

// narrative is a rendered prompt split into its body and the negative prompt
// trailer that always closes it.
type narrative struct {
	body    string
	trailer string
}

func (n narrative) String() string { return n.body + n.trailer }

// language holds the phrasing of one narrative variant.
type language struct {
	header     func(w *strings.Builder, env scene.Environment)
	characters string
	character  func(w *strings.Builder, index int, c scene.Character)
	dialogues  string
	dialogue   func(w *strings.Builder, sp speaker, text string)
}

const negativeLabel = "NEGATIVE PROMPT: "

var langIndonesian = language{
	header: func(w *strings.Builder, env scene.Environment) {
		fmt.Fprintf(w, "Video sinematik dengan gaya %s. ", env.Style)
		fmt.Fprintf(w, "Adegan berlatar di %s dengan pencahayaan %s. ", env.Description, env.Lighting)
		fmt.Fprintf(w, "Teknis Kamera: %s, %s.\n", env.ShotType, env.CameraAngle)
		fmt.Fprintf(w, "Gerakan Kamera: %s (Lihat deskripsi teknis Inggris untuk presisi).\n\n", env.CameraMovement)
	},
	characters: "KARAKTER:\n",
	character: func(w *strings.Builder, index int, c scene.Character) {
		gaze := "Karakter tidak melihat ke kamera (candid)."
		if c.LookAtCamera {
			gaze = "Karakter MENATAP LANGSUNG ke kamera (kontak mata)."
		}
		fmt.Fprintf(w, "- Karakter %d: Seorang %s ras %s berusia %s tahun. Mengenakan %s. Gaya rambut %s. %s Aksi/Deskripsi: %s\n",
			index, catalog.GenderNative(c.Gender), c.EthnicityLabel(), c.Age, c.Outfit, c.Hairstyle, gaze, c.Description)
	},
	dialogues: "DIALOG (Naskah):\n",
	dialogue: func(w *strings.Builder, sp speaker, text string) {
		if !sp.resolved() {
			fmt.Fprintf(w, "- Karakter (tidak ditetapkan): \"%s\"\n", text)
			return
		}
		fmt.Fprintf(w, "- Karakter %d (%s): \"%s\"\n", sp.index, sp.locale.Native(), text)
	},
}

var langEnglish = language{
	header: func(w *strings.Builder, env scene.Environment) {
		fmt.Fprintf(w, "High quality cinematic video, %s art style. ", env.Style)
		fmt.Fprintf(w, "The environment is %s, illuminated by %s. ", env.Description, env.Lighting)
		fmt.Fprintf(w, "Camera specifications: %s, %s. ", env.ShotType, env.CameraAngle)
		fmt.Fprintf(w, "Camera Movement: %s.\n\n", strings.ToUpper(env.CameraMovement))
	},
	characters: "CHARACTERS:\n",
	character: func(w *strings.Builder, index int, c scene.Character) {
		gaze := "Not looking at camera, looking at surroundings."
		if c.LookAtCamera {
			gaze = "LOOKING DIRECTLY AT CAMERA, making eye contact."
		}
		fmt.Fprintf(w, "- Character %d: A %s-year-old %s %s. Wearing %s. %s hairstyle. %s Action/Description: %s\n",
			index, c.Age, c.EthnicityLabel(), catalog.GenderEnglish(c.Gender), c.Outfit, c.Hairstyle, gaze, c.Description)
	},
	dialogues: "DIALOGUE SCRIPT:\n",
	dialogue: func(w *strings.Builder, sp speaker, text string) {
		if !sp.resolved() {
			fmt.Fprintf(w, "- Character (unassigned): \"%s\"\n", text)
			return
		}
		fmt.Fprintf(w, "- Character %d [speaking in %s]: \"%s\"\n", sp.index, sp.locale.English(), text)
	},
}

// narrate writes one language variant. speakers is aligned with m.Dialogues.
func narrate(m scene.Model, speakers []speaker, lang language) narrative {
	var w strings.Builder
	lang.header(&w, m.Environment)

	w.WriteString(lang.characters)
	for i, c := range m.Characters {
		lang.character(&w, i+1, c)
	}

	if len(m.Dialogues) > 0 {
		w.WriteString("\n")
		w.WriteString(lang.dialogues)
		for i, d := range m.Dialogues {
			lang.dialogue(&w, speakers[i], d.Text)
		}
	}

	return narrative{
		body:    w.String(),
		trailer: "\n" + negativeLabel + m.NegativePrompt,
	}
}
