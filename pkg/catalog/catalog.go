package catalog

import (
	"strings"
)

// Option is a catalog tag with the human readable description shown next to it.
type Option struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Label renders the option the way the form lists it.
func (o Option) Label() string {
	if o.Description == "" {
		return o.Value
	}
	return o.Value + " - " + o.Description
}

const (
	// BaseLocale is the ethnicity tag voiced in plain Indonesian.
	BaseLocale = "Indonesia"
	// OtherEthnicity marks a character whose ethnicity lives in the custom override.
	OtherEthnicity = "Lainnya..."

	GenderMale      = "Pria"
	GenderFemale    = "Wanita"
	GenderNonBinary = "Non-Biner"
)

var Ethnicities = []string{
	"Indonesia",
	"Indonesia-Jawa",
	"Indonesia-Sunda",
	"Indonesia-Minang",
	"Indonesia-Batak",
	"Indonesia-Padang",
	"Indonesia-Melayu",
	"Indonesia-Bugis",
	"Indonesia-Dayak",
	"Indonesia-Asmat",
	"Asia Tenggara",
	"Asia Timur",
	"Asia Selatan",
	"Timur Tengah",
	"Arab",
	"Afrika",
	"Eropa",
	"Hispanik/Latin",
	"Pribumi Amerika",
	OtherEthnicity,
}

var Genders = []string{GenderMale, GenderFemale, GenderNonBinary}

var Voices = []string{"Alto", "Bass", "Baritone", "Contralto", "Mezzo-soprano", "Soprano", "Tenor", "Serak", "Lembut", "Jernih", "Robotik"}

var Lighting = []Option{
	{"cinematic lighting", "Pencahayaan dramatis seperti di film, kontras tinggi."},
	{"natural light", "Cahaya alami dari matahari atau bulan."},
	{"soft light", "Cahaya lembut dengan bayangan halus, cocok untuk potret."},
	{"dramatic lighting", "Kontras tajam antara area terang dan gelap."},
	{"studio lighting", "Pencahayaan terkontrol seperti di studio foto."},
	{"golden hour", "Cahaya hangat dan keemasan saat matahari terbit/terbenam."},
	{"blue hour", "Cahaya biru sejuk setelah matahari terbenam/sebelum terbit."},
	{"neon lighting", "Pencahayaan dari lampu neon berwarna-warni."},
	{"low-key lighting", "Didominasi bayangan dan area gelap, menciptakan misteri."},
	{"high-key lighting", "Sangat terang dengan sedikit bayangan, menciptakan suasana ceria."},
}

var CameraAngles = []Option{
	{"eye-level shot", "Kamera sejajar dengan mata subjek, sudut pandang normal."},
	{"low angle shot", "Kamera lebih rendah dari subjek, membuatnya terlihat kuat/dominan."},
	{"high angle shot", "Kamera lebih tinggi dari subjek, membuatnya terlihat lemah/rentan."},
	{"dutch angle/tilt", "Kamera miring, menciptakan ketegangan atau disorientasi."},
	{"bird's-eye view", "Tampilan dari atas langsung, seperti mata burung."},
	{"worm's-eye view", "Tampilan dari bawah sekali, seperti mata cacing."},
	{"over-the-shoulder shot", "Pengambilan gambar dari belakang bahu satu karakter, fokus pada karakter lain."},
}

var ShotTypes = []Option{
	{"wide shot", "Menampilkan subjek sepenuhnya dalam lingkungannya."},
	{"long shot", "Subjek terlihat dari kepala hingga kaki, lingkungan masih dominan."},
	{"full shot", "Bingkai pas dengan subjek dari kepala hingga kaki."},
	{"medium shot", "Menampilkan subjek dari pinggang ke atas."},
	{"close-up shot", "Menampilkan wajah subjek untuk menekankan emosi."},
	{"extreme close-up", "Fokus pada detail kecil, seperti mata atau bibir."},
	{"establishing shot", "Biasanya wide shot di awal adegan untuk menunjukkan lokasi."},
	{"point of view (POV) shot", "Menampilkan adegan dari sudut pandang karakter."},
}

var CameraMovements = []Option{
	{"static camera", "Kamera diam di tempat (Tripod), tidak ada gerakan."},
	{"slow zoom in", "Perlahan mendekat ke subjek, meningkatkan fokus/intensitas."},
	{"fast zoom in", "Mendekat dengan cepat (Crash Zoom), efek kaget atau dramatis."},
	{"slow zoom out", "Perlahan menjauh, mengungkap lebih banyak lingkungan."},
	{"pan right", "Kamera menoleh ke kanan pada poros tetap."},
	{"pan left", "Kamera menoleh ke kiri pada poros tetap."},
	{"tilt up", "Kamera mendongak ke atas (mengungkap tinggi bangunan/karakter)."},
	{"tilt down", "Kamera menunduk ke bawah."},
	{"tracking shot", "Kamera bergerak mengikuti subjek yang sedang berjalan/berlari."},
	{"truck left", "Kamera bergeser fisik ke kiri (sejajar subjek)."},
	{"truck right", "Kamera bergeser fisik ke kanan (sejajar subjek)."},
	{"dolly in", "Kamera fisik maju mendekati subjek (background berubah perspektif)."},
	{"dolly out", "Kamera fisik mundur menjauhi subjek."},
	{"arc shot", "Kamera bergerak melingkar mengelilingi subjek 360 derajat."},
	{"handheld camera", "Gerakan kamera goyah/alami seperti dipegang tangan (realistis/tegang)."},
	{"drone/aerial view", "Kamera terbang di udara, gerakan mulus dan luas."},
	{"fpv drone", "Gerakan cepat dan akrobatik seperti drone balap."},
}

// All groups every catalog for the form.
type All struct {
	Ethnicities     []string `json:"ethnicities"`
	Genders         []string `json:"genders"`
	Voices          []string `json:"voices"`
	Lighting        []Option `json:"lighting"`
	CameraAngles    []Option `json:"camera_angles"`
	ShotTypes       []Option `json:"shot_types"`
	CameraMovements []Option `json:"camera_movements"`
}

func Catalogs() All {
	return All{
		Ethnicities:     Ethnicities,
		Genders:         Genders,
		Voices:          Voices,
		Lighting:        Lighting,
		CameraAngles:    CameraAngles,
		ShotTypes:       ShotTypes,
		CameraMovements: CameraMovements,
	}
}

// MatchEthnicity finds the catalog tag equal to s ignoring case.
func MatchEthnicity(s string) (string, bool) {
	return matchFold(Ethnicities, s)
}

// NormalizeEthnicity maps free text onto the closed catalog. Anything that
// does not match becomes the other tag with s kept as the custom override.
func NormalizeEthnicity(s string) (tag, custom string) {
	if found, ok := MatchEthnicity(strings.TrimSpace(s)); ok && found != OtherEthnicity {
		return found, ""
	}
	return OtherEthnicity, s
}

// AnalyzableEthnicities is the ethnicity catalog without the other tag.
func AnalyzableEthnicities() []string {
	out := make([]string, 0, len(Ethnicities)-1)
	for _, e := range Ethnicities {
		if e != OtherEthnicity {
			out = append(out, e)
		}
	}
	return out
}

// NormalizeGender accepts a catalog tag or a known synonym in English or
// Indonesian and returns the tag.
// Unknown values are returned trimmed but otherwise untouched.
func NormalizeGender(s string) string {
	s = strings.TrimSpace(s)
	if tag, ok := matchFold(Genders, s); ok {
		return tag
	}
	if tag, ok := genderSynonyms[strings.ToLower(s)]; ok {
		return tag
	}
	return s
}

// genderSynonyms maps the words people and vision models use for a gender
// onto its catalog tag. Keys are lower case.
var genderSynonyms = map[string]string{
	"male":       GenderMale,
	"man":        GenderMale,
	"boy":        GenderMale,
	"laki-laki":  GenderMale,
	"laki laki":  GenderMale,
	"lelaki":     GenderMale,
	"cowok":      GenderMale,
	"female":     GenderFemale,
	"woman":      GenderFemale,
	"girl":       GenderFemale,
	"perempuan":  GenderFemale,
	"cewek":      GenderFemale,
	"non-binary": GenderNonBinary,
	"nonbinary":  GenderNonBinary,
	"non binary": GenderNonBinary,
	"nonbiner":   GenderNonBinary,
}

var genderEnglish = map[string]string{
	GenderMale:      "male",
	GenderFemale:    "female",
	GenderNonBinary: "non-binary",
}

// GenderEnglish returns the English noun for a gender tag or word.
func GenderEnglish(s string) string {
	if en, ok := genderEnglish[NormalizeGender(s)]; ok {
		return en
	}
	return strings.TrimSpace(s)
}

// GenderNative returns the Indonesian tag for a gender tag or English word.
func GenderNative(s string) string {
	return NormalizeGender(s)
}

// Find returns the option whose value matches s ignoring case.
func Find(options []Option, s string) (Option, bool) {
	for _, o := range options {
		if strings.EqualFold(o.Value, s) {
			return o, true
		}
	}
	return Option{}, false
}

func matchFold(list []string, s string) (string, bool) {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return v, true
		}
	}
	return "", false
}
