package extract

import (
	"fmt"
	"strings"

	"veoprompt/pkg/catalog"
)

const systemPrompt = `PENTING: Respons Anda HARUS berupa objek JSON tunggal yang valid.
Anda adalah asisten ahli analisis visual. Berdasarkan gambar yang diberikan, ekstrak informasi berikut dan kembalikan sebagai JSON. Semua nilai harus dalam Bahasa Indonesia.`

const fixJSONPrompt = `You repair malformed JSON. Return the same data as a single valid JSON object with the keys race, gender, age, outfit, hairstyle and description, all strings. Output only the JSON object.`

// userPrompt lists the closed catalogs the model must pick from.
func userPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "- race: Pilih SATU dari daftar ini: %s. Jika tidak ada yang cocok, pilih yang paling mendekati.\n",
		strings.Join(catalog.AnalyzableEthnicities(), ", "))
	fmt.Fprintf(&b, "- gender: Pilih SATU dari daftar ini: %s.\n", strings.Join(catalog.Genders, ", "))
	b.WriteString("- age: Perkirakan usia sebagai string angka (contoh: \"32\").\n")
	b.WriteString("- outfit: Deskripsikan pakaian yang dikenakan secara detail.\n")
	b.WriteString("- hairstyle: Deskripsikan gaya rambut secara detail.\n")
	b.WriteString("- description: Tulis deskripsi singkat satu kalimat tentang penampilan umum, ekspresi, atau tindakan orang dalam gambar.")
	return b.String()
}
