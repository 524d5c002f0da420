package normalize

import "strings"

// Regions are the Indonesian provinces and cities matched against
// Petromindo descriptions.
var Regions = []string{
	"Aceh", "Sumatera Utara", "Sumatera Barat", "Riau", "Jambi",
	"Sumatera Selatan", "Bengkulu", "Lampung", "Kepulauan Bangka Belitung",
	"Kepulauan Riau", "Jakarta", "Jawa Barat", "Jawa Tengah",
	"Yogyakarta", "Jawa Timur", "Banten", "Bali ",
	"Nusa Tenggara Barat", "Nusa Tenggara Timur", "Kalimantan Barat",
	"Kalimantan Tengah", "Kalimantan Selatan", "Kalimantan Timur",
	"Kalimantan Utara", "Sulawesi Utara", "Sulawesi Tengah",
	"Sulawesi Selatan", "Sulawesi Tenggara", "Gorontalo", "Sulawesi Barat",
	"Maluku", "Maluku Utara", "Papua Barat", "Papua", "Pontianak",
	"Banjarmasin", "Samarinda", "Balikpapan", "Palangkaraya",
	"Banjarbaru", "Tarakan", "Sanggau",
}

// InferRegion counts case-insensitive occurrences of every region in text
// and returns the single most frequent one. Ties and zero hits give nil.
// Overlapping names are counted independently ("Papua Barat" also counts
// toward "Papua").
func InferRegion(text string) *string {
	folded := Fold(text)
	if strings.TrimSpace(folded) == "" {
		return nil
	}

	best, bestCount, tied := "", 0, false
	for _, region := range Regions {
		n := strings.Count(folded, Fold(region))
		switch {
		case n > bestCount:
			best, bestCount, tied = region, n, false
		case n == bestCount && n > 0:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return nil
	}
	return Text(best)
}
