package usecase

import "strings"

const SourceOrganic = "organic"

type sourcePattern struct {
	source   string
	keywords []string
}

// A ordem importa: a primeira origem com palavra-chave presente vence.
var sourcePatterns = []sourcePattern{
	{"google_ads", []string{"vi no google", "pelo google", "anuncio google"}},
	{"instagram", []string{"vi no insta", "pelo instagram", "vi no story", "anuncio insta"}},
	{"facebook", []string{"vi no face", "pelo facebook", "anuncio face"}},
	{"tiktok", []string{"vi no tiktok", "pelo tiktok"}},
	{"indication", []string{"indicação", "indicou", "recomendou"}},
}

// DetectSource identifica a origem do lead pela primeira mensagem.
func DetectSource(message string) string {
	content := strings.ToLower(message)
	for _, p := range sourcePatterns {
		for _, kw := range p.keywords {
			if strings.Contains(content, kw) {
				return p.source
			}
		}
	}
	return SourceOrganic
}
