package dialogue

// Language selects which question pool and prompt text a call uses. Only two
// values exist; anything that is not English is treated as Korean.
type Language string

const (
	LangKo Language = "ko"
	LangEn Language = "en"
)

// ParseLanguage normalizes a client-provided tag.
func ParseLanguage(s string) Language {
	if s == "en" {
		return LangEn
	}
	return LangKo
}
