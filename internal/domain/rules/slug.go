package rules

import (
	"strings"
	"unicode"
)

// Slugify builds a URL slug from a Hebrew, Russian or Latin display name.
// Hebrew and Cyrillic runes are transliterated to ASCII, everything else
// that is not alphanumeric collapses into single dashes.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		var chunk string
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			chunk = string(r)
		default:
			if t, ok := hebrewTranslit[r]; ok {
				chunk = t
			} else if t, ok := cyrillicTranslit[r]; ok {
				if t == "" {
					// hard/soft signs drop silently
					continue
				}
				chunk = t
			} else if unicode.IsLetter(r) || unicode.IsDigit(r) {
				// other scripts pass through as-is
				chunk = string(r)
			}
		}

		if chunk == "" {
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
			continue
		}

		b.WriteString(chunk)
		lastDash = false
	}

	return strings.Trim(b.String(), "-")
}

// SlugFromNames prefers the Hebrew name and falls back to the Russian one.
func SlugFromNames(nameHe, nameRu string) string {
	if slug := Slugify(nameHe); slug != "" {
		return slug
	}
	return Slugify(nameRu)
}

var hebrewTranslit = map[rune]string{
	'א': "a",
	'ב': "b",
	'ג': "g",
	'ד': "d",
	'ה': "h",
	'ו': "v",
	'ז': "z",
	'ח': "ch",
	'ט': "t",
	'י': "y",
	'כ': "k",
	'ך': "k",
	'ל': "l",
	'מ': "m",
	'ם': "m",
	'נ': "n",
	'ן': "n",
	'ס': "s",
	'ע': "a",
	'פ': "p",
	'ף': "f",
	'צ': "ts",
	'ץ': "ts",
	'ק': "k",
	'ר': "r",
	'ש': "sh",
	'ת': "t",
}

var cyrillicTranslit = map[rune]string{
	'а': "a",
	'б': "b",
	'в': "v",
	'г': "g",
	'д': "d",
	'е': "e",
	'ё': "yo",
	'ж': "zh",
	'з': "z",
	'и': "i",
	'й': "y",
	'к': "k",
	'л': "l",
	'м': "m",
	'н': "n",
	'о': "o",
	'п': "p",
	'р': "r",
	'с': "s",
	'т': "t",
	'у': "u",
	'ф': "f",
	'х': "kh",
	'ц': "ts",
	'ч': "ch",
	'ш': "sh",
	'щ': "shch",
	'ъ': "",
	'ы': "y",
	'ь': "",
	'э': "e",
	'ю': "yu",
	'я': "ya",
}
