package dates

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Month names are English for every language tag.
var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// longest tokens first so "MMMM" wins over "MM"
var formatTokens = []string{"YYYY", "MMMM", "MMM", "SSS", "YY", "MM", "DD", "HH", "mm", "ss", "M", "D", "H"}

// Format renders t with YYYY/YY/MMMM/MMM/MM/M/DD/D/HH/H/mm/ss/SSS tokens.
// Anything else is copied through.
func Format(t time.Time, layout string) string {
	var b strings.Builder
	for i := 0; i < len(layout); {
		tok := ""
		for _, candidate := range formatTokens {
			if strings.HasPrefix(layout[i:], candidate) {
				tok = candidate
				break
			}
		}
		if tok == "" {
			b.WriteByte(layout[i])
			i++
			continue
		}
		b.WriteString(formatToken(t, tok))
		i += len(tok)
	}
	return b.String()
}

func formatToken(t time.Time, tok string) string {
	switch tok {
	case "YYYY":
		return fmt.Sprintf("%04d", t.Year())
	case "YY":
		return fmt.Sprintf("%02d", t.Year()%100)
	case "MMMM":
		return monthNames[t.Month()-1]
	case "MMM":
		return monthNames[t.Month()-1][:3]
	case "MM":
		return fmt.Sprintf("%02d", int(t.Month()))
	case "M":
		return fmt.Sprintf("%d", int(t.Month()))
	case "DD":
		return fmt.Sprintf("%02d", t.Day())
	case "D":
		return fmt.Sprintf("%d", t.Day())
	case "HH":
		return fmt.Sprintf("%02d", t.Hour())
	case "H":
		return fmt.Sprintf("%d", t.Hour())
	case "mm":
		return fmt.Sprintf("%02d", t.Minute())
	case "ss":
		return fmt.Sprintf("%02d", t.Second())
	case "SSS":
		return fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
	}
	return tok
}

// ParseLanguage validates a BCP 47 tag; the empty string means English.
func ParseLanguage(tag string) (language.Tag, error) {
	if strings.TrimSpace(tag) == "" {
		return language.English, nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return language.Und, fmt.Errorf("parse language %q: %w", tag, err)
	}
	return t, nil
}
