// Package i18n owns locale selection and the message catalog for the
// rendered screens. English strings double as catalog keys, so a missing
// entry falls back to the English text.
package i18n

import (
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CookieName stores the visitor's language choice.
const CookieName = "lang"

var supported = []language.Tag{
	language.English,
	language.Spanish,
	language.Romanian,
}

var matcher = language.NewMatcher(supported)

var translations = map[language.Tag]map[string]string{
	language.Spanish: {
		"Dashboard":  "Panel",
		"Movies":     "Películas",
		"Add Movie":  "Añadir película",
		"Casts":      "Repartos",
		"Export":     "Exportar",
		"Members":    "Miembros",
		"Statistics": "Estadísticas",
		"Users":      "Usuarios",
		"Sign in":    "Iniciar sesión",
		"Sign In":    "Iniciar sesión",
		"Username":   "Nombre de usuario",
		"Password":   "Contraseña",
		"Logout":     "Cerrar sesión",
	},
	language.Romanian: {
		"Dashboard":  "Panou",
		"Movies":     "Filme",
		"Add Movie":  "Adaugă film",
		"Casts":      "Distribuții",
		"Export":     "Exportă",
		"Members":    "Membri",
		"Statistics": "Statistici",
		"Users":      "Utilizatori",
		"Sign in":    "Autentificare",
		"Sign In":    "Autentificare",
		"Username":   "Nume de utilizator",
		"Password":   "Parolă",
		"Logout":     "Deconectare",
	},
}

var printers = map[language.Tag]*message.Printer{}

func init() {
	for tag, entries := range translations {
		for key, value := range entries {
			if err := message.SetString(tag, key, value); err != nil {
				panic(err)
			}
		}
	}
	for _, tag := range supported {
		printers[tag] = message.NewPrinter(tag)
	}
}

// Codes lists the selectable language codes in display order.
func Codes() []string {
	codes := make([]string, len(supported))
	for i, tag := range supported {
		codes[i] = tag.String()
	}
	return codes
}

// Parse maps a raw language code onto a supported tag. Regional variants
// collapse onto their base language; anything else reports English, false.
func Parse(raw string) (language.Tag, bool) {
	tag, err := language.Parse(raw)
	if err != nil {
		return language.English, false
	}
	base, _ := tag.Base()
	for _, s := range supported {
		if sb, _ := s.Base(); sb == base {
			return s, true
		}
	}
	return language.English, false
}

// Detect resolves the request language: an explicit cookie wins, then the
// Accept-Language header, then English.
func Detect(r *http.Request) language.Tag {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if tag, ok := Parse(cookie.Value); ok {
			return tag
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
		if _, idx, conf := matcher.Match(tags...); conf > language.No {
			return supported[idx]
		}
	}
	return language.English
}

// Persist stores the language choice for a year.
func Persist(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tag.String(),
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}

// T translates a catalog key for the given language. Unknown keys and
// unknown languages render the key itself.
func T(tag language.Tag, key string) string {
	p, ok := printers[tag]
	if !ok {
		return key
	}
	return p.Sprintf(key)
}
