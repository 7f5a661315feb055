package i18n

// germanMessages contains all German translations.
var germanMessages = map[string]string{
	// Progress messages, edited in place as the job advances
	"status.searching": "⏳ Suche...",
	"status.resolving": "⏳ Hole Metadaten...",
	"status.download":  "⏳ Lade herunter...",
	"status.upload":    "⏳ Lade hoch...",

	// Search flow
	"search.results": "🔎 Wähle ein Ergebnis:",
	"search.none":    "🔎 Keine Ergebnisse gefunden",

	// Selection callbacks
	"selection.invalid": "Ungültige Anfrage",
	"selection.expired": "Diese Auswahl ist abgelaufen.",

	// Error messages shown in place of the progress message
	"error.not_found":        "⚠ Song nicht gefunden!",
	"error.age_restricted":   "⚠ Dieses Video hat eine Altersbeschränkung und kann nicht heruntergeladen werden.",
	"error.http":             "⚠ Unbekannter HTTP-Fehler aufgetreten!",
	"error.unknown":          "⚠ Unbekannter Fehler aufgetreten!",
	"error.unsupported_link": "⚠ Diesen Link kenne ich nicht. Schick mir einen YouTube- oder Spotify-Track-Link oder einfach einen Songnamen.",
	"error.flood":            "⏱ Zu viele Anfragen, bitte etwas langsamer.",

	// Delivery
	// MarkdownV2: the dot in the link text must stay escaped
	"delivery.caption":        "_[song\\.link](%s)_",
	"delivery.inline_ready":   "🎵 %s - %s\n%s",
	"delivery.inline_loading": "⏳ Hole Song...",

	// Delivery history
	"history.recent": "🕘 Zuletzt geliefert:",
	"history.empty":  "🕘 Noch nichts geliefert.",

	// Bot commands
	"bot.start": "👋 Schick mir einen YouTube- oder Spotify-Link oder einen Songnamen, und ich hole dir das Audio.",
	"bot.help": "Schick einen Song-Link oder einen Songnamen.\n\n" +
		"Unterstützte Links: YouTube, Spotify.\n" +
		"Ich antworte mit dem Audio, Titel, Interpret und Cover.\n" +
		"/recent zeigt die zuletzt gelieferten Songs.",
}
