package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Progress messages, edited in place as the job advances
	"status.searching": "⏳ Searching...",
	"status.resolving": "⏳ Acquiring metadata...",
	"status.download":  "⏳ Downloading...",
	"status.upload":    "⏳ Uploading...",

	// Search flow
	"search.results": "🔎 Select a result:",
	"search.none":    "🔎 No results found",

	// Selection callbacks
	"selection.invalid": "Invalid query",
	"selection.expired": "This selection has expired.",

	// Error messages shown in place of the progress message
	"error.not_found":        "⚠ Song not found!",
	"error.age_restricted":   "⚠ This video is age-restricted and cannot be downloaded.",
	"error.http":             "⚠ Unknown HTTP error occurred!",
	"error.unknown":          "⚠ Unknown error occurred!",
	"error.unsupported_link": "⚠ I don't recognize that link. Send a YouTube or Spotify track link, or just type a song name.",
	"error.flood":            "⏱ Too many requests, slow down a little.",

	// Delivery
	// MarkdownV2: the dot in the link text must stay escaped
	"delivery.caption":        "_[song\\.link](%s)_",
	"delivery.inline_ready":   "🎵 %s - %s\n%s",
	"delivery.inline_loading": "⏳ Fetching song...",

	// Delivery history
	"history.recent": "🕘 Recently delivered:",
	"history.empty":  "🕘 Nothing delivered yet.",

	// Bot commands
	"bot.start": "👋 Send me a YouTube or Spotify link, or type a song name, and I'll fetch the audio for you.",
	"bot.help": "Send a song link or a song name.\n\n" +
		"Supported links: YouTube, Spotify.\n" +
		"I reply with the audio, title, performer and cover art.\n" +
		"/recent lists the last delivered songs.",
}
