package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// Visual themes, cycled in order light -> dark -> midnight -> light.
const (
	ThemeLight    = "light"
	ThemeDark     = "dark"
	ThemeMidnight = "midnight"

	defaultTheme = ThemeMidnight
)

func validTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark || theme == ThemeMidnight
}

func nextTheme(theme string) string {
	switch theme {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeMidnight
	default:
		return ThemeLight
	}
}

// currentTheme reads the persisted theme preference, falling back to the default when none is
// stored, the stored value is unknown, or the read fails.
func (m Main) currentTheme(ctx context.Context) string {
	theme, err := m.themes.Theme(ctx)
	if err != nil {
		m.logger.Error("Failed to read theme preference", slog.String(errLoggerKey, err.Error()))
		return defaultTheme
	}
	if !validTheme(theme) {
		return defaultTheme
	}
	return theme
}

// HandleTheme advances the theme preference to the next one in the cycle and persists it.
func (m Main) HandleTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	theme := nextTheme(m.currentTheme(r.Context()))
	if err := m.themes.SaveTheme(r.Context(), theme); err != nil {
		m.logger.Error("Failed to save theme preference", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
