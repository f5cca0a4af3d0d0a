package services

import "github.com/ovationhq/arts_academy/models"

const neutralColor = "#90A4AE"

var categoryColors = map[string]string{
	"ballet":       "#E91E63",
	"contemporary": "#9C27B0",
	"jazz":         "#FF9800",
	"hiphop":       "#4CAF50",
	"vocal":        "#2196F3",
	"drama":        "#795548",
	"instrument":   "#009688",
	"general":      "#607D8B",
}

const cancelledColor = "#BDBDBD"

// ColorForSession maps a session's category and status to its display color.
// Unknown categories fall back to a neutral color; the mapping is total so
// new categories added upstream never break the calendar.
func ColorForSession(category, status string) string {
	if status == models.SessionCancelled {
		return cancelledColor
	}
	if color, ok := categoryColors[category]; ok {
		return color
	}
	return neutralColor
}
