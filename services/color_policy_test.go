package services

import (
	"testing"

	"github.com/ovationhq/arts_academy/models"
)

func TestColorForSession(t *testing.T) {
	tests := []struct {
		name     string
		category string
		status   string
		want     string
	}{
		{"known category", "ballet", models.SessionScheduled, categoryColors["ballet"]},
		{"unknown category falls back", "aerial-silks", models.SessionScheduled, neutralColor},
		{"empty category falls back", "", models.SessionScheduled, neutralColor},
		{"cancelled overrides category", "ballet", models.SessionCancelled, cancelledColor},
		{"ongoing keeps category color", "vocal", models.SessionOngoing, categoryColors["vocal"]},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ColorForSession(tc.category, tc.status); got != tc.want {
				t.Errorf("ColorForSession(%q, %q) = %q, want %q", tc.category, tc.status, got, tc.want)
			}
		})
	}
}
