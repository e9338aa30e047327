package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExportFilename(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Q2 Safety Tasks", "q2-safety-tasks_20260301_090000.xlsx"},
		{"punctuation", "  --Open & Overdue!! ", "open-overdue_20260301_090000.xlsx"},
		{"empty", "***", "report_20260301_090000.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportFilename(tt.in, "report", ".xlsx", at))
		})
	}
}
