package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	return Report{
		Title:       "Learning Progress Report",
		GeneratedAt: time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC),
		Sections: []Section{
			{Title: "Skill Score", Rows: [][2]string{{"Score", "2,630"}, {"Trend", "+2%"}}},
			{Title: "Study Streak", Rows: [][2]string{{"Days", "3"}}},
		},
	}
}

func TestRenderCSV(t *testing.T) {
	content, err := RenderCSV(sampleReport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "section,metric,value", lines[0])
	assert.Equal(t, `Skill Score,Score,"2,630"`, lines[1])
	assert.Equal(t, "Skill Score,Trend,+2%", lines[2])
	assert.Equal(t, "Study Streak,Days,3", lines[3])
}

func TestRenderCSVEmptyReport(t *testing.T) {
	_, err := RenderCSV(Report{})
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	content, err := RenderPDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
	assert.Greater(t, len(content), 500)
}

func TestRenderPDFEmptyReport(t *testing.T) {
	_, err := RenderPDF(Report{})
	assert.Error(t, err)
}
