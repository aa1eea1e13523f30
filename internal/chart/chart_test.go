package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renalog/renalog/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildNoRecords(t *testing.T) {
	_, err := Build(nil, 0)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestBuild(t *testing.T) {
	records := []*model.HealthRecord{
		{Date: "2024-03-03", Weight: 63, DryWeight: 60, Systolic: 150, Diastolic: 85},
		{Date: "2024-03-01", Weight: 62, DryWeight: 60, FluidRemoval: floatPtr(2), Systolic: 128, Diastolic: 80},
	}

	page, err := Build(records, 70)
	require.NoError(t, err)
	assert.Len(t, page.Charts, 3)
	// The caller's slice keeps its order
	assert.Equal(t, "2024-03-03", records[0].Date)
}

func TestRender(t *testing.T) {
	records := []*model.HealthRecord{
		{Date: "2024-03-01", Weight: 62, DryWeight: 60, FluidRemoval: floatPtr(3.5), Systolic: 128, Diastolic: 80},
		{Date: "2024-03-02", Weight: 61.5, DryWeight: 60},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, records, 70))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "renalog trends")
	assert.Contains(t, html, "Blood pressure")
	assert.Contains(t, html, "2024-03-01")
	assert.Contains(t, html, "Systolic limit")
}
