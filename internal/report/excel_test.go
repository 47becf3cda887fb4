package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []Row {
	return []Row{
		{
			ComplaintID:     "c-1",
			SubmissionDate:  "2026-03-14 09:26:53",
			CitizenName:     "Asha Rao",
			CitizenEmail:    "asha@city.test",
			Category:        "potholes",
			Priority:        "high",
			Address:         "12 MG Road",
			Description:     "Large pothole near the bus stop",
			Status:          "submitted",
			AssignedOfficer: "Unassigned",
			CreatedAt:       "2026-03-14 09:26:53",
			UpdatedAt:       "2026-03-14 09:26:53",
			UpdatesCount:    1,
		},
	}
}

func TestWriteExcelRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sampleRows()))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "Asha Rao", rows[1][2])
	assert.Equal(t, "1", rows[1][16])
}

func TestWriteExcelEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, nil))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
