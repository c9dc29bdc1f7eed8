package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"churnscope/domain/core"
)

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadFrame(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"Age", "Plan"},
		{34, "basic"},
		{41, "pro"},
	})

	frame, err := ReadFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Plan"}, frame.Names())
	assert.Equal(t, 2, frame.NumRows())

	col, ok := frame.Column("Age")
	require.True(t, ok)
	assert.Equal(t, []string{"34", "41"}, col.Values)
}

func TestReadFramePadsShortRows(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"A", "B"},
		{"1"},
	})

	frame, err := ReadFrame(buf)
	require.NoError(t, err)
	col, ok := frame.Column("B")
	require.True(t, ok)
	assert.Equal(t, []string{""}, col.Values)
}

func TestReadFrameRejectsGarbage(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte("not a workbook")))
	assert.ErrorIs(t, err, core.ErrDataFormat)
}
