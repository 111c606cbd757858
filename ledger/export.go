package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ChannelWorkbook flattens a channel's blocks into an Excel workbook with
// one row per block: index, timestamp, payload (JSON), previous-hash, hash.
func ChannelWorkbook(ch *Channel) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Blocks"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []string{"Index", "Timestamp", "Data", "PreviousHash", "Hash"}
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, b := range ch.Blocks() {
		data, err := json.Marshal(b.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload of block %d: %w", b.Index, err)
		}
		row := i + 2
		values := []any{b.Index, b.Timestamp, string(data), b.PrevHash, b.Hash}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write block %d: %w", b.Index, err)
			}
		}
	}

	return f, nil
}
