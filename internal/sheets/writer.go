package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/model"
)

// resultHeaders is the column order of the result tab, matching data.json.
var resultHeaders = []any{
	model.FieldCategory,
	model.FieldTickerCode,
	model.FieldTickerName,
	model.FieldTotalFee,
	model.FieldOtherCost,
	model.FieldTradingCost,
	model.FieldRealCost,
}

// firstFeeColumn is the index of the first numeric column in resultHeaders.
const firstFeeColumn = 3

// Writer publishes snapshots to the result tab.
type Writer struct {
	values Values
	logger *slog.Logger
	config Config
}

// NewWriter creates a writer over values.
func NewWriter(values Values, config Config, logger *slog.Logger) *Writer {
	return &Writer{values: values, config: config, logger: common.OrDefault(logger)}
}

// Forward clears the result tab and rewrites it with records.
func (w *Writer) Forward(ctx context.Context, records []model.OutputRecord) error {
	if len(records) == 0 {
		return nil
	}

	w.logger.Info("Publishing snapshot to spreadsheet",
		"sheet", w.config.ResultSheet,
		"records", len(records))

	if err := w.values.Clear(ctx, w.config.SpreadsheetID, sheetRange(w.config.ResultSheet)); err != nil {
		return fmt.Errorf("%w: failed to clear sheet: %w", common.ErrForwarding, err)
	}

	if err := w.writeData(ctx, prepareRows(records)); err != nil {
		return fmt.Errorf("%w: %w", common.ErrForwarding, err)
	}

	if w.config.EnableFormatting {
		if err := w.values.FormatHeader(ctx, w.config.SpreadsheetID, w.config.ResultSheet, len(resultHeaders)); err != nil {
			// Values are already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	return nil
}

func prepareRows(records []model.OutputRecord) [][]any {
	values := make([][]any, 0, len(records)+1)
	values = append(values, resultHeaders)
	for _, r := range records {
		values = append(values, []any{
			r.Category,
			r.TickerCode,
			r.TickerName,
			r.TotalFee,
			r.OtherCost,
			r.TradingCost,
			r.RealCost,
		})
	}
	return values
}

// writeData writes values in batches to stay under API request limits.
func (w *Writer) writeData(ctx context.Context, values [][]any) error {
	batchSize := w.config.BatchSize
	if batchSize <= 0 {
		batchSize = len(values)
	}

	for i := 0; i < len(values); i += batchSize {
		end := min(i+batchSize, len(values))
		batch := values[i:end]

		rangeStr := fmt.Sprintf("%s!A%d", quoteSheet(w.config.ResultSheet), i+1)
		if err := w.values.Update(ctx, w.config.SpreadsheetID, rangeStr, batch); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}
	return nil
}
