package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/freteiro/internal/manifest"
	"github.com/dgallion1/freteiro/internal/report"
	"github.com/dgallion1/freteiro/internal/textnorm"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet of the accounting workbook.
const SheetName = "Prestação de Contas"

// Columns of the item table, in order.
var Columns = []string{
	"Data", "Romaneio", "Região", "KM Saída", "KM Chegada", "KM Rodado",
	"Diarista", "Retorno 0", "Valor Frete", "Valor Total",
}

// tableHeaderRow is the 1-based row of the item table header.
const tableHeaderRow = 9

const moneyFormat = `"R$" #,##0.00`

// Workbook lays out a report the way the freight accounting sheet is filed:
// title, provider block, one row per trip, then the three totals.
func Workbook(snap report.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := fill(f, snap); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// WriteXLSX renders the report workbook to w.
func WriteXLSX(w io.Writer, snap report.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName returns prestacao_<parts>.xlsx, joining the non-empty parts
// with underscores, or prestacao_frete.xlsx when none remain. Accents are
// dropped before unsafe characters are replaced.
func FileName(parts ...string) string {
	var names []string
	for _, p := range parts {
		n := unsafeName.ReplaceAllString(strings.TrimSpace(textnorm.StripAccents(p)), "_")
		if n = strings.Trim(n, "_"); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "prestacao_frete.xlsx"
	}
	return "prestacao_" + strings.Join(names, "_") + ".xlsx"
}

func fill(f *excelize.File, snap report.Snapshot) error {
	h := snap.Header
	top := [][]any{
		{"PRESTAÇÃO DE CONTAS DE FRETEIROS"},
		{},
		{"IDENTIFICAÇÃO DO PRESTADOR"},
		{"Prestador:", h.Provider},
		{"Perfil do Veículo:", string(h.Profile)},
		{"Placa:", h.Plate},
		{"Data de Prestação:", h.Date},
	}
	for i, row := range top {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write header row %d: %w", i+1, err)
		}
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	headerCell, _ := excelize.CoordinatesToCellName(1, tableHeaderRow)
	if err := f.SetSheetRow(SheetName, headerCell, &header); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}

	row := tableHeaderRow + 1
	for _, rec := range snap.Records {
		values := recordRow(rec)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write record %s: %w", rec.ManifestNumber, err)
		}
		row++
	}
	lastItemRow := row - 1

	row++ // blank line before totals
	firstTotalRow := row
	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"TOTAL DIARISTA:", snap.Totals.HelperAllowance},
		{"TOTAL FRETE:", snap.Totals.Freight},
		{"TOTAL GERAL:", snap.Totals.Grand},
	}
	for _, t := range totals {
		labelCell, _ := excelize.CoordinatesToCellName(9, row)
		valueCell, _ := excelize.CoordinatesToCellName(10, row)
		if err := f.SetCellValue(SheetName, labelCell, t.label); err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, valueCell, t.value.InexactFloat64()); err != nil {
			return err
		}
		row++
	}

	return style(f, lastItemRow, firstTotalRow, row-1)
}

// recordRow renders one trip. Absent odometer readings stay blank so they
// are not confused with a zero reading.
func recordRow(rec manifest.Record) []any {
	return []any{
		rec.Date,
		rec.ManifestNumber,
		string(rec.Region),
		optionalInt(rec.OdometerStart),
		optionalInt(rec.OdometerEnd),
		rec.Distance,
		rec.HelperAllowance.InexactFloat64(),
		rec.ReturnSurcharge.InexactFloat64(),
		rec.FreightValue.InexactFloat64(),
		rec.TotalValue.InexactFloat64(),
	}
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func style(f *excelize.File, lastItemRow, firstTotalRow, lastTotalRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	tableHeader, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2563EB"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	numFmt := moneyFormat
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	boldMoney, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}

	_ = f.SetCellStyle(SheetName, "A1", "A1", title)
	_ = f.SetCellStyle(SheetName, "A3", "A3", bold)
	_ = f.SetCellStyle(SheetName, "A9", "J9", tableHeader)
	if lastItemRow > tableHeaderRow {
		_ = f.SetCellStyle(SheetName, fmt.Sprintf("G%d", tableHeaderRow+1), fmt.Sprintf("J%d", lastItemRow), money)
	}
	_ = f.SetCellStyle(SheetName, fmt.Sprintf("I%d", firstTotalRow), fmt.Sprintf("I%d", lastTotalRow), bold)
	_ = f.SetCellStyle(SheetName, fmt.Sprintf("J%d", firstTotalRow), fmt.Sprintf("J%d", lastTotalRow), boldMoney)

	// Widths follow the filed sheet.
	widths := []float64{12, 12, 25, 12, 12, 12, 12, 12, 15, 15}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
