package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/view"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Results"

var exportHeaders = []string{
	"#", "Title", "Score", "Priority", "Due Date", "Estimated Hours", "Importance",
	"Working Days Left", "Skipped Weekends", "Skipped Holidays", "Dependencies", "Quadrant", "Why",
}

// ResultsExporter gera a planilha Excel dos últimos resultados
type ResultsExporter struct{}

// NewResultsExporter cria um novo exportador
func NewResultsExporter() *ResultsExporter {
	return &ResultsExporter{}
}

// Generate gera o arquivo Excel a partir dos resultados da análise
func (g *ResultsExporter) Generate(results []model.TaskResult, strategy string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Renomeia a sheet padrão
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}

	if err := g.writeHeaders(f); err != nil {
		return nil, fmt.Errorf("escrever headers: %w", err)
	}

	if err := g.writeData(f, results); err != nil {
		return nil, fmt.Errorf("escrever dados: %w", err)
	}

	if err := g.writeStrategy(f, strategy, len(results)); err != nil {
		return nil, fmt.Errorf("escrever estratégia: %w", err)
	}

	if err := g.autoFitColumns(f); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

// writeHeaders escreve os cabeçalhos no Excel
func (g *ResultsExporter) writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"3050FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
	}

	return nil
}

// tierFills colore a linha conforme a prioridade do card
var tierFills = map[view.Tier]string{
	view.TierHigh:   "FFD6D6",
	view.TierMedium: "FFF2CC",
	view.TierLow:    "E2EFDA",
}

// writeData escreve uma linha por resultado, na ordem devolvida pelo backend
func (g *ResultsExporter) writeData(f *excelize.File, results []model.TaskResult) error {
	styles := make(map[view.Tier]int, len(tierFills))
	for tier, color := range tierFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: []excelize.Border{
				{Type: "left", Color: "D9D9D9", Style: 1},
				{Type: "top", Color: "D9D9D9", Style: 1},
				{Type: "bottom", Color: "D9D9D9", Style: 1},
				{Type: "right", Color: "D9D9D9", Style: 1},
			},
		})
		if err != nil {
			return err
		}
		styles[tier] = style
	}

	for i, r := range results {
		excelRow := i + 2 // Linha 1 é header
		tier := view.PriorityTier(r.Score)

		values := []interface{}{
			i,
			r.Title,
			cellNumber(r.Score),
			string(tier),
			r.DueDate,
			cellNumber(r.EstimatedHours),
			cellNumber(r.Importance),
			cellNumber(r.WorkingDays),
			len(r.SkippedWeekends),
			len(r.SkippedHolidays),
			joinDependencies(r.Dependencies),
			strings.ToUpper(string(view.Classify(r))),
			r.Explanation,
		}

		first, _ := excelize.CoordinatesToCellName(1, excelRow)
		last, _ := excelize.CoordinatesToCellName(len(values), excelRow)
		if err := f.SetSheetRow(sheetName, first, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, first, last, styles[tier]); err != nil {
			return err
		}
	}

	return nil
}

// writeStrategy anota a estratégia usada abaixo da tabela
func (g *ResultsExporter) writeStrategy(f *excelize.File, strategy string, rows int) error {
	cell, _ := excelize.CoordinatesToCellName(1, rows+3)
	if strategy == "" {
		strategy = "(none)"
	}
	return f.SetCellValue(sheetName, cell, "Strategy: "+strategy)
}

// autoFitColumns ajusta a largura das colunas
func (g *ResultsExporter) autoFitColumns(f *excelize.File) error {
	for col := 1; col <= len(exportHeaders); col++ {
		colName, _ := excelize.ColumnNumberToName(col)
		width := 18.0
		switch exportHeaders[col-1] {
		case "#":
			width = 5
		case "Title", "Why":
			width = 40
		}
		if err := f.SetColWidth(sheetName, colName, colName, width); err != nil {
			return err
		}
	}
	return nil
}

// cellNumber grava números como número e o resto como texto (valor repassado do usuário)
func cellNumber(n model.Number) interface{} {
	if v, ok := n.Float(); ok {
		return v
	}
	return n.String()
}

func joinDependencies(deps []model.Dependency) string {
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}
