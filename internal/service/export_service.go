package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"sistramite/internal/model"

	"github.com/fumiama/go-docx"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// utf8BOM makes spreadsheet applications detect the CSV encoding correctly.
const utf8BOM = "\xEF\xBB\xBF"

var reportHeader = []string{
	"Data", "Processo SEI", "Região Administrativa", "Status",
	"Diretoria", "Departamento", "Demanda", "Responsável", "Observação",
}

var processHeader = []string{
	"Processo SEI", "Status Atual", "Região de Origem", "Tipo de Demanda",
	"Demanda", "Diretoria de Destino", "Última Movimentação",
}

// ExportService renders report rows, consultation listings and process
// dossiers into downloadable documents. All renderers are pure: rows in,
// bytes out.
type ExportService interface {
	ReportCSV(rows []model.ReportRow) ([]byte, error)
	ReportXLSX(rows []model.ReportRow) ([]byte, error)
	ReportPDF(rows []model.ReportRow, summary model.ReportSummary) ([]byte, error)
	ReportDOCX(rows []model.ReportRow, summary model.ReportSummary) ([]byte, error)
	ProcessesCSV(items []ProcessListItem) ([]byte, error)
	ProcessesXLSX(items []ProcessListItem) ([]byte, error)
	ProcessesPDF(items []ProcessListItem) ([]byte, error)
	ProcessPDF(detail *ProcessDetail) ([]byte, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

func rowValues(r model.ReportRow) []string {
	return []string{
		r.Date, r.ProcessNumber, r.Region, r.Status,
		r.Directorate, r.Department, r.Demand, r.Responsible, r.Note,
	}
}

func itemValues(i ProcessListItem) []string {
	return []string{
		i.Number, i.CurrentStatus, i.OriginRegion, i.DemandType,
		i.Demand, i.DestinationDirectorate, i.LastMovementAt,
	}
}

// csvDocument writes semicolon-separated values with a UTF-8 BOM, the
// dialect pt-BR spreadsheet installs expect.
// truncate caps a cell value at max runes, appending an ellipsis. Byte
// slicing could split a multi-byte character before the cp1252 translation.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func csvDocument(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxDocument(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E79"}},
	})
	if err != nil {
		return nil, err
	}

	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", lastCol, 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pdfTable renders a landscape table with the header repeated on every page
// and an optional footer line below the last row.
func pdfTable(title string, header []string, widths []float64, rows [][]string, footer string) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 12)

	tableHeader := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(31, 78, 121)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range header {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(title), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Gerado em %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
		pdf.Ln(2)
		tableHeader()
	})

	pdf.AddPage()

	pdf.SetFont("Arial", "", 7)
	fill := false
	for _, row := range rows {
		pdf.SetFillColor(235, 240, 248)
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, tr(truncate(v, 48)), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	if footer != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 6, tr(footer), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *exportService) ReportCSV(rows []model.ReportRow) ([]byte, error) {
	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, rowValues(r))
	}
	return csvDocument(reportHeader, values)
}

func (s *exportService) ReportXLSX(rows []model.ReportRow) ([]byte, error) {
	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, rowValues(r))
	}
	return xlsxDocument("Relatório", reportHeader, values)
}

func (s *exportService) ReportPDF(rows []model.ReportRow, summary model.ReportSummary) ([]byte, error) {
	widths := []float64{22, 38, 34, 42, 18, 38, 34, 26, 25}
	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, rowValues(r))
	}
	footer := fmt.Sprintf(
		"Total de movimentações: %d | Regiões distintas: %d | Demandas distintas: %d | Tempo médio de tramitação: %s dias",
		summary.TotalRows, summary.DistinctRegions, summary.DistinctDemands, summary.AverageDays,
	)
	return pdfTable("Relatório de Tramitação de Processos", reportHeader, widths, values, footer)
}

func (s *exportService) ProcessesCSV(items []ProcessListItem) ([]byte, error) {
	values := make([][]string, 0, len(items))
	for _, i := range items {
		values = append(values, itemValues(i))
	}
	return csvDocument(processHeader, values)
}

func (s *exportService) ProcessesXLSX(items []ProcessListItem) ([]byte, error) {
	values := make([][]string, 0, len(items))
	for _, i := range items {
		values = append(values, itemValues(i))
	}
	return xlsxDocument("Processos", processHeader, values)
}

func (s *exportService) ProcessesPDF(items []ProcessListItem) ([]byte, error) {
	widths := []float64{42, 52, 38, 32, 42, 46, 25}
	values := make([][]string, 0, len(items))
	for _, i := range items {
		values = append(values, itemValues(i))
	}
	footer := fmt.Sprintf("Total de processos: %d", len(items))
	return pdfTable("Consulta de Processos", processHeader, widths, values, footer)
}

// ReportDOCX renders a narrative report grouped by directorate, suitable for
// pasting into official correspondence.
func (s *exportService) ReportDOCX(rows []model.ReportRow, summary model.ReportSummary) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph().Justification("center")
	title.AddText("Companhia Urbanizadora da Nova Capital do Brasil").Size("24").Bold()
	subtitle := doc.AddParagraph().Justification("center")
	subtitle.AddText("Relatório de Tramitação de Processos").Size("32").Bold()

	doc.AddParagraph().AddText(
		fmt.Sprintf("Gerado em %s.", time.Now().Format("02/01/2006 15:04")),
	).Size("20")

	doc.AddParagraph().AddText(fmt.Sprintf(
		"O período consultado reúne %d movimentações, abrangendo %d regiões administrativas e %d demandas distintas, com tempo médio de tramitação de %s dias.",
		summary.TotalRows, summary.DistinctRegions, summary.DistinctDemands, summary.AverageDays,
	)).Size("22")

	if len(rows) == 0 {
		doc.AddParagraph().AddText("Nenhum registro corresponde aos filtros aplicados.").Size("22")
	} else {
		writeDOCXOverview(doc, rows)
		writeDOCXGroups(doc, rows)

		doc.AddParagraph().AddText(
			"Os registros acima refletem o histórico integral de movimentações no período, conforme lançado no sistema de tramitação.",
		).Size("20")
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeDOCXOverview adds the counts-by-status, busiest-regions and
// responsible-users paragraphs.
func writeDOCXOverview(doc *docx.Docx, rows []model.ReportRow) {
	byStatus := map[string]int{}
	byRegion := map[string]int{}
	responsibles := map[string]struct{}{}
	for _, r := range rows {
		byStatus[r.Status]++
		byRegion[r.Region]++
		responsibles[r.Responsible] = struct{}{}
	}

	heading := doc.AddParagraph()
	heading.AddText("Resumo por status").Size("26").Bold()
	for _, status := range sortedKeys(byStatus) {
		doc.AddParagraph().AddText(
			fmt.Sprintf("%s: %d movimentação(ões).", status, byStatus[status]),
		).Size("20")
	}

	heading = doc.AddParagraph()
	heading.AddText("Regiões mais demandantes").Size("26").Bold()
	for _, region := range sortedKeys(byRegion) {
		doc.AddParagraph().AddText(
			fmt.Sprintf("%s: %d movimentação(ões).", region, byRegion[region]),
		).Size("20")
	}

	doc.AddParagraph().AddText(
		fmt.Sprintf("Servidores responsáveis pelos lançamentos no período: %d.", len(responsibles)),
	).Size("20")
}

// writeDOCXGroups adds one section per directorate with the individual
// records.
func writeDOCXGroups(doc *docx.Docx, rows []model.ReportRow) {
	groups := map[string][]model.ReportRow{}
	for _, r := range rows {
		groups[r.Directorate] = append(groups[r.Directorate], r)
	}

	var order []string
	for dir := range groups {
		order = append(order, dir)
	}
	sort.Strings(order)

	for _, dir := range order {
		heading := doc.AddParagraph()
		heading.AddText(fmt.Sprintf("Diretoria %s", dir)).Size("26").Bold()

		for _, r := range groups[dir] {
			line := fmt.Sprintf(
				"%s — processo %s, %s, demanda %q (%s), status %q, responsável %s.",
				r.Date, r.ProcessNumber, r.Region, r.Demand, r.Department, r.Status, r.Responsible,
			)
			if r.Note != "" {
				line += fmt.Sprintf(" Observação: %s", r.Note)
			}
			doc.AddParagraph().AddText(line).Size("20")
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ProcessPDF renders the full dossier of one process: identification, intake
// entry and the complete movement history.
func (s *exportService) ProcessPDF(detail *ProcessDetail) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, tr(fmt.Sprintf("Processo %s", detail.Process.Number)), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Emitido em %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	field := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}

	field("Status atual:", detail.Process.CurrentStatus)
	field("Diretoria de destino:", detail.Process.DestinationDirectorate)
	field("Região de origem:", detail.Entry.OriginRegion)
	field("Tipo de demanda:", detail.Entry.DemandType.Description)
	field("Demanda:", detail.Entry.Demand.Description)
	field("Responsável:", detail.Entry.Responsible.Name)
	field("Criado na RA em:", detail.Entry.RegionCreatedAt.Format(reportDateLayout))
	field("Recebido em:", detail.Entry.ReceivedAt.Format(reportDateLayout))
	field("Data do documento:", detail.Entry.DocumentDate.Format(reportDateLayout))
	if detail.Process.Notes != "" {
		field("Observações:", detail.Process.Notes)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, tr("Histórico de Tramitação"), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(31, 78, 121)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(28, 7, tr("Data"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(72, 7, tr("Status"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(38, 7, tr("Usuário"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(52, 7, tr("Observação"), "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Arial", "", 8)
	for _, m := range detail.Movements {
		note := truncate(m.Note, 60)
		pdf.CellFormat(28, 6, tr(m.Date.Format(reportDateLayout)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(72, 6, tr(m.NewStatus), "1", 0, "L", false, 0, "")
		pdf.CellFormat(38, 6, tr(m.User.Username), "1", 0, "L", false, 0, "")
		pdf.CellFormat(52, 6, tr(note), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
