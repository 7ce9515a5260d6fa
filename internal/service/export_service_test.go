package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"unicode/utf8"

	"sistramite/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []model.ReportRow {
	return []model.ReportRow{
		{
			Date: "14/02/2026", ProcessNumber: "00112-00012345/2026-11",
			Region: "Taguatinga (RA III)", Status: "Atendido",
			Directorate: "DC", Department: "Departamento de Conservação Urbana",
			Demand: "Tapa-buraco", Responsible: "maria", Note: "Serviço concluído",
		},
		{
			Date: "12/01/2026", ProcessNumber: "00112-00012345/2026-11",
			Region: "Taguatinga (RA III)", Status: "Enviado à Diretoria das Cidades",
			Directorate: "DC", Department: "Departamento de Conservação Urbana",
			Demand: "Tapa-buraco", Responsible: "maria",
		},
	}
}

func sampleSummary() model.ReportSummary {
	return model.ReportSummary{TotalRows: 2, DistinctRegions: 1, DistinctDemands: 1, AverageDays: "15.0"}
}

func TestReportCSVDialect(t *testing.T) {
	svc := NewExportService()
	data, err := svc.ReportCSV(sampleRows())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, []byte(utf8BOM)), "must start with a UTF-8 BOM")

	r := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two rows")
	assert.Equal(t, reportHeader, records[0])
	assert.Equal(t, "Atendido", records[1][3])
	assert.Equal(t, "Serviço concluído", records[1][8])
}

func TestReportCSVEmpty(t *testing.T) {
	svc := NewExportService()
	data, err := svc.ReportCSV(nil)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "header only")
}

func TestReportXLSX(t *testing.T) {
	svc := NewExportService()
	data, err := svc.ReportXLSX(sampleRows())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Relatório")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Data", rows[0][0])
	assert.Equal(t, "00112-00012345/2026-11", rows[1][1])
}

func TestProcessesExports(t *testing.T) {
	svc := NewExportService()
	items := []ProcessListItem{{
		Number:                 "00112-00012345/2026-11",
		CurrentStatus:          "Atendido",
		OriginRegion:           "Taguatinga (RA III)",
		DemandType:             "Zeladoria",
		Demand:                 "Tapa-buraco",
		DestinationDirectorate: "Diretoria das Cidades - DC",
		LastMovementAt:         "2026-02-14",
	}}

	data, err := svc.ProcessesCSV(items)
	require.NoError(t, err)
	r := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, processHeader, records[0])
	assert.Equal(t, "Atendido", records[1][1])

	xlsxData, err := svc.ProcessesXLSX(items)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(xlsxData))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Processos")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	pdfData, err := svc.ProcessesPDF(items)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfData, []byte("%PDF")))
}

func TestReportPDFAndDOCXAreWellFormed(t *testing.T) {
	svc := NewExportService()

	pdf, err := svc.ReportPDF(sampleRows(), sampleSummary())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "PDF magic bytes")

	docx, err := svc.ReportDOCX(sampleRows(), sampleSummary())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(docx, []byte("PK")), "DOCX is a zip container")
}

func TestReportDOCXEmptyResult(t *testing.T) {
	svc := NewExportService()
	data, err := svc.ReportDOCX(nil, model.ReportSummary{AverageDays: "0.0"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestProcessPDFRendersDossier(t *testing.T) {
	db := newTestDB(t)
	processSvc := newProcessService(db)
	user := seedUser(t, db, "maria", false)
	p := createProcess(t, db, processSvc, "00112-00012345/2026-11", user)

	_, err := processSvc.RecordMovement(context.Background(), p.ID, RecordMovementRequest{
		NewStatus: "Atendido",
		Date:      "2026-02-14",
		Note:      "Serviço concluído",
		UserID:    user.ID.String(),
	})
	require.NoError(t, err)

	detail, err := processSvc.GetDetail(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Movements, 2)

	svc := NewExportService()
	data, err := svc.ProcessPDF(detail)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Greater(t, len(data), 1000)
}

func TestReportHeaderCatalog(t *testing.T) {
	assert.Len(t, reportHeader, 9)
	for _, h := range reportHeader {
		assert.False(t, strings.Contains(h, ";"), "separator must not appear in headers")
	}
}

func TestTruncatePreservesRuneBoundaries(t *testing.T) {
	assert.Equal(t, "curto", truncate("curto", 48))

	long := strings.Repeat("ç", 50)
	got := truncate(long, 48)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ç", 45)+"...", got)
	assert.Len(t, []rune(got), 48)
}
