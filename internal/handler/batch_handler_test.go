package handler_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cfdibox/internal/batch"
	"cfdibox/internal/cfdi"
	"cfdibox/internal/csvexport"
	"cfdibox/internal/domain"
	"cfdibox/internal/handler"
	"cfdibox/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func invoiceXML(id, total string) string {
	return fmt.Sprintf(`<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4"
		xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital"
		Fecha="2026-01-15T10:30:00" TipoDeComprobante="I" Total="%s">
		<cfdi:Emisor Rfc="AAA010101AAA" Nombre="Empresa Uno"/>
		<cfdi:Receptor Rfc="BBB020202BBB" Nombre="Cliente Dos" UsoCFDI="G03"/>
		<cfdi:Complemento>
			<tfd:TimbreFiscalDigital UUID="%s"/>
		</cfdi:Complemento>
	</cfdi:Comprobante>`, total, id)
}

func newBatchHandler() (*handler.BatchHandler, service.BatchService) {
	extractor := cfdi.NewExtractor(cfdi.DefaultTaxPolicy(), cfdi.DefaultDeductPolicy())
	svc := service.NewBatchService(batch.NewProcessor(extractor, 2, 0), nil)
	return handler.NewBatchHandler(svc), svc
}

func multipartRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/v1/batches", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func processedBatch(t *testing.T, svc service.BatchService) *domain.BatchResult {
	t.Helper()
	result, err := svc.ProcessBatch(context.Background(), []domain.RawDocument{
		{Name: "a.xml", Content: []byte(invoiceXML("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", "100.00"))},
	})
	require.NoError(t, err)
	return result
}

func TestProcess_Success(t *testing.T) {
	h, _ := newBatchHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, map[string]string{
		"a.xml": invoiceXML("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", "100.00"),
		"b.xml": invoiceXML("11111111-2222-3333-4444-555555555555", "200.00"),
	})

	h.Process(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID             uuid.UUID `json:"id"`
			RecordCount    int       `json:"record_count"`
			InputCount     int       `json:"input_count"`
			DuplicateCount int       `json:"duplicate_count"`
			TotalSum       string    `json:"total_sum"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data.RecordCount)
	assert.Equal(t, 2, resp.Data.InputCount)
	assert.Equal(t, 0, resp.Data.DuplicateCount)
	assert.Equal(t, "300.00", resp.Data.TotalSum)
	assert.NotEqual(t, uuid.Nil, resp.Data.ID)
}

func TestProcess_EmptyBatch(t *testing.T) {
	h, _ := newBatchHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, nil)

	h.Process(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EMPTY_BATCH")
}

func TestProcess_NoValidRecords(t *testing.T) {
	h, _ := newBatchHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, map[string]string{"garbage.xml": "not xml at all"})

	h.Process(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_VALID_RECORDS")
}

func TestGet_NotFound(t *testing.T) {
	h, _ := newBatchHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batches/x", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "BATCH_NOT_FOUND")
}

func TestGet_InvalidID(t *testing.T) {
	h, _ := newBatchHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batches/nope", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_BATCH_ID")
}

func TestExportCSV_Success(t *testing.T) {
	h, svc := newBatchHandler()
	result := processedBatch(t, svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batches/"+result.ID.String()+"/export/csv", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: result.ID.String()}}

	h.ExportCSV(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reporte_contable_")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	require.True(t, len(body) >= 3)
	assert.Equal(t, csvexport.BOM, body[:3])

	rows, err := csv.NewReader(strings.NewReader(string(body[3:]))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvexport.Columns, rows[0])
	assert.Equal(t, "a.xml", rows[1][0])
	assert.Equal(t, "100.00", rows[1][16])
}

func TestExportXLSX_Success(t *testing.T) {
	h, svc := newBatchHandler()
	result := processedBatch(t, svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batches/"+result.ID.String()+"/export/xlsx", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: result.ID.String()}}

	h.ExportXLSX(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "revision_contable_")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Contains(t, f.GetSheetList(), "Todos")
	assert.Contains(t, f.GetSheetList(), "Resumen")
}
