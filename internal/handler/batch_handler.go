package handler

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cfdibox/internal/csvexport"
	"cfdibox/internal/domain"
	"cfdibox/internal/service"
	"cfdibox/internal/xlsxexport"
)

// BatchHandler handles batch processing and export endpoints.
type BatchHandler struct {
	batchService service.BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService service.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

// batchSummary is the JSON shape returned after processing a batch.
type batchSummary struct {
	ID                uuid.UUID                                 `json:"id"`
	RecordCount       int                                       `json:"record_count"`
	InputCount        int                                       `json:"input_count"`
	DuplicateCount    int                                       `json:"duplicate_count"`
	MissingStampCount int                                       `json:"missing_stamp_count"`
	MalformedCount    int                                       `json:"malformed_count"`
	TotalSum          string                                    `json:"total_sum"`
	ByType            map[domain.InvoiceType]domain.TypeSummary `json:"by_type"`
}

// Process handles POST /api/v1/batches
// @Summary      Process a batch of CFDI documents
// @Description  Accepts multipart XML files, extracts and deduplicates invoice records
// @Tags         batches
// @Accept       multipart/form-data
// @Produce      json
// @Param        files formData file true "CFDI XML files"
// @Success      201 {object} APIResponse
// @Failure      400 {object} APIResponse "No documents supplied"
// @Failure      422 {object} APIResponse "No valid data extracted"
// @Router       /batches [post]
func (h *BatchHandler) Process(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "expected multipart form data")
		return
	}

	files := form.File["files"]
	docs := make([]domain.RawDocument, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file "+fh.Filename)
			return
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file "+fh.Filename)
			return
		}
		docs = append(docs, domain.RawDocument{Name: fh.Filename, Content: content})
	}

	result, err := h.batchService.ProcessBatch(c.Request.Context(), docs)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, batchSummary{
		ID:                result.ID,
		RecordCount:       result.Count(),
		InputCount:        result.InputCount,
		DuplicateCount:    result.DuplicateCount,
		MissingStampCount: result.MissingStampCount,
		MalformedCount:    result.MalformedCount,
		TotalSum:          result.TotalSum.StringFixed(2),
		ByType:            result.ByType,
	})
}

// Get handles GET /api/v1/batches/:id
// @Summary      Fetch a processed batch
// @Tags         batches
// @Produce      json
// @Param        id path string true "Batch UUID"
// @Success      200 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Router       /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}
	RespondOK(c, result)
}

// ExportCSV handles GET /api/v1/batches/:id/export/csv
// @Summary      Download a batch as CSV
// @Tags         batches
// @Produce      text/csv
// @Param        id path string true "Batch UUID"
// @Success      200 {file} file
// @Failure      404 {object} APIResponse
// @Router       /batches/{id}/export/csv [get]
func (h *BatchHandler) ExportCSV(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err == nil {
		_ = w.WriteRecords(result.Records)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("batchHandler.ExportCSV: %v", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "could not build CSV export")
		return
	}

	filename := csvexport.BuildFilename("reporte_contable", "csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/batches/:id/export/xlsx
// @Summary      Download a batch as a multi-section workbook
// @Tags         batches
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "Batch UUID"
// @Success      200 {file} file
// @Failure      404 {object} APIResponse
// @Router       /batches/{id}/export/xlsx [get]
func (h *BatchHandler) ExportXLSX(c *gin.Context) {
	result, ok := h.lookup(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := xlsxexport.Write(&buf, result); err != nil {
		log.Printf("batchHandler.ExportXLSX: %v", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "could not build XLSX export")
		return
	}

	filename := csvexport.BuildFilename("revision_contable", "xlsx")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// lookup resolves the :id path parameter to a batch, responding with the
// appropriate error when it cannot.
func (h *BatchHandler) lookup(c *gin.Context) (*domain.BatchResult, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BATCH_ID", "batch id must be a valid UUID")
		return nil, false
	}
	result, err := h.batchService.GetBatch(id)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return result, true
}
