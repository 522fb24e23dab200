package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studybuddy/go-study-backend/internal/http/middleware"
	"github.com/studybuddy/go-study-backend/internal/services"
)

// ProcessPDF handles POST /process-pdf: a multipart upload that either
// returns immediately for a known document or streams newline-delimited
// JSON progress events while pages are processed.
//
// @Summary      Upload and process a PDF
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      plain
// @Security     BearerAuth
// @Param        file formData file true "PDF file"
// @Param        difficulty_level formData string false "Explanation difficulty"
// @Success      200 {string} string "NDJSON event stream"
// @Failure      400 {object} ErrorResponse
// @Router       /process-pdf [post]
func (h *Handlers) ProcessPDF(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file provided")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	existing, events, err := h.ingest.Ingest(c.Request.Context(), services.IngestInput{
		UserID:     middleware.UserIDFrom(c),
		Filename:   fileHeader.Filename,
		Difficulty: c.PostForm("difficulty_level"),
		Data:       data,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusOK, gin.H{
			"type":     services.EventExisting,
			"pdf_name": existing.StorageKey,
			"message":  "PDF already exists, associating with your account",
		})
		return
	}

	c.Header("Content-Type", "text/plain")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("client disconnected mid-stream")
			// Keep draining so the pipeline goroutine can finish.
			for range events {
			}
			return
		}
		c.Writer.Flush()
	}
}

// UseExisting handles GET /use-existing/:pdf_name.
//
// @Summary      Reopen an already processed document
// @Tags         pdf
// @Produce      json
// @Security     BearerAuth
// @Param        pdf_name path string true "Storage key"
// @Success      200 {object} services.DocumentView
// @Failure      404 {object} ErrorResponse
// @Router       /use-existing/{pdf_name} [get]
func (h *Handlers) UseExisting(c *gin.Context) {
	view, err := h.retrieval.LoadDocument(c.Request.Context(), c.Param("pdf_name"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CheckPDF handles GET /check-pdf/:pdf_name.
//
// @Summary      Check whether a storage key exists
// @Tags         pdf
// @Produce      json
// @Param        pdf_name path string true "Storage key"
// @Success      200 {object} map[string]bool
// @Router       /check-pdf/{pdf_name} [get]
func (h *Handlers) CheckPDF(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"exists": h.retrieval.Exists(c.Request.Context(), c.Param("pdf_name")),
	})
}

// CheckPDFByFilename handles GET /check-pdf-by-filename/:filename.
//
// @Summary      List stored versions for an original filename
// @Tags         pdf
// @Produce      json
// @Param        filename path string true "Original filename"
// @Success      200 {object} services.FilenameCheck
// @Router       /check-pdf-by-filename/{filename} [get]
func (h *Handlers) CheckPDFByFilename(c *gin.Context) {
	check, err := h.retrieval.CheckByFilename(c.Request.Context(), c.Param("filename"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// ExistingPDFs handles GET /existing-pdfs.
//
// @Summary      List the user's processed documents
// @Tags         pdf
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string][]services.UserDocument
// @Router       /existing-pdfs [get]
func (h *Handlers) ExistingPDFs(c *gin.Context) {
	docs, err := h.retrieval.ListForUser(c.Request.Context(), middleware.UserIDFrom(c))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pdfs": docs})
}
