package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DownloadMaterials handles GET /download-materials/:pdf_name, returning a
// zip of every stored artifact for the document.
//
// @Summary      Download all study materials as a zip
// @Tags         materials
// @Produce      application/zip
// @Param        pdf_name path string true "Storage key"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Router       /download-materials/{pdf_name} [get]
func (h *Handlers) DownloadMaterials(c *gin.Context) {
	key := c.Param("pdf_name")
	pages, err := h.retrieval.ResolvePageCount(c.Request.Context(), key)
	if err != nil {
		fail(c, http.StatusNotFound, "PDF folder not found")
		return
	}
	data, err := h.materials.Bundle(c.Request.Context(), key, pages)
	if err != nil {
		failErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_materials.zip", key))
	c.Data(http.StatusOK, "application/zip", data)
}
