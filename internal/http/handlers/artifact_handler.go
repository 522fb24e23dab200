package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageImage handles GET /pdf/:pdf_name/image/:page_num. Responds with a
// redirect to a signed remote URL when available, the raw bytes otherwise.
//
// @Summary      Fetch a rendered page image
// @Tags         artifacts
// @Produce      jpeg
// @Param        pdf_name path string true "Storage key"
// @Param        page_num path int true "Page number"
// @Success      200 {file} binary
// @Success      302
// @Failure      404 {object} ErrorResponse
// @Router       /pdf/{pdf_name}/image/{page_num} [get]
func (h *Handlers) PageImage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page_num"))
	if err != nil || page < 1 {
		fail(c, http.StatusBadRequest, "Invalid page number")
		return
	}
	art, err := h.retrieval.PageImage(c.Request.Context(), c.Param("pdf_name"), page)
	if err != nil {
		fail(c, http.StatusNotFound, "Image file not found")
		return
	}
	if art.URL != "" {
		c.Redirect(http.StatusFound, art.URL)
		return
	}
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

// PageAudio handles GET /pdf/:pdf_name/audio/:page_num with the same
// redirect-or-bytes contract as PageImage. Missing narration is regenerated
// from the stored explanation when possible.
//
// @Summary      Fetch page narration audio
// @Tags         artifacts
// @Produce      mpeg
// @Param        pdf_name path string true "Storage key"
// @Param        page_num path int true "Page number"
// @Success      200 {file} binary
// @Success      302
// @Failure      404 {object} ErrorResponse
// @Router       /pdf/{pdf_name}/audio/{page_num} [get]
func (h *Handlers) PageAudio(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page_num"))
	if err != nil || page < 1 {
		fail(c, http.StatusBadRequest, "Invalid page number")
		return
	}
	art, err := h.retrieval.PageAudio(c.Request.Context(), c.Param("pdf_name"), page)
	if err != nil {
		fail(c, http.StatusNotFound, "Audio file not found")
		return
	}
	if art.URL != "" {
		c.Redirect(http.StatusFound, art.URL)
		return
	}
	c.Data(http.StatusOK, art.ContentType, art.Data)
}
