package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type askQuestionRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
	PDFName  string `json:"pdf_name"`
}

// AskQuestion handles POST /ask-question.
//
// @Summary      Answer a question about document content
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        body body askQuestionRequest true "Question with context"
// @Success      200 {object} map[string]string
// @Failure      400 {object} ErrorResponse
// @Router       /ask-question [post]
func (h *Handlers) AskQuestion(c *gin.Context) {
	var req askQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Question == "" || req.Context == "" {
		fail(c, http.StatusBadRequest, "Missing question or context")
		return
	}
	answer, err := h.question.Answer(c.Request.Context(), req.Question, req.Context, req.PDFName)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
