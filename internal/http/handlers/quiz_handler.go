package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GenerateQuiz handles POST /generate-quiz/:pdf_name. The quiz is built
// once from the document's explanations and memoized in storage.
//
// @Summary      Generate or fetch the document quiz
// @Tags         quiz
// @Produce      json
// @Param        pdf_name path string true "Storage key"
// @Success      200 {array} services.QuizQuestion
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /generate-quiz/{pdf_name} [post]
func (h *Handlers) GenerateQuiz(c *gin.Context) {
	quiz, err := h.quiz.Generate(c.Request.Context(), c.Param("pdf_name"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}
