package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-server/internal/models"
)

// UploadFile stores a multipart upload for the authenticated caller.
func (h *Handler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		handleServiceError(c, models.NewValidationError("No file uploaded"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	defer src.Close()

	path, err := h.fileService.Save(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  true,
		Message: "File uploaded successfully",
		Data:    gin.H{"path": path},
	})
}
