package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Gorstka/Yatube/pkg/response"
)

func (h *Handler) AboutAuthor(c *gin.Context) {
	response.Success(c, PageResponse{
		Title: "About the author",
		Text:  "Yatube is a small social network for writers and readers.",
	})
}

func (h *Handler) AboutTech(c *gin.Context) {
	response.Success(c, PageResponse{
		Title: "Technologies",
		Text:  "Go, Gin, GORM, Redis, Prometheus.",
	})
}
