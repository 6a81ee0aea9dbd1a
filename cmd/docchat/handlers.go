package main

import (
	"errors"
	"io"
	"net/http"

	"docchat/internal/rag/ragerr"
	"docchat/internal/service"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps how large an uploaded document may be.
const maxUploadBytes = 50 << 20 // 50 MiB

// HttpHandler exposes the orchestrator over REST.
type HttpHandler struct {
	service *service.Service
}

// NewHttpHandler creates a new HTTP handler around the orchestrator.
func NewHttpHandler(svc *service.Service) *HttpHandler {
	return &HttpHandler{service: svc}
}

// Register wires the handler's routes onto the router.
func (h *HttpHandler) Register(router *gin.Engine) {
	router.GET("/", h.root)
	router.GET("/health", h.health)
	router.POST("/upload", h.upload)
	router.POST("/ask", h.ask)
	router.DELETE("/reset", h.reset)
	router.GET("/history", h.history)
}

func (h *HttpHandler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "docchat is running"})
}

func (h *HttpHandler) health(c *gin.Context) {
	status, err := h.service.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *HttpHandler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "multipart field 'file' is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "failed to read upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "failed to read upload"})
		return
	}

	result, err := h.service.Upload(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Document uploaded and processed successfully",
		"filename": result.Filename,
		"pages":    result.Pages,
		"chunks":   result.Chunks,
	})
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     int    `json:"k"`
}

func (h *HttpHandler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "question is required"})
		return
	}

	result, err := h.service.Ask(c.Request.Context(), req.Question, req.TopK)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer":           result.Answer,
		"kind":             result.Kind,
		"source_documents": result.Sources,
	})
}

func (h *HttpHandler) reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database reset successfully"})
}

func (h *HttpHandler) history(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.service.History()})
}

// writeError translates the orchestrator's error taxonomy into structured
// HTTP responses. Internal details never leak past this point.
func (h *HttpHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ragerr.ErrUnsupportedFormat), errors.Is(err, ragerr.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, ragerr.ErrNoDocuments):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No documents uploaded yet. Please upload a document first."})
	case errors.Is(err, ragerr.ErrEmbedding):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Embedding provider failed; the request was aborted."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}

// corsMiddleware allows any origin, matching the permissive policy the
// bundled chat UI expects.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
