package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/itish2003/supportbot/models"
	"github.com/itish2003/supportbot/services"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "Support Bot"

// RAGController handles the HTTP requests for our RAG API. It depends on the
// RAGService to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
}

// NewRAGController creates a new RAGController.
func NewRAGController(service services.RAGService) *RAGController {
	return &RAGController{
		ragService: service,
	}
}

// Ask is the Gin handler for the POST /ask endpoint.
func (c *RAGController) Ask(ctx *gin.Context) {
	var req models.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.ragService.Ask(ctx.Request.Context(), req)
	if err != nil {
		logger.Errorw("SERVICE: ask failed", "error", err.Error())
		if errors.Is(err, services.ErrMalformedAnswer) {
			ctx.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "The language model returned an unreadable answer"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate AI response"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetAllChunks is the Gin handler for the GET /api/v1/chunks endpoint.
func (c *RAGController) GetAllChunks(ctx *gin.Context) {
	response, err := c.ragService.GetAllChunks(ctx.Request.Context())
	if err != nil {
		logger.Errorw("SERVICE: listing chunks failed", "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to retrieve chunks"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// Health is the Gin handler for the GET /health endpoint. A store failure
// reports the service as degraded with status 503.
func (c *RAGController) Health(ctx *gin.Context) {
	count, err := c.ragService.GetTotalChunks(ctx.Request.Context())
	if err != nil {
		logger.Warnw("SERVICE: health check could not count chunks", "error", err.Error())
		ctx.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "degraded", Service: ServiceName})
		return
	}
	ctx.JSON(http.StatusOK, models.HealthResponse{Status: "healthy", Service: ServiceName, Chunks: count})
}
