package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/konkalaitzidis/digital-health-app/internal/activity"
	"github.com/konkalaitzidis/digital-health-app/internal/inference"
)

const serviceName = "activity-inference"

// PredictRequest carries one window of raw accelerometer samples. Clients
// with rolling buffers may send more than one window's worth; the most
// recent full window is classified.
type PredictRequest struct {
	Samples []activity.Sample `json:"samples" binding:"required"`
}

// PredictResponse is the classification outcome.
type PredictResponse struct {
	METClass string             `json:"met_class"`
	Proba    map[string]float64 `json:"proba,omitempty"`
}

type handler struct {
	engine *inference.Engine
	logger *slog.Logger
}

func newHandler(engine *inference.Engine, logger *slog.Logger) *handler {
	return &handler{engine: engine, logger: logger}
}

// Ping reports service health and the serving model's shape.
func (h *handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": serviceName,
		"window":  h.engine.WindowLength(),
		"classes": h.engine.Classes(),
	})
}

// Predict classifies one window of samples.
func (h *handler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}

	pred, err := h.engine.Predict(req.Samples)
	if err != nil {
		var insufficient *inference.InsufficientDataError
		switch {
		case errors.As(err, &insufficient):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "insufficient samples",
				"details": insufficient.Error(),
				"have":    insufficient.Have,
				"need":    insufficient.Need,
			})

		default:
			// Feature skew and other internal failures: the client cannot
			// fix these, and the payload must not leak a half-broken result.
			h.logger.Error("prediction failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "prediction failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		METClass: pred.Class,
		Proba:    pred.Proba,
	})
}
