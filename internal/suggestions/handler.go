package suggestions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvprofile-backend/internal/llmretry"
	"cvprofile-backend/internal/profile"
	"cvprofile-backend/internal/shared/server/respond"
)

// Handler wires the suggestions endpoint to the service.
type Handler struct {
	Svc      *Service
	Provider string
}

// NewHandler constructs a Handler. provider names the LLM backend in
// response payloads.
func NewHandler(svc *Service, provider string) *Handler {
	return &Handler{Svc: svc, Provider: provider}
}

// RegisterRoutes attaches suggestion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/suggestions", h.generate)
}

type summary struct {
	TotalSuggestions int            `json:"totalSuggestions"`
	HighPriority     int            `json:"highPriority"`
	Categories       map[string]int `json:"categories"`
}

type generateResponse struct {
	Suggestions        []Item   `json:"suggestions"`
	Summary            summary  `json:"summary"`
	FromCache          bool     `json:"fromCache"`
	Provider           string   `json:"provider"`
	Attempt            int      `json:"attempt"`
	ValidationWarnings []string `json:"validationWarnings"`
	Fallback           bool     `json:"fallback,omitempty"`
	ValidationErrors   []string `json:"validationErrors,omitempty"`
}

type exhaustedResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	UserMessage string `json:"userMessage"`
}

func (h *Handler) generate(c *gin.Context) {
	var cv profile.ExtractedProfile
	if err := c.ShouldBindJSON(&cv); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{
			"reason": err.Error(),
		})
		return
	}
	if cv.ContactInfo == nil && cv.About == nil && len(cv.Skills) == 0 &&
		len(cv.Experience) == 0 && len(cv.Education) == 0 && len(cv.Achievements) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cv has no content", nil)
		return
	}

	result, err := h.Svc.Generate(c.Request.Context(), &cv)
	if err != nil {
		if errors.Is(err, llmretry.ErrRetryExhausted) {
			respond.JSON(c, http.StatusServiceUnavailable, exhaustedResponse{
				Error:       "RETRY_EXHAUSTED",
				Message:     err.Error(),
				UserMessage: "Suggestion generation is temporarily unavailable. Please try again later.",
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate suggestions", nil)
		return
	}

	categories := make(map[string]int)
	high := 0
	for _, item := range result.Items {
		categories[item.Section]++
		if item.Priority == "high" {
			high++
		}
	}

	warnings := result.ValidationWarnings
	if warnings == nil {
		warnings = []string{}
	}

	respond.JSON(c, http.StatusOK, generateResponse{
		Suggestions: result.Items,
		Summary: summary{
			TotalSuggestions: len(result.Items),
			HighPriority:     high,
			Categories:       categories,
		},
		FromCache:          false,
		Provider:           h.Provider,
		Attempt:            result.Attempt,
		ValidationWarnings: warnings,
		Fallback:           result.Degraded,
		ValidationErrors:   result.ValidationErrors,
	})
}
