package api

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/service"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// AthleteResponse excludes the password hash and the calendar key.
type AthleteResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	IntervalsAthleteID string    `json:"intervalsAthleteId,omitempty"`
	HasIntervalsKey    bool      `json:"hasIntervalsKey"`
	CreatedAt          time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Athlete AthleteResponse `json:"athlete"`
}

// CalendarCredentialsRequest sets the athlete's own calendar access.
// Empty values revert to the server defaults.
type CalendarCredentialsRequest struct {
	AthleteID string `json:"athleteId"`
	APIKey    string `json:"apiKey"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new athlete
// @Tags Auth
// @Accept json
// @Produce json
// @Param athlete body RegisterRequest true "Registration details"
// @Success 201 {object} AthleteResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	athlete, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAthleteAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapAthleteToResponse(athlete))
}

// Login godoc
// @Summary Log in an athlete
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, athlete, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else if errors.Is(err, service.ErrTokenGeneration) {
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Athlete: MapAthleteToResponse(athlete),
	})
}

// Me returns the authenticated athlete.
func (h *AuthHandler) Me(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	athlete, err := h.authService.GetAthlete(c.Request.Context(), athleteID)
	if err != nil {
		if errors.Is(err, service.ErrAthleteNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Failed to load athlete")
		return
	}
	c.JSON(http.StatusOK, MapAthleteToResponse(athlete))
}

// UpdateCalendarCredentials godoc
// @Summary Store the athlete's intervals.icu id and API key
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body CalendarCredentialsRequest true "Calendar credentials"
// @Success 200 {object} AthleteResponse
// @Router /me/intervals [put]
func (h *AuthHandler) UpdateCalendarCredentials(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	var req CalendarCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	athlete, err := h.authService.UpdateCalendarCredentials(c.Request.Context(), athleteID, req.AthleteID, req.APIKey)
	if err != nil {
		if errors.Is(err, service.ErrAthleteNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Failed to update calendar credentials")
		return
	}
	c.JSON(http.StatusOK, MapAthleteToResponse(athlete))
}

// MapAthleteToResponse converts a domain Athlete to an AthleteResponse DTO.
func MapAthleteToResponse(athlete *domain.Athlete) AthleteResponse {
	if athlete == nil {
		return AthleteResponse{}
	}
	return AthleteResponse{
		ID:                 athlete.ID.Hex(),
		Name:               athlete.Name,
		Email:              athlete.Email,
		IntervalsAthleteID: athlete.IntervalsAthleteID,
		HasIntervalsKey:    athlete.IntervalsAPIKey != "",
		CreatedAt:          athlete.CreatedAt,
	}
}
