package api

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/intervals"
	"alcyxob/plan-coach/internal/service"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// maxVoiceBytes caps an uploaded clip; inline audio sent to the model is
// limited to about 20 MB.
const maxVoiceBytes = 20 << 20

// ChatHandler serves the conversation endpoints.
type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// --- Request/Response Structs ---

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type TurnResponse struct {
	Index     int       `json:"index"`
	Role      string    `json:"role"`
	Modality  string    `json:"modality"`
	Content   string    `json:"content,omitempty"`
	HasAudio  bool      `json:"hasAudio"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionResponse struct {
	ID        string            `json:"id"`
	Turns     []TurnResponse    `json:"turns"`
	Draft     *domain.PlanDraft `json:"draft,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type ReplaceOutcomeResponse struct {
	From         string                   `json:"from"`
	To           string                   `json:"to"`
	Deleted      int                      `json:"deleted"`
	DeleteFailed int                      `json:"deleteFailed"`
	Created      int                      `json:"created"`
	Failed       []domain.WorkoutProposal `json:"failed,omitempty"`
}

type TurnResultResponse struct {
	Kind         service.TurnKind        `json:"kind"`
	Reply        string                  `json:"reply"`
	Draft        *domain.PlanDraft       `json:"draft,omitempty"`
	Outcome      *ReplaceOutcomeResponse `json:"outcome,omitempty"`
	CreateStatus *int                    `json:"createStatus,omitempty"`
}

// --- Handler Methods ---

// StartSession godoc
// @Summary Start a new conversation
// @Tags Chat
// @Produce json
// @Success 201 {object} SessionResponse
// @Router /sessions [post]
func (h *ChatHandler) StartSession(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	session, err := h.chatService.StartSession(c.Request.Context(), athleteID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(session))
}

// ListSessions returns the athlete's recent sessions without transcripts.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	sessions, err := h.chatService.ListSessions(c.Request.Context(), athleteID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, MapSessionToResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	session, err := h.chatService.GetSession(c.Request.Context(), athleteID, c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

// GetDraft returns the plan waiting for confirmation; 204 when there is none.
func (h *ChatHandler) GetDraft(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	draft, err := h.chatService.PendingDraft(c.Request.Context(), athleteID, c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if draft == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SendMessage godoc
// @Summary Send a text turn
// @Tags Chat
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param message body SendMessageRequest true "Message"
// @Success 200 {object} TurnResultResponse
// @Failure 404 {object} gin.H "Session not found"
// @Failure 412 {object} gin.H "Calendar credentials missing"
// @Router /sessions/{sessionId}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.chatService.SendText(c.Request.Context(), athleteID, c.Param("sessionId"), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTurnResultToResponse(result))
}

// SendVoice godoc
// @Summary Send a voice turn
// @Tags Chat
// @Accept multipart/form-data
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param audio formData file true "Recorded clip"
// @Success 200 {object} TurnResultResponse
// @Router /sessions/{sessionId}/voice [post]
func (h *ChatHandler) SendVoice(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Multipart field 'audio' is required")
		return
	}
	if fileHeader.Size > maxVoiceBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Voice clip is too large")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded clip")
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(io.LimitReader(file, maxVoiceBytes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded clip")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if override := c.PostForm("mimeType"); override != "" {
		mimeType = override
	}

	result, err := h.chatService.SendVoice(c.Request.Context(), athleteID, c.Param("sessionId"), audio, mimeType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTurnResultToResponse(result))
}

// GetTurnAudio returns a short-lived download URL for a voice turn.
func (h *ChatHandler) GetTurnAudio(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		abortWithError(c, http.StatusBadRequest, "Turn index must be a non-negative integer")
		return
	}
	url, err := h.chatService.VoiceClipURL(c.Request.Context(), athleteID, c.Param("sessionId"), index)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// respondServiceError maps service errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var statusErr *intervals.StatusError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrNoVoiceClip), errors.Is(err, service.ErrAthleteNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMissingCredentials):
		abortWithError(c, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrEmptyAudio), errors.Is(err, service.ErrInvalidRange):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &statusErr):
		_ = c.Error(err)
		abortWithError(c, http.StatusBadGateway, fmt.Sprintf("Calendar service answered %d", statusErr.StatusCode))
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// --- Mappers ---

func MapSessionToResponse(session *domain.Session) SessionResponse {
	resp := SessionResponse{
		ID:        session.ID,
		Turns:     make([]TurnResponse, 0, len(session.Turns)),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
	for _, turn := range session.Turns {
		resp.Turns = append(resp.Turns, TurnResponse{
			Index:     turn.Index,
			Role:      string(turn.Role),
			Modality:  string(turn.Modality),
			Content:   turn.Content,
			HasAudio:  turn.AudioRef != "",
			CreatedAt: turn.CreatedAt,
		})
	}
	if draft, ok := session.Drafts.Peek(); ok {
		resp.Draft = &draft
	}
	return resp
}

func MapTurnResultToResponse(result service.TurnResult) TurnResultResponse {
	resp := TurnResultResponse{
		Kind:  result.Kind,
		Reply: result.Reply,
		Draft: result.Draft,
	}
	if o := result.Outcome; o != nil {
		resp.Outcome = &ReplaceOutcomeResponse{
			From:         o.Span.Start,
			To:           o.Span.End,
			Deleted:      o.Deleted,
			DeleteFailed: o.DeleteFailed,
			Created:      o.Created,
			Failed:       o.Failed,
		}
	}
	if result.Create != nil {
		status := result.Create.StatusCode
		resp.CreateStatus = &status
	}
	return resp
}
