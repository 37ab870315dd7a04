package service

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/repository"
	"alcyxob/plan-coach/internal/storage"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message text cannot be empty")
	ErrEmptyAudio      = errors.New("voice message cannot be empty")
	ErrNoVoiceClip     = errors.New("turn has no stored voice clip")
)

// --- Service Interface ---
type ChatService interface {
	StartSession(ctx context.Context, athleteID primitive.ObjectID) (*domain.Session, error)
	GetSession(ctx context.Context, athleteID primitive.ObjectID, sessionID string) (*domain.Session, error)
	ListSessions(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Session, error)
	PendingDraft(ctx context.Context, athleteID primitive.ObjectID, sessionID string) (*domain.PlanDraft, error)
	SendText(ctx context.Context, athleteID primitive.ObjectID, sessionID, text string) (TurnResult, error)
	SendVoice(ctx context.Context, athleteID primitive.ObjectID, sessionID string, audio []byte, mimeType string) (TurnResult, error)
	VoiceClipURL(ctx context.Context, athleteID primitive.ObjectID, sessionID string, turnIndex int) (string, error)
}

// --- Service Implementation ---

// chatService loads a session, runs one turn through the TurnProcessor and
// saves the result. Turns of the same session never overlap.
type chatService struct {
	sessions  repository.SessionRepository
	creds     credentialResolver
	files     storage.FileStorage
	processor *TurnProcessor
	logger    *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

const sessionListLimit = 50

// NewChatService creates a new chat service. fallback holds the calendar
// credentials used for athletes that have not stored their own.
func NewChatService(
	sessions repository.SessionRepository,
	athletes repository.AthleteRepository,
	files storage.FileStorage,
	processor *TurnProcessor,
	fallback domain.Credentials,
	logger *zap.Logger,
) ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &chatService{
		sessions:  sessions,
		creds:     credentialResolver{athletes: athletes, fallback: fallback},
		files:     files,
		processor: processor,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *chatService) StartSession(ctx context.Context, athleteID primitive.ObjectID) (*domain.Session, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		AthleteID: athleteID,
		Turns:     []domain.ConversationTurn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("[ChatService] session started", zap.String("sessionId", session.ID), zap.String("athleteId", athleteID.Hex()))
	return session, nil
}

func (s *chatService) GetSession(ctx context.Context, athleteID primitive.ObjectID, sessionID string) (*domain.Session, error) {
	return s.load(ctx, athleteID, sessionID)
}

func (s *chatService) ListSessions(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Session, error) {
	return s.sessions.ListByAthlete(ctx, athleteID, sessionListLimit)
}

// PendingDraft returns the plan waiting for confirmation, or nil.
func (s *chatService) PendingDraft(ctx context.Context, athleteID primitive.ObjectID, sessionID string) (*domain.PlanDraft, error) {
	session, err := s.load(ctx, athleteID, sessionID)
	if err != nil {
		return nil, err
	}
	draft, ok := session.Drafts.Peek()
	if !ok {
		return nil, nil
	}
	return &draft, nil
}

func (s *chatService) SendText(ctx context.Context, athleteID primitive.ObjectID, sessionID, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, ErrEmptyMessage
	}
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, athleteID, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	creds, err := s.creds.resolve(ctx, athleteID)
	if err != nil {
		return TurnResult{}, err
	}
	return s.process(ctx, *session, creds, TurnInput{Modality: domain.ModalityText, Text: text})
}

// SendVoice stores the clip first; a storage failure aborts the turn before
// the session changes.
func (s *chatService) SendVoice(ctx context.Context, athleteID primitive.ObjectID, sessionID string, audio []byte, mimeType string) (TurnResult, error) {
	if len(audio) == 0 {
		return TurnResult{}, ErrEmptyAudio
	}
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, athleteID, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	creds, err := s.creds.resolve(ctx, athleteID)
	if err != nil {
		return TurnResult{}, err
	}

	key := storage.VoiceClipKey(athleteID.Hex(), sessionID, mimeType)
	if err := s.files.PutObject(ctx, key, mimeType, audio); err != nil {
		s.logger.Error("[ChatService] storing voice clip failed", zap.String("sessionId", sessionID), zap.Error(err))
		return TurnResult{}, err
	}

	return s.process(ctx, *session, creds, TurnInput{
		Modality: domain.ModalityAudio,
		Audio:    audio,
		MIMEType: mimeType,
		AudioRef: key,
	})
}

func (s *chatService) VoiceClipURL(ctx context.Context, athleteID primitive.ObjectID, sessionID string, turnIndex int) (string, error) {
	session, err := s.load(ctx, athleteID, sessionID)
	if err != nil {
		return "", err
	}
	turn, ok := session.Turn(turnIndex)
	if !ok || turn.AudioRef == "" {
		return "", ErrNoVoiceClip
	}
	return s.files.GeneratePresignedDownloadURL(ctx, turn.AudioRef, storage.DefaultPresignedURLExpiry)
}

func (s *chatService) process(ctx context.Context, session domain.Session, creds domain.Credentials, in TurnInput) (TurnResult, error) {
	// The turn and its save outlive a disconnected client.
	ctx = context.WithoutCancel(ctx)
	next, result, err := s.processor.Process(ctx, session, creds, in)
	if err != nil {
		return TurnResult{}, err
	}
	if err := s.sessions.Save(ctx, &next); err != nil {
		// The calendar may already reflect this turn; only the transcript is lost.
		s.logger.Error("[ChatService] saving session failed",
			zap.String("sessionId", session.ID), zap.String("kind", string(result.Kind)), zap.Error(err))
		return TurnResult{}, err
	}
	return result, nil
}

// load fetches a session owned by athleteID. Sessions of other athletes are
// reported as missing.
func (s *chatService) load(ctx context.Context, athleteID primitive.ObjectID, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.AthleteID != athleteID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *chatService) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
