package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alcyxob/plan-coach/internal/config"
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/interpreter"
	"alcyxob/plan-coach/internal/intervals"
	"alcyxob/plan-coach/internal/llm"
	"alcyxob/plan-coach/internal/repository"

	"go.uber.org/zap"
)

var ErrMissingCredentials = errors.New("calendar athlete id and api key are required")

// TurnKind says what a processed turn did.
type TurnKind string

const (
	TurnConfirmed TurnKind = "confirmed" // pending plan written to the calendar
	TurnProposed  TurnKind = "proposed"  // new plan waiting for confirmation
	TurnCreated   TurnKind = "created"   // single workout created immediately
	TurnChat      TurnKind = "chat"
	TurnFailed    TurnKind = "failed" // model call failed
)

// TurnInput is one user turn.
type TurnInput struct {
	Modality domain.Modality
	Text     string
	Audio    []byte
	MIMEType string
	AudioRef string // storage key of the clip, if it was persisted
}

// TurnResult is what the athlete gets back for a turn.
type TurnResult struct {
	Kind    TurnKind                `json:"kind"`
	Reply   string                  `json:"reply"`
	Draft   *domain.PlanDraft       `json:"draft,omitempty"`
	Outcome *ReplaceOutcome         `json:"outcome,omitempty"`
	Create  *intervals.CreateResult `json:"create,omitempty"`
}

// TurnProcessor runs the propose/confirm workflow for one turn at a time.
// The session is passed in and the updated session returned; the input value
// is left untouched.
type TurnProcessor struct {
	model     llm.Model
	calendars CalendarFactory
	selector  *ContextSelector
	detector  *ConfirmationDetector
	engine    *BulkReplaceEngine
	logger    *zap.Logger
	now       func() time.Time
}

func NewTurnProcessor(
	model llm.Model,
	calendars CalendarFactory,
	selector *ContextSelector,
	detector *ConfirmationDetector,
	engine *BulkReplaceEngine,
	logger *zap.Logger,
) *TurnProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TurnProcessor{
		model:     model,
		calendars: calendars,
		selector:  selector,
		detector:  detector,
		engine:    engine,
		logger:    logger,
		now:       time.Now,
	}
}

// NewAssistant wires a TurnProcessor from the assistant settings. runs may
// be nil to skip the replace log.
func NewAssistant(cfg config.AssistantConfig, model llm.Model, calendars CalendarFactory, runs repository.ReplaceRunRepository, logger *zap.Logger) *TurnProcessor {
	cfg = cfg.WithDefaults()
	return NewTurnProcessor(
		model,
		calendars,
		NewContextSelector(cfg, logger),
		NewConfirmationDetector(cfg.ConfirmKeywords),
		NewBulkReplaceEngine(cfg, runs, logger),
		logger,
	)
}

// Process handles one user turn.
func (p *TurnProcessor) Process(ctx context.Context, sess domain.Session, creds domain.Credentials, in TurnInput) (domain.Session, TurnResult, error) {
	if !creds.Complete() {
		return sess, TurnResult{}, ErrMissingCredentials
	}
	if in.Modality == "" {
		in.Modality = domain.ModalityText
	}
	// A started turn is not cancellable.
	ctx = context.WithoutCancel(ctx)
	cal := p.calendars(creds.APIKey)
	now := p.now()
	log := p.logger.With(zap.String("sessionId", sess.ID), zap.String("modality", string(in.Modality)))

	next := sess.Append(domain.ConversationTurn{
		Role:      domain.RoleUser,
		Modality:  in.Modality,
		Content:   in.Text,
		AudioRef:  in.AudioRef,
		MIMEType:  in.MIMEType,
		CreatedAt: now.UTC(),
	})

	// 1. Confirmation of a pending plan. Voice turns never confirm.
	if in.Modality == domain.ModalityText {
		if draft, ok := next.Drafts.Peek(); ok && p.detector.Confirms(in.Text) {
			outcome := p.engine.Replace(ctx, cal, creds.AthleteID, draft.Items)
			next.Drafts.Clear()
			reply := fmt.Sprintf("✅ %d units updated.", outcome.Created)
			next = p.reply(next, reply)
			log.Info("[TurnProcessor] plan confirmed", zap.Int("created", outcome.Created), zap.Int("items", len(draft.Items)))
			return next, TurnResult{Kind: TurnConfirmed, Reply: reply, Outcome: &outcome}, nil
		}
	}

	// 2. Context and model call
	var bundle ContextBundle
	prompt := llm.Prompt{}
	if in.Modality == domain.ModalityAudio {
		bundle = p.selector.ForAudio(ctx, cal, creds.AthleteID)
		prompt.Text = llm.AudioInstruction
		prompt.Audio = in.Audio
		prompt.AudioMIMEType = in.MIMEType
	} else {
		bundle = p.selector.ForText(ctx, cal, creds.AthleteID, in.Text)
		prompt.Text = in.Text
	}
	prompt.System = llm.SystemInstruction(now, encodeContext(bundle))

	raw, err := p.model.Generate(ctx, prompt)
	if err != nil {
		log.Error("[TurnProcessor] model call failed", zap.Error(err))
		reply := fmt.Sprintf("⚠️ Error: %v", err)
		next = p.reply(next, reply)
		return next, TurnResult{Kind: TurnFailed, Reply: reply}, nil
	}

	// 3. Act on the interpreted reply
	parsed := interpreter.Interpret(raw)
	switch parsed.Intent {
	case interpreter.IntentPropose:
		draft := domain.PlanDraft{
			Items:         parsed.Workouts,
			Summary:       parsed.Text,
			CreatedAtTurn: next.NextTurnIndex(),
			ProposedAt:    now.UTC(),
		}
		next.Drafts.Propose(draft)
		stored, _ := next.Drafts.Peek()
		reply := parsed.Text
		if reply == "" {
			reply = fmt.Sprintf("Proposed %d workouts. Confirm to upload them.", len(stored.Items))
		}
		next = p.reply(next, reply)
		log.Info("[TurnProcessor] plan proposed", zap.Int("items", len(stored.Items)))
		return next, TurnResult{Kind: TurnProposed, Reply: reply, Draft: &stored}, nil

	case interpreter.IntentCreate:
		result, err := p.engine.CreateOne(ctx, cal, creds.AthleteID, parsed.Workout)
		var reply string
		if err == nil && result.OK() {
			reply = fmt.Sprintf("✅ Done!\n\n%s\n\nDate: %s", parsed.Text, parsed.Workout.Day())
		} else {
			log.Warn("[TurnProcessor] single create failed", zap.Int("status", result.StatusCode), zap.Error(err))
			reply = fmt.Sprintf("❌ Intervals error: %d - %s", result.StatusCode, result.Body)
		}
		next = p.reply(next, reply)
		return next, TurnResult{Kind: TurnCreated, Reply: reply, Create: &result}, nil

	default:
		next = p.reply(next, parsed.Text)
		return next, TurnResult{Kind: TurnChat, Reply: parsed.Text}, nil
	}
}

func (p *TurnProcessor) reply(sess domain.Session, text string) domain.Session {
	return sess.Append(domain.ConversationTurn{
		Role:      domain.RoleAssistant,
		Modality:  domain.ModalityText,
		Content:   text,
		CreatedAt: p.now().UTC(),
	})
}

func encodeContext(bundle ContextBundle) string {
	if bundle.Empty() {
		return ""
	}
	b, err := json.Marshal(bundle)
	if err != nil {
		return ""
	}
	return string(b)
}
