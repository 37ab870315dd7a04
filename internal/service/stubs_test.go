package service

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/intervals"
	"alcyxob/plan-coach/internal/llm"
	"alcyxob/plan-coach/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type dateRange struct{ from, to string }

type stubCalendar struct {
	mu sync.Mutex

	events       []domain.RemoteEvent
	activities   []domain.Activity
	listErr      error
	deleteErr    map[int64]error
	createStatus map[string]int // by workout date; 200 when absent
	deleteDelay  time.Duration
	onDelete     func()

	eventRanges    []dateRange
	activityRanges []dateRange
	deleted        []int64
	created        []domain.EventPayload
	inflight       int
	maxInflight    int
}

func (s *stubCalendar) ListEvents(_ context.Context, _, from, to string) ([]domain.RemoteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventRanges = append(s.eventRanges, dateRange{from, to})
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.events, nil
}

func (s *stubCalendar) ListActivities(_ context.Context, _, from, to string) ([]domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activityRanges = append(s.activityRanges, dateRange{from, to})
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.activities, nil
}

func (s *stubCalendar) GetActivityStreams(_ context.Context, _ string, _ []string) ([]domain.Stream, error) {
	return nil, nil
}

// CreateEvent fails on a cancelled context, as the HTTP client does.
func (s *stubCalendar) CreateEvent(ctx context.Context, _ string, payload domain.EventPayload) (intervals.CreateResult, error) {
	if err := ctx.Err(); err != nil {
		return intervals.CreateResult{Body: err.Error()}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, payload)
	status := 200
	if code, ok := s.createStatus[payload.StartDateLocal[:10]]; ok {
		status = code
	}
	result := intervals.CreateResult{StatusCode: status, Body: `{"id":1}`}
	if !result.OK() {
		result.Body = "boom"
		return result, &intervals.StatusError{StatusCode: status, Body: "boom"}
	}
	return result, nil
}

func (s *stubCalendar) DeleteEvent(_ context.Context, _ string, eventID int64) error {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.maxInflight {
		s.maxInflight = s.inflight
	}
	s.mu.Unlock()

	if s.onDelete != nil {
		s.onDelete()
	}
	time.Sleep(s.deleteDelay)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err := s.deleteErr[eventID]; err != nil {
		return err
	}
	s.deleted = append(s.deleted, eventID)
	return nil
}

type stubModel struct {
	replies    []string
	err        error
	onGenerate func()

	calls      int
	lastPrompt llm.Prompt
}

func (m *stubModel) Generate(_ context.Context, prompt llm.Prompt) (string, error) {
	if m.onGenerate != nil {
		m.onGenerate()
	}
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "ok", nil
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

type stubSessionRepo struct {
	sessions map[string]domain.Session
	saveErr  error
	saves    int
}

func newStubSessionRepo(sessions ...domain.Session) *stubSessionRepo {
	repo := &stubSessionRepo{sessions: map[string]domain.Session{}}
	for _, s := range sessions {
		repo.sessions[s.ID] = s
	}
	return repo
}

func (r *stubSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.sessions[session.ID] = *session
	return nil
}

func (r *stubSessionRepo) GetByID(_ context.Context, id string) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *stubSessionRepo) ListByAthlete(_ context.Context, athleteID primitive.ObjectID, _ int64) ([]domain.Session, error) {
	out := []domain.Session{}
	for _, s := range r.sessions {
		if s.AthleteID == athleteID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSessionRepo) Save(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.sessions[session.ID] = *session
	return nil
}

type stubAthleteRepo struct {
	byID map[primitive.ObjectID]domain.Athlete

	lastCredentials [2]string
}

func newStubAthleteRepo(athletes ...domain.Athlete) *stubAthleteRepo {
	repo := &stubAthleteRepo{byID: map[primitive.ObjectID]domain.Athlete{}}
	for _, a := range athletes {
		repo.byID[a.ID] = a
	}
	return repo
}

func (r *stubAthleteRepo) Create(_ context.Context, athlete *domain.Athlete) (primitive.ObjectID, error) {
	for _, a := range r.byID {
		if a.Email == athlete.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	athlete.ID = primitive.NewObjectID()
	r.byID[athlete.ID] = *athlete
	return athlete.ID, nil
}

func (r *stubAthleteRepo) GetByEmail(_ context.Context, email string) (*domain.Athlete, error) {
	for _, a := range r.byID {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubAthleteRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *stubAthleteRepo) UpdateCalendarCredentials(_ context.Context, id primitive.ObjectID, intervalsAthleteID, apiKey string) error {
	a, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.lastCredentials = [2]string{intervalsAthleteID, apiKey}
	a.IntervalsAthleteID = intervalsAthleteID
	a.IntervalsAPIKey = apiKey
	r.byID[id] = a
	return nil
}

type stubFileStorage struct {
	putErr error

	objects     map[string][]byte
	lastType    string
	lastPresign string
}

func (s *stubFileStorage) PutObject(_ context.Context, key, contentType string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	s.lastType = contentType
	return nil
}

func (s *stubFileStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	s.lastPresign = key
	return "https://files.example/" + key, nil
}

func (s *stubFileStorage) DeleteObject(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type stubRunRepo struct {
	createErr error

	created   []domain.ReplaceRun
	completed []domain.ReplaceRun
}

func (r *stubRunRepo) Create(_ context.Context, run *domain.ReplaceRun) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	snapshot := *run
	snapshot.ID = id
	r.created = append(r.created, snapshot)
	return id, nil
}

func (r *stubRunRepo) Complete(_ context.Context, run *domain.ReplaceRun) error {
	r.completed = append(r.completed, *run)
	return nil
}

func (r *stubRunRepo) ListByAthlete(_ context.Context, athleteID string, _ int64) ([]domain.ReplaceRun, error) {
	var out []domain.ReplaceRun
	for _, run := range r.completed {
		if run.AthleteID == athleteID {
			out = append(out, run)
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")

func fixedClock(day string) func() time.Time {
	t, err := time.Parse(domain.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(10 * time.Hour) }
}
