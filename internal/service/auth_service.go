package service

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAthleteAlreadyExists = errors.New("athlete with this email already exists")
	ErrAthleteNotFound      = errors.New("athlete not found")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// TokenIssuer is the issuer claim of every token signed by the service.
const TokenIssuer = "plan-coach"

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Athlete, error)
	Login(ctx context.Context, email, password string) (token string, athlete *domain.Athlete, err error)
	GetAthlete(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error)
	UpdateCalendarCredentials(ctx context.Context, id primitive.ObjectID, intervalsAthleteID, apiKey string) (*domain.Athlete, error)
	GetJWTSecret() string
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	athleteRepo   repository.AthleteRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(athleteRepo repository.AthleteRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		athleteRepo:   athleteRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new athlete registration.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.Athlete, error) {
	// 1. Basic Input Validation
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}

	// 2. Check if the email is taken
	_, err := s.athleteRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrAthleteAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 3. Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	// 4. Save; ID and timestamps are set by the repository
	athlete := &domain.Athlete{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	athleteID, err := s.athleteRepo.Create(ctx, athlete)
	if err != nil {
		// Lost a race against a concurrent registration; the unique index caught it.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAthleteAlreadyExists
		}
		return nil, err
	}
	athlete.ID = athleteID

	athlete.PasswordHash = ""
	return athlete, nil
}

// Login handles athlete authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, athlete *domain.Athlete, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	athlete, err = s.athleteRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(athlete.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(athlete)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	athlete.PasswordHash = ""
	return token, athlete, nil
}

func (s *authService) GetAthlete(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	athlete, err := s.athleteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	athlete.PasswordHash = ""
	return athlete, nil
}

// UpdateCalendarCredentials stores the athlete's own calendar id and key.
// Empty values fall back to the server defaults.
func (s *authService) UpdateCalendarCredentials(ctx context.Context, id primitive.ObjectID, intervalsAthleteID, apiKey string) (*domain.Athlete, error) {
	err := s.athleteRepo.UpdateCalendarCredentials(ctx, id, strings.TrimSpace(intervalsAthleteID), strings.TrimSpace(apiKey))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	return s.GetAthlete(ctx, id)
}

// --- JWT Helper ---

// Claims is the JWT payload shared with the API middleware.
type Claims struct {
	AthleteID string `json:"aid"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given athlete.
func (s *authService) generateJWT(athlete *domain.Athlete) (string, error) {
	now := time.Now()
	claims := &Claims{
		AthleteID: athlete.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   athlete.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
