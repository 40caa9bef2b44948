package services

import (
	"context"
	"net/http"
	"time"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/models"
	"aneka-keramik/internal/repositories"
	"aneka-keramik/internal/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthService interface {
	Register(ctx context.Context, req *dtos.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *dtos.LoginRequest) (*dtos.AuthResponse, error)
	Logout(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	EnsureAdmin(ctx context.Context, username, password string) error
}

type authService struct {
	userRepo   repositories.UserRepository
	jwtService utils.JWTService
	tokenRepo  repositories.TokenRepository
	now        func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, jwtService utils.JWTService, tokenRepo repositories.TokenRepository) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenRepo:  tokenRepo,
		now:        time.Now,
	}
}

// Register creates another back-office account. Usernames are unique.
func (s *authService) Register(ctx context.Context, req *dtos.RegisterRequest) (*models.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, usernameTaken()
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}
	user := models.NewUser(req.Username, hashed, role)
	user.FirstName = req.FirstName
	user.LastName = req.LastName

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race against a concurrent register
		if mongo.IsDuplicateKeyError(err) {
			return nil, usernameTaken()
		}
		return nil, err
	}

	logrus.WithField("username", user.Username).Info("Registered user")
	return user, nil
}

func usernameTaken() *ResponseError {
	return NewValidationError(dtos.ValidationErrorItem{Field: "username", Message: constants.MsgUsernameTaken})
}

func (s *authService) Login(ctx context.Context, req *dtos.LoginRequest) (*dtos.AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NotFound(constants.MsgUserNotFound)
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		return nil, NewResponseError(http.StatusUnauthorized, constants.MsgWrongPassword)
	}

	accessToken, err := s.jwtService.GenerateToken(user.ID.Hex(), user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	logrus.WithField("username", user.Username).Info("Admin logged in")
	return &dtos.AuthResponse{
		AccessToken: *accessToken,
		User:        *user,
	}, nil
}

// Logout revokes the access token until it would have expired on its own.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil {
		return NewResponseError(http.StatusUnauthorized, constants.MsgUnauthorized)
	}
	return s.tokenRepo.BlacklistToken(ctx, accessToken, claims.ExpiresAt.Sub(s.now()))
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NotFound(constants.MsgUserNotFound)
	}
	return user, nil
}

// EnsureAdmin creates the admin account on first start. An existing account is left alone.
func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		logrus.Warn("ADMIN_USERNAME or ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, models.NewUser(username, hashed, models.RoleAdmin)); err != nil {
		return err
	}

	logrus.WithField("username", username).Info("Seeded admin user")
	return nil
}
