package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/apperr"
	"github.com/elevohq/elevo-backend/internal/auth"
	"github.com/elevohq/elevo-backend/internal/config"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const sessionTTL = 24 * time.Hour

type UserService interface {
	Register(ctx context.Context, dto RegisterDTO) (*UserResponse, error)
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*UserResponse, error)
	ListSkills(ctx context.Context, userID uuid.UUID) ([]UserSkill, error)
}

type userService struct {
	repo UserRepository
}

func NewService(repo UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Register(ctx context.Context, dto RegisterDTO) (*UserResponse, error) {
	log := config.WithContext(ctx)

	if dto.Email == "" {
		return nil, &apperr.ValidationError{Field: "email", Reason: "required"}
	}
	if dto.Name == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "required"}
	}
	role := Role(dto.Role)
	if dto.Role == "" {
		role = RoleEmployee
	}
	if !role.IsValid() {
		return nil, &apperr.ValidationError{Field: "role", Reason: "unknown role"}
	}
	orgID, err := uuid.Parse(dto.OrgID)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "org_id", Reason: "invalid uuid"}
	}

	existing, err := s.repo.FindByEmail(dto.Email)
	if err != nil {
		log.WithError(err).Error("Failed to check email availability")
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := config.HashPassword(dto.Password)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "password", Reason: err.Error()}
	}

	u := &User{
		ID:           uuid.New(),
		OrgID:        orgID,
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if dto.ManagerID != nil {
		managerID, err := uuid.Parse(*dto.ManagerID)
		if err != nil {
			return nil, &apperr.ValidationError{Field: "manager_id", Reason: "invalid uuid"}
		}
		u.ManagerID = &managerID
	}

	if err := s.repo.Create(u); err != nil {
		log.WithError(err).Error("Failed to create user")
		return nil, err
	}

	log.WithField("user_id", u.ID).Info("User registered successfully")
	return toResponse(u), nil
}

func (s *userService) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	log := config.WithContext(ctx)

	u, err := s.repo.FindByEmail(dto.Email)
	if err != nil {
		log.WithError(err).Error("Failed to look up user for login")
		return nil, err
	}
	if u == nil || !config.CheckPassword(u.PasswordHash, dto.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(u.ID.String(), u.OrgID.String(), string(u.Role), sessionTTL)
	if err != nil {
		log.WithError(err).Error("Failed to sign session token")
		return nil, err
	}

	return &LoginResponse{Token: token, User: toResponse(u)}, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return toResponse(u), nil
}

func (s *userService) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*UserResponse, error) {
	users, err := s.repo.ListByOrg(orgID)
	if err != nil {
		return nil, err
	}
	responses := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, toResponse(u))
	}
	return responses, nil
}

func (s *userService) ListSkills(ctx context.Context, userID uuid.UUID) ([]UserSkill, error) {
	return s.repo.ListSkills(userID)
}

func toResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		OrgID:     u.OrgID,
		ManagerID: u.ManagerID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Skills:    u.Skills,
		CreatedAt: u.CreatedAt,
	}
}
