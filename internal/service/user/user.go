package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/alanyang/repair-desk/internal/auth"
	"github.com/alanyang/repair-desk/internal/domain/event"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	portbus "github.com/alanyang/repair-desk/internal/port/eventbus"
	portrevalidator "github.com/alanyang/repair-desk/internal/port/revalidator"
	portuser "github.com/alanyang/repair-desk/internal/port/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidUser        = errors.New("invalid user")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type AddInput struct {
	Name     string          `validate:"required,max=200"`
	Email    string          `validate:"required,email"`
	Image    string          `validate:"omitempty,url"`
	Role     domainuser.Role `validate:"required,oneof=admin worker user"`
	Password string          `validate:"required,min=8"`
}

// Service manages staff accounts: the admin "add user" flow, deletion and login.
type Service struct {
	repo        portuser.Repository
	bus         portbus.EventBus
	revalidator portrevalidator.Revalidator
	tokens      *auth.Manager
}

func NewService(repo portuser.Repository, bus portbus.EventBus, revalidator portrevalidator.Revalidator, tokens *auth.Manager) *Service {
	return &Service{repo: repo, bus: bus, revalidator: revalidator, tokens: tokens}
}

func (s *Service) Add(ctx context.Context, in AddInput) (domainuser.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return domainuser.User{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domainuser.User{}, fmt.Errorf("add user: %w", err)
	}

	created, err := s.repo.Create(ctx, domainuser.New(in.Name, in.Email, in.Image, in.Role, hash))
	if err != nil {
		return domainuser.User{}, fmt.Errorf("add user: %w", err)
	}

	if err := s.bus.Publish(ctx, event.New(event.TypeUserCreated, created.ID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish UserCreated event", "user_id", created.ID, "error", err)
	}
	s.revalidator.Revalidate(ctx, portrevalidator.TagAdminDashboard)
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domainuser.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainuser.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, filters domainuser.ListFilters) ([]domainuser.User, error) {
	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete removes the account. Tasks it held become unassigned in storage;
// subscribers of TypeUserDeleted redistribute them.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.bus.Publish(ctx, event.New(event.TypeUserDeleted, id)); err != nil {
		slog.ErrorContext(ctx, "failed to publish UserDeleted event", "user_id", id, "error", err)
	}
	s.revalidator.Revalidate(ctx, portrevalidator.TagAdminDashboard)
	return nil
}

// Login checks credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, domainuser.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domainuser.ErrNotFound) {
		return "", domainuser.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domainuser.User{}, fmt.Errorf("login: %w", err)
	}
	if !auth.CheckPasswordHash(password, u.PasswordHash) {
		return "", domainuser.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(u)
	if err != nil {
		return "", domainuser.User{}, fmt.Errorf("login: %w", err)
	}
	return token, u, nil
}
