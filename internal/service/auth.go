package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/internal/service/session"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

type tokenIssuer interface {
	GenerateToken(employeeID, companyID string, status domain.Status, tokenVersion int64) (string, error)
}

// AuthService authenticates employees against their bcrypt hash and issues
// versioned JWTs. Inactive employees and employees of suspended companies
// cannot log in.
type AuthService struct {
	repo     repository.Repository
	sessions *session.Versioner
	issuer   tokenIssuer
	logger   *logger.Logger
}

func NewAuthService(repo repository.Repository, sessions *session.Versioner, issuer tokenIssuer, logger *logger.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		sessions: sessions,
		issuer:   issuer,
		logger:   logger,
	}
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	employee, err := s.repo.Employee().GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	company, err := s.repo.Company().GetByID(ctx, employee.CompanyID)
	if err != nil {
		return nil, err
	}
	if !company.Active {
		return nil, ErrEmployeeInactive
	}

	version, err := s.sessions.Current(ctx, employee.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.GenerateToken(employee.ID, employee.CompanyID, domain.Status(employee.Status), version)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Employee %s logged in (company %s)", employee.ID, employee.CompanyID)
	return &dto.LoginResponse{
		Token:    token,
		Employee: *dto.FromEmployee(employee),
	}, nil
}

// Logout revokes every outstanding token of the employee.
func (s *AuthService) Logout(ctx context.Context, employeeID string) error {
	_, err := s.sessions.Bump(ctx, employeeID)
	return err
}

// ChangePassword rehashes the password and revokes existing sessions.
func (s *AuthService) ChangePassword(ctx context.Context, employeeID, oldPassword, newPassword string) error {
	employee, err := s.repo.Employee().GetByID(ctx, employeeID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	employee.PasswordHash = string(hash)

	if err := s.repo.Employee().Update(ctx, employee); err != nil {
		return err
	}

	_, err = s.sessions.Bump(ctx, employeeID)
	return err
}
