package member

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/neiist-dev/activities-backend/config"
	"github.com/neiist-dev/activities-backend/internal/auditlog"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Claims is the JWT payload carried by authenticated requests.
type Claims struct {
	ISTID   string `json:"istid"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type Service struct {
	Repo     *Repository
	Cfg      *config.Config
	AuditSvc auditlog.Service
}

func NewService(repo *Repository, cfg *config.Config, auditSvc auditlog.Service) *Service {
	return &Service{Repo: repo, Cfg: cfg, AuditSvc: auditSvc}
}

// Login verifies credentials and issues a signed token. Failures are audited
// with the attempted email, never the password.
func (s *Service) Login(ctx context.Context, req *LoginRequest, ip string) (string, *Member, error) {
	m, err := s.Repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.auditLogin(ctx, req.Email, ip, "failure")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !m.Active {
		s.auditLogin(ctx, req.Email, ip, "failure")
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(req.Password)); err != nil {
		s.auditLogin(ctx, req.Email, ip, "failure")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(m)
	if err != nil {
		return "", nil, err
	}

	s.auditLogin(ctx, req.Email, ip, "success")
	return token, m, nil
}

func (s *Service) generateToken(m *Member) (string, error) {
	now := time.Now()
	claims := Claims{
		ISTID:   m.ISTID,
		IsAdmin: m.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   m.ISTID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.Cfg.JWTTTLHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.Cfg.JWTSecret))
}

// ParseToken validates a bearer token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.Cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// CreateMember registers a new member with a hashed password.
func (s *Service) CreateMember(req *CreateMemberRequest) (*Member, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	m := &Member{
		ISTID:        req.ISTID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsAdmin:      req.IsAdmin,
		Active:       true,
	}
	if err := s.Repo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

// SetAlternativeEmail updates the secondary address used for attendee
// matching and calendar sharing. The mirror manager picks it up on the next
// propagation pass.
func (s *Service) SetAlternativeEmail(istid, email string) (*Member, error) {
	m, err := s.Repo.GetByISTID(istid)
	if err != nil {
		return nil, err
	}
	m.AlternativeEmail = email
	if err := s.Repo.Update(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListActive() ([]Member, error) {
	return s.Repo.ListActive()
}

func (s *Service) GetByISTID(istid string) (*Member, error) {
	return s.Repo.GetByISTID(istid)
}

func (s *Service) auditLogin(ctx context.Context, email, ip, status string) {
	s.AuditSvc.LogAction(ctx, nil, nil, auditlog.ActionLogin,
		map[string]interface{}{"email": email}, ip, status)
}
