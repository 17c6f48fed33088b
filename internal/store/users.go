package store

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/huddlekit/huddle/internal/domain"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is deliberately the same for an unknown email
	// and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Users is the user directory: registered identities and their credentials.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) Register(displayName, email, password string) (*domain.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	identity, err := domain.NewIdentity(displayName, email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(identity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	log.Info().Str("module", "store.users").Str("id", string(identity.ID)).Msg("registered identity")
	return identity, nil
}

func (s *Users) Authenticate(email, password string) (*domain.Identity, error) {
	var identity domain.Identity
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &identity, nil
}

func (s *Users) GetByID(id domain.IdentityID) (*domain.Identity, bool) {
	var identity domain.Identity
	if err := s.db.First(&identity, "id = ?", id).Error; err != nil {
		return nil, false
	}
	return &identity, true
}
