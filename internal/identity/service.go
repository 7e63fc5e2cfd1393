package identity

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnauthenticated = errors.New("no authenticated identity")

// Service maintains the mirrored user rows owned by the auth
// collaborator. Rows are created lazily on first authenticated contact
// and the role column is never downgraded here.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// EnsureUser returns the mirrored row for the given identity, creating
// it if this is the first contact. Concurrent first requests converge on
// a single row via the unique email index.
func (s *Service) EnsureUser(claims *Claims) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", claims.Email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = models.User{
		ID:    uuid.New(),
		Email: claims.Email,
		Name:  claims.Name,
		Image: claims.Image,
		Role:  "user",
	}
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to create user: %w", res.Error)
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return &user, nil
	}

	// Lost the race to a concurrent first request; read the winner.
	if err := s.db.Where("email = ?", claims.Email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user after conflict: %w", err)
	}
	return &user, nil
}

// FromCtx resolves the request's authenticated identity to its mirrored
// user row. Returns ErrUnauthenticated when the request has no identity.
func (s *Service) FromCtx(c *fiber.Ctx) (*models.User, error) {
	claims, ok := ClaimsFromCtx(c)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s.EnsureUser(claims)
}
