package repository

import (
	"context"
	"testing"

	"github.com/campusloop/campusloop-backend/internal/domain"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormRepositorySuite runs the gorm repositories against in-memory sqlite
type GormRepositorySuite struct {
	suite.Suite
	db       *gorm.DB
	users    UserRepository
	products ProductRepository
	ctx      context.Context
}

func TestGormRepositorySuite(t *testing.T) {
	suite.Run(t, new(GormRepositorySuite))
}

func (s *GormRepositorySuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(db.AutoMigrate(&domain.User{}, &domain.Product{}))

	s.db = db
	s.users = NewUserRepository(db)
	s.products = NewProductRepository(db)
	s.ctx = context.Background()
}

func (s *GormRepositorySuite) createUser(email string) *domain.User {
	u := &domain.User{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "hash"}
	s.Require().NoError(s.users.Create(s.ctx, u))
	return u
}

func (s *GormRepositorySuite) TestUserLookup() {
	u := s.createUser("ada@campus.edu")

	exists, err := s.users.ExistsByEmail(s.ctx, "ada@campus.edu")
	s.NoError(err)
	s.True(exists)

	exists, err = s.users.ExistsByEmail(s.ctx, "nobody@campus.edu")
	s.NoError(err)
	s.False(exists)

	found, err := s.users.FindByEmail(s.ctx, "ada@campus.edu")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	_, err = s.users.FindByID(s.ctx, 999)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *GormRepositorySuite) TestDuplicateEmailRejected() {
	s.createUser("dup@campus.edu")
	err := s.users.Create(s.ctx, &domain.User{FirstName: "B", LastName: "C", Email: "dup@campus.edu", Password: "x"})
	s.Error(err)
}

func (s *GormRepositorySuite) TestProductLifecycle() {
	seller := s.createUser("seller@campus.edu")

	p := &domain.Product{SellerID: seller.ID, Title: "Desk", Description: "Wooden", Category: "Furniture", Price: 40, ImageURL: "/uploads/image-1.jpg"}
	s.Require().NoError(s.products.Create(s.ctx, p))
	s.NotZero(p.ID)

	all, err := s.products.FindAllWithSeller(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Require().NotNil(all[0].Seller)
	s.Equal("seller@campus.edu", all[0].Seller.Email)

	deleted, err := s.products.Delete(s.ctx, p.ID)
	s.NoError(err)
	s.True(deleted)

	deleted, err = s.products.Delete(s.ctx, p.ID)
	s.NoError(err)
	s.False(deleted)
}
