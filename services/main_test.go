package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-global connection at a fresh in-memory
// database. A single open connection keeps the :memory: database alive
// for the whole test.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.PendingUser{},
		&models.PasswordResetCode{},
		&models.MentorProfile{},
		&models.PayoutMethod{},
		&models.PayoutRequest{},
		&models.Service{},
		&models.Booking{},
		&models.Payment{},
		&models.BlacklistedToken{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
}

func createTestUser(t *testing.T, email, password, role string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	hash := string(hashed)
	user := models.User{
		FirstName:  "Test",
		LastName:   "User",
		Email:      email,
		Password:   &hash,
		Role:       &role,
		IsActive:   true,
		IsVerified: true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func createTestMentor(t *testing.T, email string) *models.User {
	t.Helper()

	user := createTestUser(t, email, "password123", "mentor")
	if err := database.DB.Create(&models.MentorProfile{UserID: user.ID}).Error; err != nil {
		t.Fatalf("failed to create mentor profile: %v", err)
	}
	return user
}

func createTestPayment(t *testing.T, mentorID uuid.UUID, amount float64, status string) {
	t.Helper()

	txnID := uuid.NewString()
	payment := models.Payment{
		MentorID:      mentorID,
		MenteeID:      uuid.New(),
		Amount:        amount,
		Currency:      "USD",
		Provider:      "stripe",
		ProviderTxnID: &txnID,
		Status:        status,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}
}

func createTestPayoutMethod(t *testing.T, mentorID uuid.UUID) *models.PayoutMethod {
	t.Helper()

	method := models.PayoutMethod{
		MentorID:      mentorID,
		Type:          "bank",
		BankName:      "First National",
		Country:       "US",
		AccountNumber: "1234567890",
		AccountTitle:  "Test User",
		IsDefault:     true,
	}
	if err := database.DB.Create(&method).Error; err != nil {
		t.Fatalf("failed to create payout method: %v", err)
	}
	return &method
}
