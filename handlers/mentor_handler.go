package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"github.com/mentorlink/backend/services"
	"gorm.io/gorm"
)

// ListApprovedMentors is the public directory. A NULL mentor status is
// a grandfathered account and counts as approved.
func ListApprovedMentors(c *fiber.Ctx) error {
	var mentors []models.MentorProfile
	query := database.DB.Preload("User").
		Joins("JOIN users ON users.id = mentor_profiles.user_id").
		Where("users.role = ? AND users.is_active = ? AND (users.mentor_status IS NULL OR users.mentor_status = ?)",
			"mentor", true, "approved")

	if country := c.Query("country"); country != "" {
		query = query.Where("users.country = ?", country)
	}

	if err := query.Find(&mentors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve mentors"})
	}

	return c.JSON(mentors)
}

func GetMentorProfile(c *fiber.Ctx) error {
	mentorID := c.Params("mentorId")

	var profile models.MentorProfile
	err := database.DB.Preload("User").
		Joins("JOIN users ON users.id = mentor_profiles.user_id").
		Where("mentor_profiles.user_id = ? AND users.is_active = ? AND (users.mentor_status IS NULL OR users.mentor_status = ?)",
			mentorID, true, "approved").
		First(&profile).Error
	if err != nil {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}

	var mentorServices []models.Service
	database.DB.Where("mentor_id = ? AND is_active = ?", mentorID, true).Find(&mentorServices)

	return c.JSON(fiber.Map{"profile": profile, "services": mentorServices})
}

func GetMyMentorProfile(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	var profile models.MentorProfile
	if err := database.DB.Preload("User").First(&profile, "user_id = ?", mentorID).Error; err != nil {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}
	return c.JSON(profile)
}

func UpdateMyMentorProfile(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	type UpdateRequest struct {
		Headline string `json:"headline" validate:"required"`
		Bio      string `json:"bio" validate:"required"`
	}
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var profile models.MentorProfile
	if err := database.DB.First(&profile, "user_id = ?", mentorID).Error; err != nil {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}

	profile.Headline = &req.Headline
	profile.Bio = &req.Bio
	database.DB.Save(&profile)

	return c.JSON(profile)
}

type ServiceRequest struct {
	Title           string  `json:"title" validate:"required,min=3"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	Currency        string  `json:"currency" validate:"omitempty,iso4217"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
}

func CreateService(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	var req ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	service := models.Service{
		MentorID:        mentorID,
		Title:           req.Title,
		Description:     &req.Description,
		Price:           req.Price,
		Currency:        currency,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}

	if err := database.DB.Create(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create service"})
	}

	return c.Status(fiber.StatusCreated).JSON(service)
}

func UpdateService(c *fiber.Ctx) error {
	mentorID := currentUserID(c)
	serviceID := c.Params("serviceId")

	var service models.Service
	if err := database.DB.First(&service, "id = ? AND mentor_id = ?", serviceID, mentorID).Error; err != nil {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}

	var req ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	service.Title = req.Title
	service.Description = &req.Description
	service.Price = req.Price
	if req.Currency != "" {
		service.Currency = req.Currency
	}
	service.DurationMinutes = req.DurationMinutes
	database.DB.Save(&service)

	return c.JSON(service)
}

func DeactivateService(c *fiber.Ctx) error {
	mentorID := currentUserID(c)
	serviceID := c.Params("serviceId")

	result := database.DB.Model(&models.Service{}).
		Where("id = ? AND mentor_id = ?", serviceID, mentorID).
		Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate service"})
	}
	if result.RowsAffected == 0 {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func ListMyServices(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	var mentorServices []models.Service
	if err := database.DB.Where("mentor_id = ?", mentorID).Order("created_at desc").Find(&mentorServices).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load services"})
		}
	}

	return c.JSON(mentorServices)
}
