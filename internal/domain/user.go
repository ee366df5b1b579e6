package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type NotificationPrefs struct {
	Email      bool `json:"email"`
	Marketing  bool `json:"marketing"`
	NewCourses bool `json:"newCourses"`
	Reminders  bool `json:"reminders"`
	// Admin is only kept for administrators.
	Admin *AdminAlerts `json:"admin,omitempty"`
}

// AdminAlerts selects which back-office events an administrator hears about.
type AdminAlerts struct {
	NewEnrollments bool `json:"newEnrollments"`
	Payments       bool `json:"payments"`
	Cancellations  bool `json:"cancellations"`
	AlmostFull     bool `json:"almostFull"`
	WeeklyReport   bool `json:"weeklyReport"`
}

func DefaultAdminAlerts() AdminAlerts {
	return AdminAlerts{NewEnrollments: true, Payments: true, Cancellations: true, AlmostFull: true}
}

func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{Email: true, NewCourses: true, Reminders: true}
}

type User struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	Phone         string            `json:"phone"`
	PasswordHash  string            `json:"-"`
	Role          Role              `json:"role"`
	Notifications NotificationPrefs `json:"notifications"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Settings is the editable part of a profile.
type Settings struct {
	Name          string            `json:"name" validate:"required"`
	Phone         string            `json:"phone"`
	Notifications NotificationPrefs `json:"notifications"`
}

func (s Settings) Validate() error {
	return ValidateStruct(s, "invalid settings")
}

// PasswordChange is the body of a password update.
type PasswordChange struct {
	Current string `json:"currentPassword" validate:"required"`
	New     string `json:"newPassword" validate:"required,min=6"`
	Confirm string `json:"confirmPassword" validate:"required,eqfield=New"`
}

func (c PasswordChange) Validate() error {
	return ValidateStruct(c, "invalid password change")
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
