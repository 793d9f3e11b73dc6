package services

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scanvault/scanvault-be/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// AuthServiceProvider defines the interface for auth services.
type AuthServiceProvider interface {
	Register(username, email, phone, password string) (models.User, error)
	Login(username, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
}

// AuthService provides local registration and login against user records.
//
// Passwords are stored and compared in plain text. Records created by
// earlier releases hold unhashed passwords, so switching to a hash here
// would lock those accounts out.
type AuthService struct {
	db           *sql.DB
	eventService EventServiceProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB, eventService EventServiceProvider) *AuthService {
	return &AuthService{
		db:           db,
		eventService: eventService,
	}
}

// validateRegistration checks the syntactic rules for a new account.
// All inputs are expected to be trimmed already.
func validateRegistration(username, email, phone, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if phone == "" {
		return fmt.Errorf("%w: phone number is required", ErrValidation)
	}
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("%w: phone must be 10 digits", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	return nil
}

// Register creates a new user account after checking that the username
// is not already taken. The uniqueness check is an explicit query, not a
// database constraint, matching the single-writer model of the app.
func (s *AuthService) Register(username, email, phone, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	password = strings.TrimSpace(password)

	if err := validateRegistration(username, email, phone, password); err != nil {
		return models.User{}, err
	}

	var existingID string
	row := s.db.QueryRow("SELECT id FROM users WHERE username = ?", username)
	if err := row.Scan(&existingID); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if err != sql.ErrNoRows {
		return models.User{}, fmt.Errorf("failed to check username: %w", err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		Phone:     phone,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO users (id, username, email, phone, password, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Username, user.Email, user.Phone, user.Password, user.CreatedAt.UnixNano())
	if err != nil {
		return models.User{}, err
	}

	s.eventService.CreateEvent("auth.register", "info", fmt.Sprintf("User '%s' registered.", user.Username))

	// Return user without the stored password
	user.Password = ""
	return user, nil
}

// Login verifies a username/password pair by exact string comparison.
func (s *AuthService) Login(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	user, err := s.getUserByUsername(username)
	if err != nil {
		return models.User{}, err
	}

	if user.Password != password {
		s.eventService.CreateEvent("auth.login.failed", "warn", fmt.Sprintf("Failed login attempt for '%s'.", username))
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password back to the client
	user.Password = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *AuthService) GetUserByID(id string) (models.User, error) {
	var user models.User
	var createdAt int64
	row := s.db.QueryRow("SELECT id, username, email, phone, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, nil
}

// getUserByUsername retrieves a single user by exact username, including
// the stored password.
func (s *AuthService) getUserByUsername(username string) (models.User, error) {
	var user models.User
	var createdAt int64
	row := s.db.QueryRow("SELECT id, username, email, phone, password, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Password, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, nil
}
