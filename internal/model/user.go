package model

import "time"

// Domain identifies which subsystem (and which document) a record belongs to.
type Domain string

const (
	DomainLab Domain = "lab"
	DomainVet Domain = "vet"
)

// Other returns the opposite domain.
func (d Domain) Other() Domain {
	if d == DomainLab {
		return DomainVet
	}
	return DomainLab
}

// Valid reports whether d is lab or vet.
func (d Domain) Valid() bool {
	return d == DomainLab || d == DomainVet
}

// User is an account stored inside a domain document.
// Password holds a bcrypt hash; legacy documents may still carry plaintext.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns a copy safe to hand to API clients.
func (u User) Public() User {
	u.Password = ""
	return u
}

type UserInput struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=4"`
	Role     string `json:"role" binding:"required"`
	IsActive *bool  `json:"is_active"` // nil = active
}

type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// SessionUser is the serialized signed-in user mirrored into storage.
type SessionUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Domain   Domain `json:"domain"`
	IsActive bool   `json:"is_active"`
}

// NewSessionUser strips a stored user down to its session form.
func NewSessionUser(u User, domain Domain) SessionUser {
	return SessionUser{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Role:     u.Role,
		Domain:   domain,
		IsActive: u.IsActive,
	}
}

// NotificationType enum constants
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// Notification is an in-app message.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationInput struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message"`
	Type    string `json:"type"`
}
