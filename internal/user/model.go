package user

import "time"

type User struct {
	ID             uint
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Role           string
	ProfilePicture *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type RegisterInput struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	ProfilePicture *string `json:"profile_picture"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Summary is the user block embedded in login and register responses.
type Summary struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Response struct {
	ID             uint      `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           string    `json:"role"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
}

type AuthResult struct {
	Message string  `json:"message"`
	Refresh string  `json:"refresh"`
	Access  string  `json:"access"`
	User    Summary `json:"user"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Role: u.Role, FirstName: u.FirstName, LastName: u.LastName}
}

func (u *User) Response() Response {
	return Response{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}
