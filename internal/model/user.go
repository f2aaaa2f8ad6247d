package model

import "time"

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PhoneNumber  *string
	Roles        []string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy so callers can merge changes without touching the original.
func (u *User) Clone() *User {
	c := *u
	if u.PhoneNumber != nil {
		phone := *u.PhoneNumber
		c.PhoneNumber = &phone
	}
	c.Roles = append([]string{}, u.Roles...)
	return &c
}

// UserCreateRequest is the body of /register and POST /users.
type UserCreateRequest struct {
	Email       string   `json:"email" binding:"required,email"`
	FirstName   string   `json:"first_name" binding:"required"`
	LastName    string   `json:"last_name" binding:"required"`
	PhoneNumber *string  `json:"phone_number"`
	Roles       []string `json:"roles"`
	Password    *string  `json:"password" binding:"required"`
}

// UserUpdateRequest is the body of PUT /users/{id}. Only fields present in the
// payload are applied.
type UserUpdateRequest struct {
	Email       Optional[string]   `json:"email"`
	FirstName   Optional[string]   `json:"first_name"`
	LastName    Optional[string]   `json:"last_name"`
	PhoneNumber Optional[string]   `json:"phone_number"`
	Roles       Optional[[]string] `json:"roles"`
	Password    Optional[string]   `json:"password"`
}

// UserResponse is the public view of a User. The password hash is never exposed.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber *string   `json:"phone_number"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewUserResponse(u *User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Roles:       roles,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func NewUserListResponse(users []User) []UserResponse {
	list := make([]UserResponse, 0, len(users))
	for i := range users {
		list = append(list, NewUserResponse(&users[i]))
	}
	return list
}
