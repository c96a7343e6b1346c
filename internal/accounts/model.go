package accounts

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

// LoginRequest accepts a username or an email in the same field.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileRequest carries optional profile fields; nil means unchanged.
type ProfileRequest struct {
	Username     *string           `json:"username" validate:"omitempty,min=3,max=30,username"`
	Email        *string           `json:"email" validate:"omitempty,email"`
	Name         *string           `json:"name" validate:"omitempty,max=100"`
	Bio          *string           `json:"bio" validate:"omitempty,max=1000"`
	ProfileImage *string           `json:"profileImage" validate:"omitempty,url"`
	Theme        *string           `json:"theme"`
	SocialLinks  map[string]string `json:"socialLinks"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}
