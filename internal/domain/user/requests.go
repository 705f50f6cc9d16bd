package user

type CreateRequest struct {
	Username  string `json:"username" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"first_name" binding:"omitempty,max=255"`
	LastName  string `json:"last_name" binding:"omitempty,max=255"`
}

// UpdateRequest backs both PUT and PATCH on a user; the service decides which
// fields are mandatory.
type UpdateRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=1,max=255"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Password  *string `json:"password" binding:"omitempty"`
	Password2 *string `json:"password2" binding:"omitempty"`
	FirstName *string `json:"first_name" binding:"omitempty,max=255"`
	LastName  *string `json:"last_name" binding:"omitempty,max=255"`
}

type ProfileUpdateRequest struct {
	OldPassword *string `json:"old_password"`
	Password    *string `json:"password"`
	Password2   *string `json:"password2"`
	Username    *string `json:"username" binding:"omitempty,min=1,max=255"`
	FirstName   *string `json:"first_name" binding:"omitempty,max=255"`
	LastName    *string `json:"last_name" binding:"omitempty,max=255"`
}
