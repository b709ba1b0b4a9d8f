package models

// Registration is the body of POST /auth/register/.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

// ProfileUpdate is sent as multipart/form-data to PUT /auth/profile/.
// Empty Password and nil Avatar are omitted.
type ProfileUpdate struct {
	Username string
	Email    string
	Password string
	Avatar   *Avatar
}

// Avatar is an image file attached to a profile update.
type Avatar struct {
	FileName string
	Content  []byte
}

// PasswordResetConfirm is the body of PATCH /auth/password-reset-confirm/.
type PasswordResetConfirm struct {
	Password string `json:"password"`
	Token    string `json:"token"`
	UIDB64   string `json:"uidb64"`
}
