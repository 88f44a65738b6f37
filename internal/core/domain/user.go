package domain

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type AuthResult struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}

// Validate reports missing required fields and a password mismatch the same
// way the server does, so a form can be rejected before any request is sent.
func (in RegisterInput) Validate() ValidationErrors {
	errs := ValidationErrors{}
	required := []struct {
		field string
		value string
	}{
		{"username", in.Username},
		{"email", in.Email},
		{"password", in.Password},
		{"password_confirm", in.PasswordConfirm},
	}
	for _, r := range required {
		if r.value == "" {
			errs.Add(r.field, FieldRequiredMessage)
		}
	}
	if in.Password != "" && in.PasswordConfirm != "" && in.Password != in.PasswordConfirm {
		errs.Add(NonFieldErrorsKey, PasswordMismatchMessage)
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

// Session is the authenticated identity of this client. User is set iff
// Token is set and was validated against the server.
type Session struct {
	Token string
	User  *User
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}
