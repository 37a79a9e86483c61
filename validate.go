package rotor

import "strings"

const (
	minPasswordLength = 10
	maxFieldLength    = 254
)

// Request validation happens before any store or identity round-trip. The
// returned strings are field-level messages suitable for
// [AuthResult.Errors].

func validateLoginRequest(email, password string) []string {
	var reasons []string
	reasons = appendEmailErrors(reasons, email)
	if password == "" {
		reasons = append(reasons, "password: required")
	}
	return reasons
}

func validateRegisterRequest(email, username, password string) []string {
	var reasons []string
	reasons = appendEmailErrors(reasons, email)

	switch {
	case username == "":
		reasons = append(reasons, "username: required")
	case len(username) > maxFieldLength:
		reasons = append(reasons, "username: too long")
	}

	switch {
	case password == "":
		reasons = append(reasons, "password: required")
	case len(password) < minPasswordLength:
		reasons = append(reasons, "password: must be at least 10 characters")
	}

	return reasons
}

func validateRotateRequest(accessToken, refreshToken string) []string {
	var reasons []string
	if accessToken == "" {
		reasons = append(reasons, "accessToken: required")
	}
	if refreshToken == "" {
		reasons = append(reasons, "refreshToken: required")
	}
	return reasons
}

func appendEmailErrors(reasons []string, email string) []string {
	switch {
	case email == "":
		return append(reasons, "email: required")
	case len(email) > maxFieldLength:
		return append(reasons, "email: too long")
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return append(reasons, "email: must be a valid email address")
	}

	return reasons
}
