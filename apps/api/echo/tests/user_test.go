package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/alrowad/institute/apps/api/echo"
	"github.com/alrowad/institute/core/user"
)

func Test_userApi_login(t *testing.T) {
	usr := createUser(t, "Login User", "loginusr", "loginusr@test.iq", "passpass", true)
	deactivated := createUser(t, "Gone User", "goneusr", "goneusr@test.iq", "passpass", false)

	tests := []httpTest{
		{
			name:     "empty body",
			body:     jsonMarshal(t, echoapi.LoginRequest{}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown user",
			body:     jsonMarshal(t, echoapi.LoginRequest{Username: "whodis", Password: "passpass"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "wrong password",
			body:     jsonMarshal(t, echoapi.LoginRequest{Username: usr.Username, Password: "nope"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "deactivated account",
			body:     jsonMarshal(t, echoapi.LoginRequest{Username: deactivated.Username, Password: "passpass"}),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "login with username",
			body:     jsonMarshal(t, echoapi.LoginRequest{Username: usr.Username, Password: "passpass"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "login with email",
			body:     jsonMarshal(t, echoapi.LoginRequest{Username: usr.Email, Password: "passpass"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)

			if rec.Code == http.StatusOK {
				var resp echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed, %v", err)
				}
				if resp.Token == "" {
					t.Error("login must return a token")
				}
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	newUser := func(uname, code string) []byte {
		return jsonMarshal(t, echoapi.RegisterRequest{
			NewUser: user.NewUser{
				Name:            "Reg User",
				Username:        uname,
				Email:           uname + "@test.iq",
				Password:        "passpass",
				PasswordConfirm: "passpass",
			},
			VerificationCode: code,
		})
	}

	tests := []httpTest{
		{name: "missing code", body: newUser("regusr1", ""), wantCode: http.StatusBadRequest},
		{name: "bad code", body: newUser("regusr1", "wrong"), wantCode: http.StatusBadRequest},
		{name: "valid code", body: newUser("regusr1", verificationCode), wantCode: http.StatusCreated},
		{name: "duplicate username", body: newUser("regusr1", verificationCode), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)

			if rec.Code == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal() failed, %v", err)
				}
				if !usr.IsActive {
					t.Error("registered account must be active")
				}
			}
		})
	}
}

func Test_userApi_authRequired(t *testing.T) {
	usr := createUser(t, "Auth User", "authusr", "authusr@test.iq", "passpass", true)
	deactivated := createUser(t, "Axed User", "axedusr", "axedusr@test.iq", "passpass", false)

	tests := []httpTest{
		{name: "no token", wantCode: http.StatusUnauthorized},
		{name: "garbage token", token: "lol", wantCode: http.StatusUnauthorized},
		{name: "deactivated account token", token: getToken(t, deactivated), wantCode: http.StatusForbidden},
		{name: "valid token", token: getToken(t, usr), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			app.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)

			if tt.name == "no token" {
				checkError(t, rec, errMissingToken)
			}
		})
	}
}

func Test_userApi_selfProtection(t *testing.T) {
	usr := createUser(t, "Self User", "selfusr", "selfusr@test.iq", "passpass", true)
	token := getToken(t, usr)

	// self-deletion is forbidden
	req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+usr.ID, token)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusForbidden)

	// self-deactivation is forbidden
	inactive := false
	body := jsonMarshal(t, user.UpdateUser{IsActive: &inactive})
	req, rec = newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, token, body)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusForbidden)
}
