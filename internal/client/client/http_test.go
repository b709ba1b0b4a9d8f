package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/common"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/api", append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://gateway")
	require.Error(t, err)

	_, err = NewHTTPClient("://nope")
	require.Error(t, err)
}

func TestLogin_ReturnsAccessToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(common.RequestIDHeaderName))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"username": "ada", "password": "right"}, body)

		writeJSON(w, http.StatusOK, map[string]string{"access": "tok-1", "refresh": "r"})
	})

	tok, err := c.Login(context.Background(), "ada", "right")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found"})
	})

	_, err := c.Login(context.Background(), "ada", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "No active account found", Detail(err))
}

func TestLogin_MissingAccessToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	_, err := c.Login(context.Background(), "ada", "right")
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestProfile_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/profile/", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "ada", "email": "ada@example.org", "role": "student"})
	})

	u, err := c.Profile(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: 1, Username: "ada", Email: "ada@example.org", Role: models.RoleStudent}, u)
}

func TestProfile_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	})

	_, err := c.Profile(context.Background(), "tok")
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestUpdateProfile_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "ada2", r.FormValue("username"))
		assert.Equal(t, "ada@example.org", r.FormValue("email"))
		assert.Equal(t, "n3w", r.FormValue("password"))

		f, hdr, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "me.png", hdr.Filename)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, content)

		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "ada2", "role": "student"})
	})

	u, err := c.UpdateProfile(context.Background(), "tok", models.ProfileUpdate{
		Username: "ada2",
		Email:    "ada@example.org",
		Password: "n3w",
		Avatar:   &models.Avatar{FileName: "me.png", Content: []byte{0x89, 'P', 'N', 'G'}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada2", u.Username)
}

func TestUpdateProfile_OmitsEmptyPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, ok := r.MultipartForm.Value["password"]
		assert.False(t, ok)
		_, ok = r.MultipartForm.File["avatar"]
		assert.False(t, ok)
		writeJSON(w, http.StatusOK, map[string]any{"id": 1})
	})

	_, err := c.UpdateProfile(context.Background(), "tok", models.ProfileUpdate{Username: "ada", Email: "a@b"})
	require.NoError(t, err)
}

func TestRegister_FieldErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register/", r.URL.Path)
		var reg models.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		assert.Equal(t, models.RoleInstructor, reg.Role)
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
	})

	err := c.Register(context.Background(), models.Registration{Username: "ada", Role: models.RoleInstructor})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "username: A user with that username already exists.", apiErr.Detail)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestPasswordReset_Endpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/password-reset/":
			assert.Equal(t, http.MethodPost, r.Method)
			writeJSON(w, http.StatusOK, map[string]string{"success": "sent"})
		case "/api/auth/password-reset-confirm/":
			assert.Equal(t, http.MethodPatch, r.Method)
			var body models.PasswordResetConfirm
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Token != "good" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token is invalid or has expired"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"success": "Password reset success"})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	require.NoError(t, c.RequestPasswordReset(ctx, "ada@example.org"))
	require.NoError(t, c.ConfirmPasswordReset(ctx, models.PasswordResetConfirm{Password: "p", Token: "good", UIDB64: "MQ"}))

	err := c.ConfirmPasswordReset(ctx, models.PasswordResetConfirm{Password: "p", Token: "bad", UIDB64: "MQ"})
	require.Error(t, err)
	assert.Equal(t, "Token is invalid or has expired", Detail(err))
}

func TestUsers_ListAndDelete(t *testing.T) {
	var deleted string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin-tok", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": 1, "username": "ada", "role": "admin"},
				{"id": 2, "username": "bob", "role": "student"},
			})
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	users, err := c.ListUsers(ctx, "admin-tok")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleStudent, users[1].Role)

	require.NoError(t, c.DeleteUser(ctx, "admin-tok", 2))
	assert.Equal(t, "/api/auth/users/2/", deleted)
}

func TestDo_NetworkFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url)
	require.NoError(t, err)

	_, err = c.Profile(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDo_TimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(20*time.Millisecond))
	defer close(release)

	_, err := c.Profile(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDo_RateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access": "t"})
	}, WithRateLimit(0.001, 1))

	_, err := c.Login(context.Background(), "a", "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Login(ctx, "a", "b")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", ""},
		{"detail", `{"detail":"nope"}`, "nope"},
		{"error", `{"error":"expired"}`, "expired"},
		{"field list", `{"email":["bad email"],"username":["taken"]}`, "email: bad email"},
		{"field string", `{"password":"too short"}`, "password: too short"},
		{"plain text", "Internal Server Error", "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	assert.Equal(t, "gateway returned 500 Internal Server Error", (&APIError{Status: 500}).Error())
	assert.Equal(t, "gateway returned 400: bad", (&APIError{Status: 400, Detail: "bad"}).Error())
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	short := "ошибка"
	assert.Equal(t, short, truncate(short))

	// one ASCII byte shifts every two-byte rune across the cut
	long := "x" + strings.Repeat("я", maxDetailLen)
	got := truncate(long)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxDetailLen)
	assert.Equal(t, maxDetailLen-1, len(got))
	assert.True(t, strings.HasPrefix(long, got))
}
