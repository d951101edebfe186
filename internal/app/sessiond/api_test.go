package sessiond

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/minebase/yggdrasil/pkg/yggdrasil"
	"go.uber.org/zap"
)

func newTestAPI(t *testing.T, bearerSecret string) http.Handler {
	t.Helper()

	cfg, err := NewConfig(map[string]any{
		"api": map[string]any{
			"bearerSecret": bearerSecret,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	svc, err := NewService(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = svc.Close()
	})

	return svc.apiHandler()
}

func TestComputeHashHandler(t *testing.T) {
	handler := newTestAPI(t, "")

	secret := yggdrasil.SharedSecret{0x01, 0x02}
	publicKey := []byte{0x30, 0x82}

	body := map[string]string{
		"serverId":     "server",
		"sharedSecret": base64.StdEncoding.EncodeToString(secret[:]),
		"publicKey":    base64.StdEncoding.EncodeToString(publicKey),
	}
	bb, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/v1/hash", strings.NewReader(string(bb)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body)
	}

	respDTO := struct {
		ServerHash string `json:"serverHash"`
	}{}
	if err := json.NewDecoder(rec.Body).Decode(&respDTO); err != nil {
		t.Fatal(err)
	}

	if want := yggdrasil.SessionHash("server", secret, publicKey); respDTO.ServerHash != want {
		t.Errorf("unexpected server hash %q; want %q", respDTO.ServerHash, want)
	}
}

func TestComputeHashHandler_RejectsWrongSecretLength(t *testing.T) {
	handler := newTestAPI(t, "")

	body := map[string]string{
		"serverId":     "",
		"sharedSecret": base64.StdEncoding.EncodeToString([]byte("too short")),
		"publicKey":    "",
	}
	bb, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/v1/hash", strings.NewReader(string(bb)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unexpected status %d", rec.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	secret := "hush"
	handler := newTestAPI(t, secret)

	validToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}

	wrongKeyToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("wrong"))
	if err != nil {
		t.Fatal(err)
	}

	tt := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "MissingToken",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "WrongKey",
			authHeader: "Bearer " + wrongKeyToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "ValidToken",
			authHeader: "Bearer " + validToken,
			wantStatus: http.StatusUnprocessableEntity, // empty hash body, but auth passed
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/hash", strings.NewReader(""))
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("unexpected status %d; want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
