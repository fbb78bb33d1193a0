package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gatepass/internal/invitation/credential"
	"gatepass/internal/invitation/handler/mocks"
	"gatepass/internal/invitation/models"
	"gatepass/internal/invitation/service"
	"gatepass/internal/logsink"
	dErrors "gatepass/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service
type InvitationHandlerSuite struct {
	suite.Suite
}

func TestInvitationHandlerSuite(t *testing.T) {
	suite.Run(t, new(InvitationHandlerSuite))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)

	r := chi.NewRouter()
	New(mockService, discardLogger()).Register(r)
	return r, mockService
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, code, resp["error"])
}

func (s *InvitationHandlerSuite) TestIssue() {
	s.T().Run("200 - credential with code, image and expiry", func(t *testing.T) {
		router, svc := newTestRouter(t)
		hours := 24
		svc.EXPECT().
			Issue(gomock.Any(), models.IssueCommand{VisitorName: "Ana", Unit: "4B", HostName: "Luis"}).
			Return(&models.Invitation{
				Credential:  "eyJ.abc.def",
				Code:        "K7Q2ZX",
				Image:       "data:image/png;base64,AAA",
				ExpiryHours: &hours,
			}, nil)

		w := doJSON(t, router, http.MethodPost, "/api/invitations",
			map[string]string{"visitorName": " Ana ", "unit": "4B", "hostName": "Luis"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, true, resp["ok"])
		assert.Equal(t, "eyJ.abc.def", resp["credential"])
		assert.Equal(t, "K7Q2ZX", resp["code"])
		assert.Equal(t, "data:image/png;base64,AAA", resp["image"])
		assert.Equal(t, float64(24), resp["expiryHours"])
	})

	s.T().Run("200 - optional fields omitted", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(&models.Invitation{Credential: "tok"}, nil)

		w := doJSON(t, router, http.MethodPost, "/api/invitations",
			map[string]string{"visitorName": "Ana", "unit": "4B", "hostName": "Luis"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.NotContains(t, resp, "code")
		assert.NotContains(t, resp, "image")
		assert.NotContains(t, resp, "expiryHours")
	})

	s.T().Run("400 - missing field never reaches the service", func(t *testing.T) {
		router, _ := newTestRouter(t)
		w := doJSON(t, router, http.MethodPost, "/api/invitations",
			map[string]string{"visitorName": "Ana", "unit": "4B"})

		assertErrorResponse(t, w, http.StatusBadRequest, "validation_error")
	})

	s.T().Run("400 - malformed json", func(t *testing.T) {
		router, _ := newTestRouter(t)
		w := doJSON(t, router, http.MethodPost, "/api/invitations", `{"visitorName":`)

		assertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	})

	s.T().Run("500 - image rendering failed", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(nil,
			dErrors.Wrap(fmt.Errorf("%w: too long", service.ErrImageRender), dErrors.CodeInternal, "could not render credential image"))

		w := doJSON(t, router, http.MethodPost, "/api/invitations",
			map[string]string{"visitorName": "Ana", "unit": "4B", "hostName": "Luis"})

		assertErrorResponse(t, w, http.StatusInternalServerError, "could_not_render_image")
	})
}

func (s *InvitationHandlerSuite) TestValidate() {
	claim := &models.Claim{
		VisitorName: "Ana", Unit: "4B", HostName: "Luis",
		ID:        "6f1c",
		IssuedAt:  time.Unix(1_780_000_000, 0),
		ExpiresAt: time.Unix(1_780_086_400, 0),
	}

	s.T().Run("200 - credential validated", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().
			Validate(gomock.Any(), models.ValidateCommand{Credential: "tok", Action: "entry", Plates: "ABC-123"}).
			Return(&models.Validation{Action: models.ActionEntry, Claim: claim}, nil)

		w := doJSON(t, router, http.MethodPost, "/api/validate",
			map[string]string{"credential": "tok", "action": "entry", "plates": "ABC-123"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, true, resp["ok"])
		assert.Equal(t, "validated", resp["status"])
		assert.Equal(t, "entry", resp["action"])
		data := resp["data"].(map[string]any)
		assert.Equal(t, "Ana", data["visitorName"])
		assert.Equal(t, "4B", data["unit"])
		assert.Equal(t, "Luis", data["hostName"])
		assert.Equal(t, float64(1_780_086_400), data["exp"])
	})

	s.T().Run("200 - token alias", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().
			Validate(gomock.Any(), models.ValidateCommand{Credential: "tok", Action: "exit"}).
			Return(&models.Validation{Action: models.ActionExit, Claim: claim}, nil)

		w := doJSON(t, router, http.MethodPost, "/api/validate",
			map[string]string{"token": "tok", "action": "exit"})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	s.T().Run("200 - bare code", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().
			Validate(gomock.Any(), models.ValidateCommand{Code: "K7Q2ZX"}).
			Return(&models.Validation{Action: models.ActionEntry, Code: "K7Q2ZX"}, nil)

		w := doJSON(t, router, http.MethodPost, "/api/validate", map[string]string{"code": "K7Q2ZX"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "K7Q2ZX", resp["code"])
		assert.Equal(t, "entry", resp["action"])
		assert.NotContains(t, resp, "data")
	})

	s.T().Run("400 - action outside accepted set", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().Validate(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "action must be one of entry"))

		w := doJSON(t, router, http.MethodPost, "/api/validate",
			map[string]string{"credential": "tok", "action": "exit"})

		assertErrorResponse(t, w, http.StatusBadRequest, "validation_error")
	})

	s.T().Run("401 - invalid or expired", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().Validate(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(&credential.InvalidError{Reason: models.ReasonExpired},
				dErrors.CodeCredentialInvalid, "invalid or expired credential"))

		w := doJSON(t, router, http.MethodPost, "/api/validate",
			map[string]string{"credential": "tok", "action": "entry"})

		assertErrorResponse(t, w, http.StatusUnauthorized, "invalid_or_expired")
		resp := decode(t, w)
		assert.NotContains(t, resp, "reason", "rejection reason stays internal")
		for key, v := range resp {
			assert.NotEqual(t, string(models.ReasonExpired), v, key)
		}
	})

	s.T().Run("500 - sink failure still reports the credential valid", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().Validate(gomock.Any(), gomock.Any()).
			Return(&models.Validation{Action: models.ActionEntry, Claim: claim},
				dErrors.New(dErrors.CodeSinkUnavailable, "credential is valid but the visit could not be logged"))

		w := doJSON(t, router, http.MethodPost, "/api/validate",
			map[string]string{"credential": "tok", "action": "entry"})

		assertErrorResponse(t, w, http.StatusInternalServerError, "could_not_write_log")
		resp := decode(t, w)
		assert.Equal(t, true, resp["credentialValid"])
		assert.Equal(t, "Ana", resp["data"].(map[string]any)["visitorName"])
	})
}

func (s *InvitationHandlerSuite) TestLogs() {
	s.T().Run("200 - rows in order", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().ListVisits(gomock.Any()).Return([]logsink.Row{
			{"t1", "Ana", "4B", "Luis", "entry", ""},
			{"t2", "K7Q2ZX", "entry"},
		}, nil)

		w := doJSON(t, router, http.MethodGet, "/api/logs", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp LogsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		require.Len(t, resp.Rows, 2)
		assert.Equal(t, []string{"t2", "K7Q2ZX", "entry"}, resp.Rows[1])
	})

	s.T().Run("200 - empty log is an empty array", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().ListVisits(gomock.Any()).Return(nil, nil)

		w := doJSON(t, router, http.MethodGet, "/api/logs", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"rows":[]}`, w.Body.String())
	})

	s.T().Run("500 - sink read failure", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().ListVisits(gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("quota"), dErrors.CodeSinkUnavailable, "could not read the visit log"))

		w := doJSON(t, router, http.MethodGet, "/api/logs", nil)

		assertErrorResponse(t, w, http.StatusInternalServerError, "could_not_read_log")
	})
}
