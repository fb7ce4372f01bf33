package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/internal/gateway/gatewaytest"
	"github.com/Rorical/AgentDesk/internal/models"
)

func newTestGateway(t *testing.T, opts ...gatewaytest.Option) (*HTTPGateway, *gatewaytest.Server) {
	t.Helper()
	backend := gatewaytest.NewServer(append([]gatewaytest.Option{gatewaytest.WithToken("tok")}, opts...)...)
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	backend.SetPublicURL(srv.URL)
	return NewHTTPGateway(srv.URL, "tok", 5*time.Second), backend
}

func TestChangePassword(t *testing.T) {
	gw, backend := newTestGateway(t)

	require.NoError(t, gw.ChangePassword(context.Background(), "secret", "hunter22"))
	assert.Equal(t, "hunter22", backend.Password())
}

func TestChangePasswordWrongOldPasswordIsAuthError(t *testing.T) {
	gw, backend := newTestGateway(t)

	err := gw.ChangePassword(context.Background(), "nope", "hunter22")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
	assert.Equal(t, "current password is incorrect", apperrors.MessageOf(err))
	assert.Equal(t, "secret", backend.Password())
}

func TestUpdateProfileSendsOnlySetFields(t *testing.T) {
	gw, backend := newTestGateway(t)
	before := backend.Agent()

	agent, err := gw.UpdateProfile(context.Background(), ProfileFields{Email: String("b@x.com")})

	require.NoError(t, err)
	assert.Equal(t, "b@x.com", agent.Email)
	assert.Equal(t, before.Name, agent.Name)
	assert.Equal(t, before.AvatarURL, agent.AvatarURL)
}

func TestUpdateProfileRejectionCarriesServerMessage(t *testing.T) {
	gw, _ := newTestGateway(t)

	_, err := gw.UpdateProfile(context.Background(), ProfileFields{Email: String("not-an-email")})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindRemote, apperrors.KindOf(err))
	assert.Equal(t, "email is invalid", apperrors.MessageOf(err))
}

func TestUploadFileReturnsRetrievableURL(t *testing.T) {
	gw, _ := newTestGateway(t)
	png := []byte("\x89PNG\r\n\x1a\n0000")

	file, err := gw.UploadFile(context.Background(), Upload{
		Name:     "me.png",
		Content:  png,
		OwnerID:  "agent-1",
		Category: "avatar",
		Public:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", file.ContentType)
	assert.EqualValues(t, len(png), file.Size)

	resp, err := http.Get(file.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadFileFailureIsUploadError(t *testing.T) {
	gw, backend := newTestGateway(t)
	backend.FailNext(gatewaytest.OpUploadFile, http.StatusRequestEntityTooLarge, "file too large")

	_, err := gw.UploadFile(context.Background(), Upload{Name: "big.png", Content: []byte("x")})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpload, apperrors.KindOf(err))
	assert.Equal(t, "file too large", apperrors.MessageOf(err))
	assert.Equal(t, 1, backend.Calls(gatewaytest.OpUploadFile))
}

func TestFailureWithoutBodyHasEmptyMessage(t *testing.T) {
	gw, backend := newTestGateway(t)
	backend.FailNext(gatewaytest.OpChangePassword, http.StatusInternalServerError, "")

	err := gw.ChangePassword(context.Background(), "secret", "hunter22")

	require.Error(t, err)
	assert.Equal(t, apperrors.KindRemote, apperrors.KindOf(err))
	assert.Empty(t, apperrors.MessageOf(err))
}

func TestWrongTokenIsAuthError(t *testing.T) {
	_, backend := newTestGateway(t)
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	gw := NewHTTPGateway(srv.URL, "wrong", time.Second)

	_, err := gw.CurrentAgent(context.Background())

	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
}

func TestListLanguagesAndUpdateLanguage(t *testing.T) {
	gw, backend := newTestGateway(t, gatewaytest.WithLanguages([]models.Language{{Code: "en", Name: "English"}, {Code: "fr", Name: "Français"}}))

	languages, err := gw.ListLanguages(context.Background())
	require.NoError(t, err)
	assert.Len(t, languages, 2)

	agent, err := gw.UpdateLanguage(context.Background(), "agent-1", "fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", agent.Language)
	assert.Equal(t, "fr", backend.Agent().Language)
}

func TestUnreachableServerIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	gw := NewHTTPGateway(url, "", time.Second)

	_, err := gw.ListLanguages(context.Background())

	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
}

func TestUnavailableGatewayFailsEverything(t *testing.T) {
	gw := Unavailable()
	ctx := context.Background()

	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(gw.ChangePassword(ctx, "a", "b")))
	_, err := gw.UploadFile(ctx, Upload{})
	assert.Equal(t, apperrors.KindUnavailable, apperrors.KindOf(err))
	_, err = gw.CurrentAgent(ctx)
	assert.Equal(t, "errors.unavailable", apperrors.LocalizationKey(err))
}
