package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/internal/models"
)

const (
	userAgent = "AgentDesk/1.0"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// HTTPGateway implements Gateway against the support backend's JSON API.
type HTTPGateway struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPGateway creates a client for baseURL authenticating with token.
func NewHTTPGateway(baseURL, token string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type passwordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type languageRequest struct {
	Language string `json:"language"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (g *HTTPGateway) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	resp, err := g.doJSON(ctx, http.MethodPost, "/api/v1/agents/me/password", passwordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeFailure(resp, apperrors.KindRemote)
	}
	return nil
}

func (g *HTTPGateway) UpdateProfile(ctx context.Context, fields ProfileFields) (models.AgentIdentity, error) {
	resp, err := g.doJSON(ctx, http.MethodPatch, "/api/v1/agents/me", fields)
	if err != nil {
		return models.AgentIdentity{}, err
	}
	return decodeIdentity(resp)
}

func (g *HTTPGateway) UploadFile(ctx context.Context, upload Upload) (UploadedFile, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", upload.Name)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(upload.Content); err != nil {
		return UploadedFile{}, fmt.Errorf("writing form file: %w", err)
	}
	fields := map[string]string{
		"owner_id": upload.OwnerID,
		"category": upload.Category,
		"public":   strconv.FormatBool(upload.Public),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return UploadedFile{}, fmt.Errorf("writing form field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return UploadedFile{}, fmt.Errorf("closing multipart body: %w", err)
	}

	resp, err := g.do(ctx, http.MethodPost, "/api/v1/files", &body, writer.FormDataContentType())
	if err != nil {
		return UploadedFile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return UploadedFile{}, decodeFailure(resp, apperrors.KindUpload)
	}

	var file UploadedFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return UploadedFile{}, fmt.Errorf("decoding uploaded file: %w", err)
	}
	if file.URL == "" {
		return UploadedFile{}, apperrors.E(apperrors.KindUpload, "")
	}
	return file, nil
}

func (g *HTTPGateway) ListLanguages(ctx context.Context) ([]models.Language, error) {
	resp, err := g.doJSON(ctx, http.MethodGet, "/api/v1/languages", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, decodeFailure(resp, apperrors.KindRemote)
	}

	var languages []models.Language
	if err := json.NewDecoder(resp.Body).Decode(&languages); err != nil {
		return nil, fmt.Errorf("decoding languages: %w", err)
	}
	return languages, nil
}

func (g *HTTPGateway) UpdateLanguage(ctx context.Context, agentID, code string) (models.AgentIdentity, error) {
	path := "/api/v1/agents/" + url.PathEscape(agentID) + "/language"
	resp, err := g.doJSON(ctx, http.MethodPatch, path, languageRequest{Language: code})
	if err != nil {
		return models.AgentIdentity{}, err
	}
	return decodeIdentity(resp)
}

func (g *HTTPGateway) CurrentAgent(ctx context.Context) (models.AgentIdentity, error) {
	resp, err := g.doJSON(ctx, http.MethodGet, "/api/v1/agents/me", nil)
	if err != nil {
		return models.AgentIdentity{}, err
	}
	return decodeIdentity(resp)
}

func (g *HTTPGateway) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return g.do(ctx, method, path, reader, contentType)
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperrors.Error{
			Kind:    apperrors.KindUnavailable,
			Key:     "errors.unavailable",
			Message: err.Error(),
		}
	}
	return resp, nil
}

func decodeIdentity(resp *http.Response) (models.AgentIdentity, error) {
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return models.AgentIdentity{}, decodeFailure(resp, apperrors.KindRemote)
	}
	var identity models.AgentIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return models.AgentIdentity{}, fmt.Errorf("decoding agent: %w", err)
	}
	return identity, nil
}

// decodeFailure turns a non-2xx response into a typed error. The message is
// left empty when the body carries none so callers can pick their own
// fallback text.
func decodeFailure(resp *http.Response, kind apperrors.Kind) error {
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = apperrors.KindAuth
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := ""
	var parsed errorBody
	if err := json.Unmarshal(data, &parsed); err == nil {
		message = strings.TrimSpace(parsed.Message)
		if message == "" {
			message = strings.TrimSpace(parsed.Error)
		}
	}
	return apperrors.Error{Kind: kind, Message: message, Status: resp.StatusCode}
}
