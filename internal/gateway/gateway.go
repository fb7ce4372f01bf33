// Package gateway talks to the support backend on behalf of the shell:
// credential changes, partial profile updates, file uploads and language
// preferences.
package gateway

import (
	"context"

	"github.com/Rorical/AgentDesk/internal/apperrors"
	"github.com/Rorical/AgentDesk/internal/models"
)

// ProfileFields is a partial profile update. Nil fields are omitted from the
// request and left unchanged by the server.
type ProfileFields struct {
	Email        *string              `json:"email,omitempty"`
	AvatarURL    *string              `json:"avatar_url,omitempty"`
	Name         *string              `json:"name,omitempty"`
	Availability *models.Availability `json:"availability,omitempty"`
}

// Upload is a file to store on the backend.
type Upload struct {
	Name     string
	Content  []byte
	OwnerID  string
	Category string
	Public   bool
}

// UploadedFile describes a stored file. URL is always set on success.
type UploadedFile struct {
	URL         string `json:"url"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// Gateway issues the remote operations the shell depends on. Every call is a
// single attempt; retrying is a user action.
type Gateway interface {
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, fields ProfileFields) (models.AgentIdentity, error)
	UploadFile(ctx context.Context, upload Upload) (UploadedFile, error)
	ListLanguages(ctx context.Context) ([]models.Language, error)
	UpdateLanguage(ctx context.Context, agentID, code string) (models.AgentIdentity, error)
	CurrentAgent(ctx context.Context) (models.AgentIdentity, error)
}

type unavailableGateway struct{}

// Unavailable returns a gateway that fails every call. It stands in when no
// server profile is configured.
func Unavailable() Gateway {
	return unavailableGateway{}
}

func errUnavailable() error {
	return apperrors.EK(apperrors.KindUnavailable, "errors.unavailable", "support server is not configured")
}

func (unavailableGateway) ChangePassword(context.Context, string, string) error {
	return errUnavailable()
}

func (unavailableGateway) UpdateProfile(context.Context, ProfileFields) (models.AgentIdentity, error) {
	return models.AgentIdentity{}, errUnavailable()
}

func (unavailableGateway) UploadFile(context.Context, Upload) (UploadedFile, error) {
	return UploadedFile{}, errUnavailable()
}

func (unavailableGateway) ListLanguages(context.Context) ([]models.Language, error) {
	return nil, errUnavailable()
}

func (unavailableGateway) UpdateLanguage(context.Context, string, string) (models.AgentIdentity, error) {
	return models.AgentIdentity{}, errUnavailable()
}

func (unavailableGateway) CurrentAgent(context.Context) (models.AgentIdentity, error) {
	return models.AgentIdentity{}, errUnavailable()
}

// String is a convenience for building ProfileFields literals.
func String(value string) *string {
	return &value
}
