package models

import "strings"

// Availability is the agent's presence as shown to customers.
type Availability string

const (
	Online  Availability = "online"
	Busy    Availability = "busy"
	Offline Availability = "offline"
)

// Availabilities lists the statuses in the order the sidebar cycles them.
var Availabilities = []Availability{Online, Busy, Offline}

// Next returns the status after a in the sidebar cycle.
func (a Availability) Next() Availability {
	for i, candidate := range Availabilities {
		if candidate == a {
			return Availabilities[(i+1)%len(Availabilities)]
		}
	}
	return Online
}

// AgentIdentity is the signed-in agent as the backend knows it. The shell
// references it but only the core session service replaces it.
type AgentIdentity struct {
	ID                     string       `json:"id"`
	Name                   string       `json:"name"`
	Email                  string       `json:"email"`
	AvatarURL              string       `json:"avatar_url,omitempty"`
	Language               string       `json:"language,omitempty"`
	Availability           Availability `json:"availability,omitempty"`
	PasswordChangeRequired bool         `json:"password_change_required,omitempty"`
}

// Initials returns up to two letters used when no avatar is set.
func (a AgentIdentity) Initials() string {
	var out []rune
	for _, word := range strings.Fields(a.Name) {
		for _, r := range word {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}

// IdentityChange carries the fields a settled dialog reports upward. Nil
// fields are unchanged.
type IdentityChange struct {
	Email     *string
	AvatarURL *string
	Language  *string
	Name      *string
}

// Apply merges the change into a copy of identity.
func (c IdentityChange) Apply(identity AgentIdentity) AgentIdentity {
	if c.Email != nil {
		identity.Email = *c.Email
	}
	if c.AvatarURL != nil {
		identity.AvatarURL = *c.AvatarURL
	}
	if c.Language != nil {
		identity.Language = *c.Language
	}
	if c.Name != nil {
		identity.Name = *c.Name
	}
	return identity
}

// Language is one entry of the supported-language list.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
