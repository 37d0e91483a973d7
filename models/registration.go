// Package models defines the persisted document shapes for the registration
// service.
// File: models/registration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamMember is one entry in a team roster. Order is preserved as submitted
// because the admin dashboard displays members in submission order.
type TeamMember struct {
	Name            string `bson:"name" json:"name" binding:"required"`
	SocialMediaLink string `bson:"socialMediaLink,omitempty" json:"socialMediaLink,omitempty"`
}

// Registration is a single team registration document. Duplicate submissions
// are accepted; there is no uniqueness constraint on team name or leader email.
type Registration struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TeamName          string             `bson:"teamName" json:"teamName"`
	TeamLeaderName    string             `bson:"teamLeaderName" json:"teamLeaderName"`
	TeamLeaderPhone   string             `bson:"teamLeaderPhone" json:"teamLeaderPhone"`
	TeamLeaderEmail   string             `bson:"teamLeaderEmail" json:"teamLeaderEmail"`
	TeamMembers       []TeamMember       `bson:"teamMembers" json:"teamMembers"`
	ProjectLink       string             `bson:"projectLink,omitempty" json:"projectLink,omitempty"`
	InovactSocialLink string             `bson:"inovactSocialLink,omitempty" json:"inovactSocialLink,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

// RegistrationRequest is the inbound submission payload. Required-field
// enforcement happens here, at the boundary, via binding tags rather than
// deeper in the intake path.
type RegistrationRequest struct {
	TeamName          string       `json:"teamName" binding:"required"`
	TeamLeaderName    string       `json:"teamLeaderName" binding:"required"`
	TeamLeaderPhone   string       `json:"teamLeaderPhone" binding:"required"`
	TeamLeaderEmail   string       `json:"teamLeaderEmail" binding:"required,email"`
	TeamMembers       []TeamMember `json:"teamMembers" binding:"dive"`
	ProjectLink       string       `json:"projectLink"`
	InovactSocialLink string       `json:"inovactSocialLink"`
}

// ToRegistration builds the document that will be persisted from a validated
// request.
func (r *RegistrationRequest) ToRegistration(now time.Time) *Registration {
	members := r.TeamMembers
	if members == nil {
		members = []TeamMember{}
	}
	return &Registration{
		TeamName:          r.TeamName,
		TeamLeaderName:    r.TeamLeaderName,
		TeamLeaderPhone:   r.TeamLeaderPhone,
		TeamLeaderEmail:   r.TeamLeaderEmail,
		TeamMembers:       members,
		ProjectLink:       r.ProjectLink,
		InovactSocialLink: r.InovactSocialLink,
		CreatedAt:         now,
	}
}
