package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Client is a person receiving care. Exactly one coordinator owns scheduling
// authority; CoordinatorID is written once at creation and never updated
// (no transfer-of-coordinator operation exists).
type Client struct {
	ID            uuid.UUID `json:"id" db:"id"`
	FirstName     string    `json:"firstName" db:"first_name"`
	LastName      string    `json:"lastName" db:"last_name"`
	CoordinatorID uuid.UUID `json:"coordinatorId" db:"coordinator_id"`

	// Carers is the care team: a set of user ids, mutated only through the
	// invitation / removal / self-assignment operations. No ordering guarantee.
	Carers []uuid.UUID `json:"carers"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// HasCarer reports whether userID is a member of the care team.
func (c *Client) HasCarer(userID uuid.UUID) bool {
	for _, id := range c.Carers {
		if id == userID {
			return true
		}
	}
	return false
}

// CreateClientRequest DTO for client creation. The coordinator is always the
// authenticated caller; it is never taken from the body.
type CreateClientRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
}

func (r *CreateClientRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)

	validate := validator.New()
	return validate.Struct(r)
}

// InviteCarerRequest DTO for care-team invitations. The email must resolve to
// an already-registered user; CareSync never invites non-users.
type InviteCarerRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (r *InviteCarerRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	validate := validator.New()
	return validate.Struct(r)
}

// RedeemInvitationRequest carries the emailed one-time invitation token.
type RedeemInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

func (r *RedeemInvitationRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)

	validate := validator.New()
	return validate.Struct(r)
}

// RemoveCarerResponse reports the membership mutation plus how many upcoming
// shifts still reference the removed carer. Removal is membership-only:
// assigned shifts are deliberately left intact so history survives.
type RemoveCarerResponse struct {
	ClientID                    uuid.UUID `json:"clientId"`
	CarerID                     uuid.UUID `json:"carerId"`
	UpcomingShiftsStillAssigned int       `json:"upcomingShiftsStillAssigned"`
}
