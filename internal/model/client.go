package model

import "time"

type Client struct {
	ID         int64  `json:"id" db:"id"`
	UserID     *int64 `json:"user_id,omitempty" db:"user_id"`
	LocationID int64  `json:"location_id" db:"location_id"`
	// PreferredProviderID is absent in deployments without the column.
	PreferredProviderID *int64    `json:"preferred_provider_id,omitempty" db:"preferred_provider_id"`
	Name                string    `json:"name" db:"name"`
	Email               string    `json:"email" db:"email"`
	Phone               string    `json:"phone" db:"phone"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

type UpdateClientRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

// Apply copies the set fields onto c.
func (r UpdateClientRequest) Apply(c *Client) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
}
