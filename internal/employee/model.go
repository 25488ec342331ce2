package employee

import (
	"time"

	"github.com/uptrace/bun"
)

type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:e"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	FirstName string    `bun:"first_name,notnull" json:"first_name"`
	LastName  string    `bun:"last_name,notnull" json:"last_name"`
	Email     string    `bun:"email,unique,nullzero" json:"email"`
	Contact   string    `bun:"contact,notnull" json:"contact"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// CreatedRecord is the representation returned by the create operation.
type CreatedRecord struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdatedRecord is the representation returned by update and partial update.
type UpdatedRecord struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DataResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func (e *Employee) created() CreatedRecord {
	return CreatedRecord{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Contact:   e.Contact,
		CreatedAt: e.CreatedAt,
	}
}

func (e *Employee) updated() UpdatedRecord {
	return UpdatedRecord{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Contact:   e.Contact,
		UpdatedAt: e.UpdatedAt,
	}
}

// apply copies validated input onto the record.
func (e *Employee) apply(in *Input) {
	e.FirstName = *in.FirstName
	e.LastName = *in.LastName
	e.Email = *in.Email
	e.Contact = *in.Contact
}
