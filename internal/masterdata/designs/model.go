package designs

import (
	"time"
)

// Design identifies a printed pattern; color-kitchen entries reference one.
type Design struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	TypeName  string    `json:"type_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
