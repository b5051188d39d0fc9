package plant

import (
	"time"

	"github.com/google/uuid"
)

// UnknownOwner is shown when an owner's name could not be resolved.
const UnknownOwner = "Unknown"

// Plant represents a listing on the marketplace
type Plant struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Tags        []string  `json:"tags"`
	ImageURL    string    `json:"image_url,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Directory is one completed load of the public plant list
type Directory struct {
	Plants []Plant              `json:"plants"`
	Owners map[uuid.UUID]string `json:"owners"`
}

// OwnerName returns the resolved owner name for p.
func (d Directory) OwnerName(p Plant) string {
	if name, ok := d.Owners[p.OwnerID]; ok {
		return name
	}
	return UnknownOwner
}
