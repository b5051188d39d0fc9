package plant

import "io"

// CreatePlantRequest carries the fields of a new listing
type CreatePlantRequest struct {
	Name        string
	Description string
	City        string
	Tags        []string
	Image       *Image
}

// Image is an uploaded picture for a listing
type Image struct {
	Filename string
	Content  io.Reader
}

// DirectoryEntry is a plant with its owner's display name
type DirectoryEntry struct {
	Plant
	OwnerName string `json:"owner_name"`
}

// DirectoryResponse is the public plant list as served to the view
type DirectoryResponse struct {
	Plants []DirectoryEntry `json:"plants"`
}

// ToResponse pairs each plant with its owner's name
func (d Directory) ToResponse() *DirectoryResponse {
	entries := make([]DirectoryEntry, len(d.Plants))
	for i, p := range d.Plants {
		entries[i] = DirectoryEntry{Plant: p, OwnerName: d.OwnerName(p)}
	}
	return &DirectoryResponse{Plants: entries}
}
