package models

import (
	"encoding/json"
	"fmt"
	"io"
)

// PhotoAlbum is an album captured from the source service.
//
// ID is stable across retries and is used as the idempotency key on import.
type PhotoAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PhotoModel is a single exported photo. Importers that only materialize albums ignore these.
type PhotoModel struct {
	Title        string `json:"title"`
	FetchableURL string `json:"fetchableUrl,omitempty"`
	Description  string `json:"description,omitempty"`
	MediaType    string `json:"mediaType,omitempty"`
	DataID       string `json:"dataId,omitempty"`
	AlbumID      string `json:"albumId,omitempty"`
}

// PhotosContainer is the container resource handed to a photos importer.
type PhotosContainer struct {
	Albums []PhotoAlbum `json:"albums"`
	Photos []PhotoModel `json:"photos,omitempty"`
}

// ReadPhotosContainer decodes an export bundle.
//
// Albums without an id cannot be imported idempotently and are rejected.
func ReadPhotosContainer(r io.Reader) (*PhotosContainer, error) {
	var container PhotosContainer
	if err := json.NewDecoder(r).Decode(&container); err != nil {
		return nil, fmt.Errorf("failed to decode photos container: %w", err)
	}

	for i, album := range container.Albums {
		if album.ID == "" {
			return nil, fmt.Errorf("album %d (%q) has no id", i, album.Name)
		}
	}

	return &container, nil
}
