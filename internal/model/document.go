package model

import (
	"path/filepath"
	"strings"
	"time"
)

// ObjectID identifies an object in a store by its folder (container or
// document-site folder) and name. Folder may be empty for flat stores.
type ObjectID struct {
	Folder string `json:"folder,omitempty"`
	Name   string `json:"name"`
}

// Ext returns the lowercase extension of the object name including the dot.
func (id ObjectID) Ext() string {
	return strings.ToLower(filepath.Ext(id.Name))
}

// ValidName reports whether name is a single path element: no separators and not a dot segment.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func (id ObjectID) String() string {
	if id.Folder == "" {
		return id.Name
	}
	return id.Folder + "/" + id.Name
}

// Document represents a stored source file as returned to clients.
// It carries no storage-specific types and can be used across layers.
type Document struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"originalName"`
	Folder       string    `json:"folder,omitempty"`
	FileType     string    `json:"fileType"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"type"`
	PageCount    int       `json:"pageCount,omitempty"`
	URL          string    `json:"url,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
	LastModified time.Time `json:"lastModified"`
}
