package textcache

import (
	"path"
	"strings"

	"docviewer/internal/model"
)

// Layout derives the identity of a document's cached text artifact.
type Layout interface {
	// Key returns the identity of doc's artifact.
	Key(doc model.ObjectID) model.ObjectID
	// IsArtifact reports whether id names an artifact rather than a document.
	IsArtifact(id model.ObjectID) bool
}

// TextPrefix is the reserved folder that holds artifacts in blob stores.
const TextPrefix = "documents_text"

// SiteSuffix is appended to a document's name to form its artifact name on document sites.
const SiteSuffix = "_extracted.txt"

// BlobLayout stores artifacts under documents_text/{name}.txt.
type BlobLayout struct{}

func (BlobLayout) Key(doc model.ObjectID) model.ObjectID {
	return model.ObjectID{Folder: path.Join(TextPrefix, doc.Folder), Name: doc.Name + ".txt"}
}

// IsArtifact judges the joined key, so a name carrying the prefix is caught as well as a folder.
func (BlobLayout) IsArtifact(id model.ObjectID) bool {
	key := strings.TrimPrefix(path.Clean("/"+id.String()), "/")
	return key == TextPrefix || strings.HasPrefix(key, TextPrefix+"/")
}

// SiteLayout stores artifacts next to the source as {name}_extracted.txt.
type SiteLayout struct{}

func (SiteLayout) Key(doc model.ObjectID) model.ObjectID {
	return model.ObjectID{Folder: doc.Folder, Name: doc.Name + SiteSuffix}
}

func (SiteLayout) IsArtifact(id model.ObjectID) bool {
	return strings.HasSuffix(id.Name, SiteSuffix)
}
