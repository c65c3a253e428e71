package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"docviewer/internal/model"
	"docviewer/internal/session"
	"docviewer/internal/sharepoint"
)

// sharePointStore implements ObjectStore over a SharePoint document library.
// Calls are made with the access token of the session carried by the request context.
type sharePointStore struct {
	client  *sharepoint.Client
	library string
	folders []string
}

// NewSharePoint returns a store rooted at library. Folder names outside folders
// (other than the library itself) are rejected with ErrUnknownFolder.
func NewSharePoint(client *sharepoint.Client, library string, folders []string) ObjectStore {
	return &sharePointStore{
		client:  client,
		library: strings.Trim(library, "/"),
		folders: folders,
	}
}

// Folders lists the library root followed by the configured sub-folders.
func (s *sharePointStore) Folders() []string {
	return append([]string{s.library}, s.folders...)
}

func (s *sharePointStore) folderPath(folder string) (string, error) {
	root := s.client.SitePath() + "/" + s.library
	folder = strings.Trim(folder, "/")
	if folder == "" || folder == s.library {
		return root, nil
	}
	for _, f := range s.folders {
		if f == folder {
			return root + "/" + folder, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFolder, folder)
}

func (s *sharePointStore) filePath(id model.ObjectID) (string, error) {
	if !model.ValidName(id.Name) {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, id.Name)
	}
	dir, err := s.folderPath(id.Folder)
	if err != nil {
		return "", err
	}
	return dir + "/" + id.Name, nil
}

func accessToken(ctx context.Context) (string, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || sess.AccessToken == "" {
		return "", ErrNotAuthenticated
	}
	return sess.AccessToken, nil
}

// resolve returns the caller's token and the server-relative path of id.
func (s *sharePointStore) resolve(ctx context.Context, id model.ObjectID) (string, string, error) {
	token, err := accessToken(ctx)
	if err != nil {
		return "", "", err
	}
	p, err := s.filePath(id)
	if err != nil {
		return "", "", err
	}
	return token, p, nil
}

func mapSharePointErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sharepoint.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, sharepoint.ErrUnauthorized):
		return ErrNotAuthenticated
	}
	return err
}

func (s *sharePointStore) Exists(ctx context.Context, id model.ObjectID) (bool, error) {
	token, p, err := s.resolve(ctx, id)
	if err != nil {
		return false, err
	}
	_, err = s.client.Stat(ctx, token, p)
	switch err = mapSharePointErr(err); {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	}
	return false, err
}

func (s *sharePointStore) Get(ctx context.Context, id model.ObjectID) (io.ReadCloser, ObjectInfo, error) {
	token, p, err := s.resolve(ctx, id)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	rc, f, err := s.client.Download(ctx, token, p)
	if err != nil {
		return nil, ObjectInfo{}, mapSharePointErr(err)
	}
	return rc, s.toObjectInfo(id.Folder, f), nil
}

// Put uploads with overwrite. Metadata is not stored; SharePoint files carry no custom properties here.
func (s *sharePointStore) Put(ctx context.Context, id model.ObjectID, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	token, err := accessToken(ctx)
	if err != nil {
		return ObjectInfo{}, err
	}
	if !model.ValidName(id.Name) {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrInvalidName, id.Name)
	}
	dir, err := s.folderPath(id.Folder)
	if err != nil {
		return ObjectInfo{}, err
	}
	f, err := s.client.Upload(ctx, token, dir, id.Name, r, opt.Size)
	if err != nil {
		return ObjectInfo{}, mapSharePointErr(err)
	}
	info := s.toObjectInfo(id.Folder, f)
	if info.LastModified.IsZero() {
		info.LastModified = time.Now().UTC()
	}
	if opt.ContentType != "" {
		info.ContentType = opt.ContentType
	}
	return info, nil
}

func (s *sharePointStore) Delete(ctx context.Context, id model.ObjectID) error {
	token, p, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	return mapSharePointErr(s.client.Delete(ctx, token, p))
}

func (s *sharePointStore) List(ctx context.Context, opt ListOptions) ([]ObjectInfo, error) {
	token, err := accessToken(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := s.folderPath(opt.Folder)
	if err != nil {
		return nil, err
	}
	files, err := s.client.ListFiles(ctx, token, dir)
	if err != nil {
		return nil, mapSharePointErr(err)
	}
	out := make([]ObjectInfo, 0, len(files))
	for _, f := range files {
		if !strings.HasPrefix(f.Name, opt.Prefix) {
			continue
		}
		out = append(out, s.toObjectInfo(opt.Folder, f))
	}
	return out, nil
}

// PresignGet returns the absolute file URL. Access is governed by the user's own
// SharePoint permissions, so expiry does not apply.
func (s *sharePointStore) PresignGet(ctx context.Context, id model.ObjectID, _ time.Duration) (string, error) {
	_, p, err := s.resolve(ctx, id)
	if err != nil {
		return "", err
	}
	return s.client.Origin() + p, nil
}

func (s *sharePointStore) toObjectInfo(folder string, f sharepoint.File) ObjectInfo {
	return ObjectInfo{
		ID:           model.ObjectID{Folder: folder, Name: f.Name},
		Size:         f.Size(),
		ETag:         f.UniqueID,
		ContentType:  mime.TypeByExtension(strings.ToLower(path.Ext(f.Name))),
		LastModified: f.TimeLastModified,
		Metadata:     map[string]string{},
	}
}
