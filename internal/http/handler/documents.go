package handler

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"docviewer/internal/model"
	"docviewer/internal/service"
)

type uploadResponse struct {
	Success  bool   `json:"success"`
	BlobName string `json:"blobName"`
	model.Document
}

type listResponse struct {
	Success bool             `json:"success"`
	Files   []model.Document `json:"files"`
	Folders []string         `json:"folders"`
}

type downloadResponse struct {
	Success bool `json:"success"`
	service.DownloadLink
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// documentID builds the target of a per-document route from the :name param and ?folder.
// Both are copied out of the request buffer, which fiber reuses after the handler returns.
// An unescaped name must still be a single path element.
func documentID(c *fiber.Ctx) (model.ObjectID, error) {
	name, err := url.PathUnescape(utils.CopyString(c.Params("name")))
	if err != nil {
		return model.ObjectID{}, err
	}
	name = strings.TrimSpace(name)
	if name != "" && !model.ValidName(name) {
		return model.ObjectID{}, errInvalidName
	}
	return model.ObjectID{Folder: utils.CopyString(c.Query("folder")), Name: name}, nil
}

var errInvalidName = errors.New("name is not a single path element")

func writeInvalidName(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "invalid document name")
}

// UploadDocument stores a multipart upload (field "file", optional form value "folder").
//
// @Summary Upload a document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param folder formData string false "Target folder"
// @Success 201 {object} uploadResponse
// @Failure 400 {object} errorPayload
// @Router /api/upload [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, service.ErrFileRequired.Code, "No file uploaded")
		}
		if fh.Filename == "" {
			return writeError(c, fiber.StatusBadRequest, service.ErrFileRequired.Code, "No file selected")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), service.UploadInput{
			Folder:      utils.CopyString(c.FormValue("folder")),
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{Success: true, BlobName: doc.Name, Document: *doc})
	}
}

// ListDocuments lists the documents of a folder. Cached text is never listed.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Param folder query string false "Folder"
// @Success 200 {object} listResponse
// @Router /api/files [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), c.Query("folder"))
		if err != nil {
			return writeServiceError(c, err)
		}
		folders := res.Folders
		if folders == nil {
			folders = []string{}
		}
		return c.JSON(listResponse{Success: true, Files: res.Items, Folders: folders})
	}
}

// DownloadURL issues a time-limited URL for a document.
//
// @Summary Get a download URL
// @Tags documents
// @Produce json
// @Param name path string true "Document name"
// @Param folder query string false "Folder"
// @Success 200 {object} downloadResponse
// @Failure 404 {object} errorPayload
// @Router /api/files/{name}/download [get]
func DownloadURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := documentID(c)
		if err != nil {
			return writeInvalidName(c)
		}
		link, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(downloadResponse{Success: true, DownloadLink: *link})
	}
}

// DeleteDocument removes a document and its cached text.
//
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param name path string true "Document name"
// @Param folder query string false "Folder"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorPayload
// @Router /api/files/{name} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := documentID(c)
		if err != nil {
			return writeInvalidName(c)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Success: true, Message: "File and extracted text deleted successfully"})
	}
}
