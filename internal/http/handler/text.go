package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"docviewer/internal/model"
	"docviewer/internal/service"
)

type extractResponse struct {
	Success bool `json:"success"`
	model.ExtractedText
}

type saveRequest struct {
	Text string `json:"text"`
}

type saveResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	SavedAt time.Time `json:"savedAt"`
}

type historyResponse struct {
	Success bool                    `json:"success"`
	Data    []model.ExtractionEvent `json:"data"`
	Total   int                     `json:"total"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}

// ExtractText returns the text of a document, from the cache when present.
//
// @Summary Extract document text
// @Tags text
// @Produce json
// @Param name path string true "Document name"
// @Param folder query string false "Folder"
// @Success 200 {object} extractResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/extract-text/{name} [post]
func ExtractText(svc service.TextService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := documentID(c)
		if err != nil {
			return writeInvalidName(c)
		}
		res, err := svc.ExtractText(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(extractResponse{Success: true, ExtractedText: *res})
	}
}

// SaveEditedText stores user-edited text in place of the extracted text. Body: {"text": "..."}.
//
// @Summary Save edited text
// @Tags text
// @Accept json
// @Produce json
// @Param name path string true "Document name"
// @Param folder query string false "Folder"
// @Param body body saveRequest true "Edited text"
// @Success 200 {object} saveResponse
// @Failure 400 {object} errorPayload
// @Router /api/save-edited-text/{name} [post]
func SaveEditedText(svc service.TextService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := documentID(c)
		if err != nil {
			return writeInvalidName(c)
		}

		var req saveRequest
		if _, err := decodeBody(c.Body(), saveTextBody, &req); err != nil {
			if errors.Is(err, errInvalidJSON) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
			}
			return writeError(c, fiber.StatusBadRequest, service.ErrTextRequired.Code, "No text provided")
		}

		res, err := svc.SaveText(c.UserContext(), id, req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(saveResponse{Success: true, Message: "Text saved successfully", SavedAt: res.ExtractedAt})
	}
}

// ExtractionHistory pages through the extraction log of a document.
//
// @Summary Extraction history
// @Tags text
// @Produce json
// @Param name path string true "Document name"
// @Param folder query string false "Folder"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} historyResponse
// @Router /api/files/{name}/extractions [get]
func ExtractionHistory(svc service.TextService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := documentID(c)
		if err != nil {
			return writeInvalidName(c)
		}
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.History(c.UserContext(), id, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		items := res.Items
		if items == nil {
			items = []model.ExtractionEvent{}
		}
		return c.JSON(historyResponse{Success: true, Data: items, Total: res.Total, Limit: limit, Offset: offset})
	}
}
