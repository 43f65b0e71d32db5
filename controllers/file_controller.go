// controllers/file_controller.go
package controllers

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"

	"github.com/eilanhub/eilan_backend/models"
	"github.com/eilanhub/eilan_backend/storage"
	"github.com/eilanhub/eilan_backend/utils"
)

const thumbnailWidth = 320

// FileController handles uploads and raw file retrieval
type FileController struct {
	Store  storage.BlobStore
	logger *log.Logger
}

// NewFileController creates a new file controller
func NewFileController(store storage.BlobStore) *FileController {
	return &FileController{
		Store:  store,
		logger: log.New(os.Stdout, "[FILES] ", log.LstdFlags),
	}
}

// Upload stores a multipart file and returns its id and URL. Image uploads
// additionally get a stored thumbnail.
func (fc *FileController) Upload(c echo.Context) error {
	userID, err := utils.CallerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No file provided",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		fc.logger.Printf("Error opening uploaded file: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		fc.logger.Printf("Error reading uploaded file: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	fileID, err := fc.Store.Put(ctx, storage.Blob{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
		UploadedBy:  userID,
	})
	if err != nil {
		fc.logger.Printf("Error storing file: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store file",
		})
	}

	result := map[string]string{
		"file_id": fileID,
		"url":     "/api/files/" + fileID,
	}

	// Best effort thumbnail for images; the upload itself never fails on it
	if strings.HasPrefix(contentType, "image/") {
		if thumbID, err := fc.storeThumbnail(ctx, fileHeader.Filename, userID, data); err == nil {
			result["thumbnail_url"] = "/api/files/" + thumbID
		} else {
			fc.logger.Printf("Skipping thumbnail for %s: %v", fileHeader.Filename, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "File uploaded successfully",
		Data:    result,
	})
}

func (fc *FileController) storeThumbnail(ctx context.Context, filename, userID string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return "", err
	}

	return fc.Store.Put(ctx, storage.Blob{
		Filename:    "thumb_" + filename,
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
		UploadedBy:  userID,
	})
}

// GetFile streams the raw bytes with the stored content type. Public route.
func (fc *FileController) GetFile(c echo.Context) error {
	fileID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	blob, err := fc.Store.Get(ctx, fileID)
	if err != nil {
		if err == storage.ErrBlobNotFound {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "File not found",
			})
		}
		fc.logger.Printf("Error retrieving file %s: %v", fileID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve file",
		})
	}

	return c.Blob(http.StatusOK, blob.ContentType, blob.Data)
}
