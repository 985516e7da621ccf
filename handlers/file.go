package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
	"github.com/Angel-Soto43/AzalMechanicalSupport/models"
	"github.com/Angel-Soto43/AzalMechanicalSupport/services"
	"github.com/Angel-Soto43/AzalMechanicalSupport/utils"

	"github.com/gin-gonic/gin"
)

type MoveFileRequest struct {
	FolderID *uint `json:"folder_id"`
}

// UploadFile accepts a multipart form with the document payload plus its
// contract metadata.
func UploadFile(c *gin.Context) {
	contractID := c.PostForm("contract_id")
	supplier := c.PostForm("supplier")

	var folderID *uint
	if raw := c.PostForm("folder_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid folder_id")
			return
		}
		id := uint(parsed)
		folderID = &id
	}

	var previousVersionID *uint
	if raw := c.PostForm("previous_version_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid previous_version_id")
			return
		}
		id := uint(parsed)
		previousVersionID = &id
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "file field is required")
		return
	}
	data, ok := readUpload(c, header)
	if !ok {
		return
	}

	file, err := getServices().File.Upload(c.Request.Context(), actorFromContext(c), services.UploadInput{
		ContractID:        contractID,
		Supplier:          supplier,
		FolderID:          folderID,
		OriginalName:      header.Filename,
		MimeType:          header.Header.Get("Content-Type"),
		Data:              data,
		PreviousVersionID: previousVersionID,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, file)
}

// readUpload pulls the multipart payload into memory, enforcing the size
// cap before buffering.
func readUpload(c *gin.Context, header *multipart.FileHeader) ([]byte, bool) {
	if header.Size > config.AppConfig.Storage.MaxFileSize {
		utils.Error(c, http.StatusBadRequest, "file size exceeds the allowed limit")
		return nil, false
	}

	src, err := header.Open()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "read upload failed")
		return nil, false
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, config.AppConfig.Storage.MaxFileSize+1))
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "read upload failed")
		return nil, false
	}
	if int64(len(data)) > config.AppConfig.Storage.MaxFileSize {
		utils.Error(c, http.StatusBadRequest, "file size exceeds the allowed limit")
		return nil, false
	}
	return data, true
}

func ReplaceFile(c *gin.Context) {
	fileID, ok := parseIDParam(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "file field is required")
		return
	}
	data, ok := readUpload(c, header)
	if !ok {
		return
	}

	file, err := getServices().File.Replace(c.Request.Context(), actorFromContext(c), fileID, services.ReplaceInput{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Data:         data,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, file)
}

// ListFiles lists active files in a folder (?folder_id=), at the root when
// the parameter is absent, or the most recent uploads with ?recent=1.
func ListFiles(c *gin.Context) {
	if c.Query("recent") != "" {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		files, err := getServices().File.ListRecent(c.Request.Context(), limit)
		if respondServiceError(c, err) {
			return
		}
		utils.Success(c, files)
		return
	}

	if c.Query("mine") != "" {
		files, err := getServices().File.ListByUploader(c.Request.Context(), c.GetUint("user_id"))
		if respondServiceError(c, err) {
			return
		}
		utils.Success(c, files)
		return
	}

	var folderID *uint
	if raw := c.Query("folder_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid folder_id")
			return
		}
		id := uint(parsed)
		folderID = &id
	}

	files, err := getServices().File.ListFiles(c.Request.Context(), folderID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, files)
}

func ListFileVersions(c *gin.Context) {
	fileID, ok := parseIDParam(c)
	if !ok {
		return
	}

	versions, err := getServices().File.ListVersions(c.Request.Context(), fileID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, versions)
}

func sendFile(c *gin.Context, file models.File, disposition string) {
	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, file.OriginalName))
	c.Data(http.StatusOK, mimeType, file.Data)
}

func DownloadFile(c *gin.Context) {
	fileID, ok := parseIDParam(c)
	if !ok {
		return
	}

	file, err := getServices().File.Download(c.Request.Context(), actorFromContext(c), fileID)
	if respondServiceError(c, err) {
		return
	}
	sendFile(c, file, "attachment")
}

func PreviewFile(c *gin.Context) {
	fileID, ok := parseIDParam(c)
	if !ok {
		return
	}

	file, err := getServices().File.Preview(c.Request.Context(), actorFromContext(c), fileID)
	if respondServiceError(c, err) {
		return
	}
	sendFile(c, file, "inline")
}

func MoveFile(c *gin.Context) {
	fileID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	err := getServices().File.Move(c.Request.Context(), actorFromContext(c), fileID, req.FolderID)
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "file moved", nil)
}

func DeleteFile(c *gin.Context) {
	fileID, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := getServices().File.Delete(c.Request.Context(), actorFromContext(c), fileID)
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "file deleted", nil)
}
