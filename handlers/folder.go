package handlers

import (
	"net/http"
	"strconv"

	"github.com/Angel-Soto43/AzalMechanicalSupport/utils"

	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type RenameFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// ListFolders returns root folders, or the children of ?parent_id=.
func ListFolders(c *gin.Context) {
	var parentID *uint
	if raw := c.Query("parent_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid parent_id")
			return
		}
		id := uint(parsed)
		parentID = &id
	}

	folders, err := getServices().Folder.ListFolders(c.Request.Context(), parentID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folders)
}

func CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folder.CreateFolder(c.Request.Context(), actorFromContext(c), req.Name, req.ParentID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func GetFolderPath(c *gin.Context) {
	folderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	path, err := getServices().Folder.GetPath(c.Request.Context(), folderID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, path)
}

func RenameFolder(c *gin.Context) {
	folderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folder.RenameFolder(c.Request.Context(), actorFromContext(c), folderID, req.Name)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func DeleteFolder(c *gin.Context) {
	folderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := getServices().Folder.DeleteFolder(c.Request.Context(), actorFromContext(c), folderID)
	if respondServiceError(c, err) {
		return
	}
	utils.SuccessWithMessage(c, "folder deleted", nil)
}
