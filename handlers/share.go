package handlers

import (
	"net/http"

	"github.com/Angel-Soto43/AzalMechanicalSupport/utils"

	"github.com/gin-gonic/gin"
)

func ShareFile(c *gin.Context) {
	fileID, ok := parseIDParam(c)
	if !ok {
		return
	}

	out, err := getServices().Share.ShareFile(c.Request.Context(), actorFromContext(c), fileID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}

func ShareFolder(c *gin.Context) {
	folderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	out, err := getServices().Share.ShareFolder(c.Request.Context(), actorFromContext(c), folderID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}

// ResolveShare serves a shared resource to an unauthenticated caller. File
// tokens stream the document; folder tokens list the folder's contents.
func ResolveShare(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.Error(c, http.StatusBadRequest, "share token is required")
		return
	}

	target, err := getServices().Share.Resolve(c.Request.Context(), token)
	if respondServiceError(c, err) {
		return
	}

	switch target.Kind {
	case "file":
		file, err := getServices().File.DownloadViaShare(c.Request.Context(), c.ClientIP(), c.Request.UserAgent(), target.ID)
		if respondServiceError(c, err) {
			return
		}
		sendFile(c, file, "attachment")
	case "folder":
		folderID := target.ID
		files, err := getServices().File.ListFiles(c.Request.Context(), &folderID)
		if respondServiceError(c, err) {
			return
		}
		utils.Success(c, files)
	default:
		utils.Error(c, http.StatusNotFound, "share link is unknown or expired")
	}
}
