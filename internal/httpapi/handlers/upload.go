package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/upload"
)

// Upload accepts a multipart "file" field for the given media kind. Staff and
// requesters share this handler; the resulting URL goes into a chat message.
func (h *Handler) Upload(c *gin.Context) {
	kind := c.Param("kind")
	if !upload.ValidKind(kind) {
		common.Fail(c, http.StatusBadRequest, 10030, "unknown upload kind")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10031, "file field required")
		return
	}

	if fh.Size > upload.SizeLimit(kind) {
		common.Fail(c, http.StatusRequestEntityTooLarge, 10032,
			fmt.Sprintf("file exceeds %d byte limit", upload.SizeLimit(kind)))
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !upload.Allowed(kind, contentType) {
		common.Fail(c, http.StatusBadRequest, 10033, "content type not allowed for "+kind)
		return
	}

	f, err := fh.Open()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20010, "failed to read upload")
		return
	}
	defer f.Close()

	urlPath, storedName, size, err := h.Uploads.Save(kind, fh.Filename, f)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20011, "failed to store upload")
		return
	}

	common.OK(c, gin.H{
		"url":  urlPath,
		"name": storedName,
		"size": size,
	})
}

// ServeUpload streams a stored file back. Names that Save never generated are
// rejected before touching the filesystem.
func (h *Handler) ServeUpload(c *gin.Context) {
	path, err := h.Uploads.Resolve(c.Param("kind"), c.Param("file"))
	if err != nil {
		common.Fail(c, http.StatusNotFound, 40406, "file not found")
		return
	}
	c.File(path)
}
