package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/day-booking/internal/service"
)

// maxSnapshotBytes bounds the restore body.
const maxSnapshotBytes = 10 << 20

// BackupHandler exports and imports whole-store snapshots.
type BackupHandler struct {
	Backups *service.BackupService
	now     func() time.Time
}

func NewBackupHandler(backups *service.BackupService) *BackupHandler {
	if backups == nil {
		panic("nil service passed to NewBackupHandler")
	}
	return &BackupHandler{Backups: backups, now: time.Now}
}

// Export handles GET /v1/backup.  The snapshot is sent as a JSON attachment
// named after the current date.
func (h *BackupHandler) Export(c echo.Context) error {
	snapshot, err := h.Backups.CreateBackup(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+service.BackupFileName(h.now())+`"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(snapshot))
}

// Restore handles POST /v1/restore.  The body is the raw snapshot text as
// produced by Export; the whole store is replaced on success.
func (h *BackupHandler) Restore(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSnapshotBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read request body"})
	}
	if len(body) > maxSnapshotBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "snapshot too large"})
	}
	if err := h.Backups.RestoreBackup(c.Request().Context(), string(body)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "backup restored successfully"})
}
