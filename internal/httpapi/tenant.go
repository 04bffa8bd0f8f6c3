package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
)

// maxUploadBytes bounds an uploaded tenant database.
const maxUploadBytes = 256 << 20

type initResponse struct {
	TenantID     string `json:"user_id"`
	Created      bool   `json:"created"`
	DatabasePath string `json:"database_path"`
}

// initTenant provisions the tenant store. It answers 201 when the store was
// created and 200 when it already existed.
func (a *API) initTenant(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	created, err := a.reg.Init(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, initResponse{TenantID: id, Created: created, DatabasePath: a.reg.Path(id)})
}

func (a *API) databaseInfo(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	info, err := a.reg.Info(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// downloadDatabase sends a consistent copy of the tenant file. The copy is
// streamed into a temp file so the handle lock is not held while the client
// reads it.
func (a *API) downloadDatabase(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	f, err := os.CreateTemp("", "crm-download-*.db")
	if err != nil {
		a.writeError(w, r, apperr.Unavailable(err))
		return
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := a.reg.BackupTo(r.Context(), id, f); err != nil {
		a.writeError(w, r, err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		a.writeError(w, r, apperr.Unavailable(err))
		return
	}
	st, err := f.Stat()
	if err != nil {
		a.writeError(w, r, apperr.Unavailable(err))
		return
	}

	name := fmt.Sprintf("crm_%s.db", id)
	w.Header().Set("Content-Type", "application/vnd.sqlite3")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	http.ServeContent(w, r, name, st.ModTime(), f)
}

// uploadDatabase replaces the tenant file with the uploaded one. The body is
// either a multipart form with a "file" part or the raw database bytes.
func (a *API) uploadDatabase(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var src io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); strings.HasPrefix(mt, "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			a.writeError(w, r, apperr.Validation("missing file part: %v", err))
			return
		}
		defer file.Close()
		src = file
	}

	if err := a.reg.RestoreFrom(r.Context(), id, src); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			err = apperr.Validation("upload exceeds %d bytes", tooBig.Limit)
		}
		a.writeError(w, r, err)
		return
	}
	a.log.Info("tenant database uploaded", zap.String("tenant_id", id))
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id, "restored": true})
}

func (a *API) deleteDatabase(w http.ResponseWriter, r *http.Request) {
	id, err := tenantID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	existed, err := a.reg.Destroy(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !existed {
		a.writeError(w, r, apperr.NotFound("tenant", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
