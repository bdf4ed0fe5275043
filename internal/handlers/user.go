package handlers

import (
	"errors"
	"net/http"

	"github.com/crucial707/landscape-lab/internal/auth"
	"github.com/crucial707/landscape-lab/internal/models"
	"github.com/crucial707/landscape-lab/internal/repo"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo  *repo.UserRepo
	Auth  *auth.Authenticator
	Audit *Auditor
}

var errSelfDeactivate = errors.New("administrators cannot deactivate themselves")

// ==========================
// Me
// ==========================
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ==========================
// Update Me (username, email, password)
// ==========================
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var patch models.UserPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	var hash string
	if patch.Password != nil {
		var err error
		if hash, err = h.Auth.Hasher().Hash(*patch.Password); err != nil {
			writeError(w, r, err, "user")
			return
		}
	}

	updated, err := h.Repo.Update(r.Context(), u.ID, func(target *models.User) error {
		patch.Apply(target, hash)
		return nil
	})
	if err != nil {
		writeError(w, r, err, "username or email")
		return
	}

	h.Audit.Record(r.Context(), u.ID, "update", "user", u.ID, "profile")
	writeJSON(w, http.StatusOK, updated)
}

// ==========================
// List Users (admin)
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	users, err := h.Repo.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		writeError(w, r, err, "user")
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, err, "user")
		return
	}
	writePage(w, users, total, p)
}

// ==========================
// Get User (self or admin)
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	target, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "user")
		return
	}
	if err := h.Auth.Authorize(u, auth.OpUserRead, target.ID); err != nil {
		writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// ==========================
// Patch User (admin: is_active, is_admin)
// ==========================
func (h *UserHandler) PatchUser(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}
	var patch models.UserAdminPatch
	if !decodeAndValidate(w, r, &patch) {
		return
	}

	updated, err := h.Repo.Update(r.Context(), id, func(target *models.User) error {
		if err := h.Auth.Authorize(u, auth.OpUserManage, target.ID); err != nil {
			return err
		}
		if target.ID == u.ID && patch.IsActive != nil && !*patch.IsActive {
			return errSelfDeactivate
		}
		patch.Apply(target)
		return nil
	})
	if errors.Is(err, errSelfDeactivate) {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, r, err, "user")
		return
	}

	h.Audit.Record(r.Context(), u.ID, "update", "user", updated.ID, "flags")
	writeJSON(w, http.StatusOK, updated)
}

// ==========================
// Deactivate User (admin soft delete)
// ==========================
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	_, err := h.Repo.Update(r.Context(), id, func(target *models.User) error {
		if err := h.Auth.Authorize(u, auth.OpUserDeactivate, target.ID); err != nil {
			return err
		}
		if target.ID == u.ID {
			return errSelfDeactivate
		}
		target.IsActive = false
		return nil
	})
	if errors.Is(err, errSelfDeactivate) {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, r, err, "user")
		return
	}

	h.Audit.Record(r.Context(), u.ID, "delete", "user", id, "deactivated")
	w.WriteHeader(http.StatusNoContent)
}
