package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"userservice/pkg/apperr"
	"userservice/pkg/httpresponse"
	"userservice/pkg/user"
)

const (
	MuxVarID = "id"

	msgHealthOK      = "Health check ok"
	msgMissingParams = "Name, username or password is missing"
	msgUserExists    = "User already exists"
	msgIDRequired    = "Id is required"
	msgUserNotFound  = "User not found"
	msgInternalError = "Internal server error"
	msgUserUpdated   = "User updated successfully"
	msgUserDeleted   = "User deleted successfully"
)

type CreateForm struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateForm struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// UserHandler serves the user resource on top of a user.Repository.
// It keeps no per-request state and can be shared by all routes.
type UserHandler struct {
	Repo   user.Repository
	Logger *slog.Logger
}

func NewUserHandler(repo user.Repository, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		Repo:   repo,
		Logger: logger,
	}
}

func (h *UserHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Logger, http.StatusOK, map[string]string{typeMessage: msgHealthOK})
}

// Create answers with HTTP 200 once the body decodes; the outcome is
// carried by the envelope's statusCode.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	if req.Name == "" || req.Username == "" || req.Password == "" {
		h.writeEnvelope(w, httpresponse.BadRequest(apperr.NewMissingParamError(msgMissingParams)))
		return
	}

	_, err := h.Repo.FindOne(r.Context(), user.Filter{Username: req.Username})
	switch {
	case err == nil:
		h.writeEnvelope(w, httpresponse.BadRequest(apperr.NewMissingParamError(msgUserExists)))
		return
	case !errors.Is(err, user.ErrNotFound):
		h.logStoreError("create", err)
		h.writeEnvelope(w, httpresponse.ServerError())
		return
	}

	created, err := h.Repo.Create(r.Context(), user.Fields{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if errors.Is(err, user.ErrAlreadyExists) {
		h.writeEnvelope(w, httpresponse.BadRequest(apperr.NewMissingParamError(msgUserExists)))
		return
	}
	if err != nil {
		h.logStoreError("create", err)
		h.writeEnvelope(w, httpresponse.ServerError())
		return
	}

	if ok := h.writeEnvelope(w, httpresponse.Created(created)); ok {
		h.Logger.Info("user created", "user", created.ID)
	}
}

func (h *UserHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.Repo.FindMany(r.Context(), user.Filter{})
	if err != nil {
		h.internalError(w, "findAll", err)
		return
	}

	writeJSON(w, h.Logger, http.StatusOK, users)
}

// FindByID always answers with a list, which is empty when no user has
// the given id.
func (h *UserHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)[MuxVarID]
	if id == "" {
		writeError(w, http.StatusBadRequest, typeError, msgIDRequired)
		return
	}

	users, err := h.Repo.FindMany(r.Context(), user.Filter{ID: id})
	if err != nil {
		h.internalError(w, "findById", err)
		return
	}

	writeJSON(w, h.Logger, http.StatusOK, users)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)[MuxVarID]
	if id == "" {
		writeError(w, http.StatusBadRequest, typeError, msgIDRequired)
		return
	}

	var req UpdateForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	updated, err := h.Repo.UpdateByID(r.Context(), id, user.Fields{
		Name:     req.Name,
		Username: req.Username,
	})
	if errors.Is(err, user.ErrNotFound) {
		writeError(w, http.StatusBadRequest, typeError, msgUserNotFound)
		return
	}
	if err != nil {
		h.internalError(w, "update", err)
		return
	}

	if ok := writeJSON(w, h.Logger, http.StatusOK, map[string]any{
		typeMessage: msgUserUpdated,
		"user":      updated,
	}); ok {
		h.Logger.Info("user updated", "user", id)
	}
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)[MuxVarID]
	if id == "" {
		writeError(w, http.StatusBadRequest, typeError, msgIDRequired)
		return
	}

	_, err := h.Repo.DeleteByID(r.Context(), id)
	if errors.Is(err, user.ErrNotFound) {
		writeError(w, http.StatusBadRequest, typeError, msgUserNotFound)
		return
	}
	if err != nil {
		h.internalError(w, "delete", err)
		return
	}

	if ok := writeJSON(w, h.Logger, http.StatusOK, map[string]string{typeMessage: msgUserDeleted}); ok {
		h.Logger.Info("user deleted", "user", id)
	}
}

func (h *UserHandler) writeEnvelope(w http.ResponseWriter, env httpresponse.Envelope) bool {
	return writeJSON(w, h.Logger, http.StatusOK, env)
}

func (h *UserHandler) logStoreError(op string, err error) *apperr.StoreError {
	storeErr := apperr.NewStoreError(op, err)
	h.Logger.Error("store failure", "op", op, "error", storeErr.Cause)
	return storeErr
}

func (h *UserHandler) internalError(w http.ResponseWriter, op string, err error) {
	storeErr := h.logStoreError(op, err)
	writeJSON(w, h.Logger, http.StatusInternalServerError, map[string]string{
		typeError:   msgInternalError,
		typeMessage: storeErr.Detail(),
	})
}
