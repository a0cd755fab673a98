package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arkelhq/userapi/internal/userapi/service"
	"github.com/arkelhq/userapi/pkg/httpx"
	"github.com/arkelhq/userapi/pkg/slogx"
)

// UsersHandler serves the /users resource.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate godoc
//
//	@Summary		Create user
//	@Description	Registers a new user. The response includes an initial access token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			user	body		UserRequest		true	"User to create"
//	@Success		201		{object}	UserResponse	"created user"
//	@Failure		400		{object}	httpx.ErrorBody	"error, message"
//	@Failure		409		{object}	httpx.ErrorBody	"error, message"
//	@Failure		500		{object}	httpx.ErrorBody	"error, message"
//	@Security		BearerAuth
//	@Router			/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if msg := validateCreate(req); msg != "" {
		writeValidation(w, msg)
		return
	}

	user, err := h.UserService.Create(ctx, service.NewUser{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Roles:    req.Roles,
		Phones:   toDomainPhones(req.Phones),
	})
	if err != nil {
		log.Warn("create user failed", "email", req.Email, "err", err)
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleGet godoc
//
//	@Summary		Get user
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string			true	"User ID"
//	@Success		200	{object}	UserResponse	"user"
//	@Failure		401	{object}	httpx.ErrorBody	"error, message"
//	@Failure		404	{object}	httpx.ErrorBody	"error, message"
//	@Security		BearerAuth
//	@Router			/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleList godoc
//
//	@Summary		List users
//	@Tags			Users
//	@Produce		json
//	@Success		200	{array}		UserResponse	"users, newest first"
//	@Failure		401	{object}	httpx.ErrorBody	"error, message"
//	@Security		BearerAuth
//	@Router			/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.UserService.List(ctx)
	if err != nil {
		log.Error("list users failed", "err", err)
		writeServerError(w)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdate godoc
//
//	@Summary		Update user
//	@Description	Updates the named fields; omitted fields keep their stored values.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"User ID"
//	@Param			user	body		UserRequest		true	"Fields to update"
//	@Success		200		{object}	UserResponse	"updated user"
//	@Failure		400		{object}	httpx.ErrorBody	"error, message"
//	@Failure		404		{object}	httpx.ErrorBody	"error, message"
//	@Security		BearerAuth
//	@Router			/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	upd := service.UpdateUser{Active: req.Active}
	if name := strings.TrimSpace(req.Name); name != "" {
		upd.Name = &name
	}
	if req.Password != "" {
		if !validPassword(req.Password) {
			writeValidation(w, "password must be 8-64 characters with an upper-case letter, a lower-case letter and two digits")
			return
		}
		upd.Password = &req.Password
	}
	if roles := strings.TrimSpace(req.Roles); roles != "" {
		upd.Roles = &roles
	}
	if req.Phones != nil {
		upd.Phones = toDomainPhones(req.Phones)
	}

	user, err := h.UserService.Update(ctx, r.PathValue("id"), upd)
	if err != nil {
		log.Warn("update user failed", "id", r.PathValue("id"), "err", err)
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDelete godoc
//
//	@Summary		Delete user
//	@Tags			Users
//	@Produce		json
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"deleted"
//	@Failure		403	{object}	httpx.ErrorBody	"error, message"
//	@Failure		404	{object}	httpx.ErrorBody	"error, message"
//	@Security		BearerAuth
//	@Router			/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateCreate(req UserRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if !validEmail(req.Email) {
		return "email is not a valid address"
	}
	if !validPassword(req.Password) {
		return "password must be 8-64 characters with an upper-case letter, a lower-case letter and two digits"
	}
	if len(req.Phones) == 0 {
		return "at least one phone is required"
	}
	for _, p := range req.Phones {
		if strings.TrimSpace(p.Number) == "" {
			return "phone number is required"
		}
	}
	return ""
}
