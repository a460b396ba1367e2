package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/service"
	mdw "go-contacts-api/internal/transport/http/middleware"
	resp "go-contacts-api/internal/transport/http/response"
)

type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactIn struct {
	FullName       string `json:"fullName"       binding:"required,max=128"`
	Email          string `json:"email"          binding:"required,email"`
	Phone          string `json:"phone"          binding:"omitempty,max=32"`
	Birthday       string `json:"birthday"       binding:"omitempty"` // YYYY-MM-DD
	AdditionalInfo string `json:"additionalInfo" binding:"omitempty,max=4096"`
	Favorite       bool   `json:"favorite"`
}

func (in *contactIn) toModel(c *gin.Context) (*domain.Contact, bool) {
	m := &domain.Contact{
		FullName:       in.FullName,
		Email:          in.Email,
		Phone:          in.Phone,
		AdditionalInfo: in.AdditionalInfo,
		Favorite:       in.Favorite,
	}
	if in.Birthday != "" {
		bd, err := time.Parse(time.DateOnly, in.Birthday)
		if err != nil {
			resp.Abort(c, resp.CodeUnprocessable, "birthday must be YYYY-MM-DD")
			return nil, false
		}
		m.Birthday = &bd
	}
	return m, true
}

func (h *ContactHandler) Create(c *gin.Context) {
	var in contactIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	m, ok := in.toModel(c)
	if !ok {
		return
	}
	out, err := h.contacts.Create(c.Request.Context(), mdw.CurrentUser(c).ID, m)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusCreated, out)
}

func (h *ContactHandler) List(c *gin.Context) {
	f := domain.ListFilter{
		Offset: atoiDefault(c.Query("offset"), 0),
		Limit:  atoiDefault(c.Query("limit"), 10),
	}
	if v, ok := c.GetQuery("favorite"); ok {
		fav := v == "true" || v == "1"
		f.Favorite = &fav
	}
	out, err := h.contacts.List(c.Request.Context(), mdw.CurrentUser(c).ID, f)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, out)
}

func (h *ContactHandler) Search(c *gin.Context) {
	f := domain.ListFilter{
		Name:   c.Query("name"),
		Email:  c.Query("email"),
		Phone:  c.Query("phone"),
		Offset: atoiDefault(c.Query("offset"), 0),
		Limit:  atoiDefault(c.Query("limit"), 10),
	}
	if f.Name == "" && f.Email == "" && f.Phone == "" {
		resp.Abort(c, resp.CodeUnprocessable, "at least one of name/email/phone is required")
		return
	}
	out, err := h.contacts.Search(c.Request.Context(), mdw.CurrentUser(c).ID, f)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, out)
}

func (h *ContactHandler) Birthdays(c *gin.Context) {
	days := atoiDefault(c.Query("days"), 7)
	out, err := h.contacts.UpcomingBirthdays(c.Request.Context(), mdw.CurrentUser(c).ID, days)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, out)
}

func (h *ContactHandler) Get(c *gin.Context) {
	out, err := h.contacts.Get(c.Request.Context(), mdw.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, out)
}

func (h *ContactHandler) Update(c *gin.Context) {
	var in contactIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	m, ok := in.toModel(c)
	if !ok {
		return
	}
	out, err := h.contacts.Update(c.Request.Context(), mdw.CurrentUser(c).ID, c.Param("id"), m)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, out)
}

type favoriteIn struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

func (h *ContactHandler) SetFavorite(c *gin.Context) {
	var in favoriteIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	out, err := h.contacts.SetFavorite(c.Request.Context(), mdw.CurrentUser(c).ID, c.Param("id"), *in.Favorite)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, out)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), mdw.CurrentUser(c).ID, c.Param("id")); err != nil {
		resp.AbortErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
