package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	apperrors "github.com/umalmyha/contacts-api/internal/errors"
	"github.com/umalmyha/contacts-api/internal/model"
	"github.com/umalmyha/contacts-api/internal/service"
)

const (
	msgServerError     = "Server Error"
	msgCreateFailed    = "Error creating contact"
	msgContactNotFound = "Contact not found"
	msgUpdateFailed    = "Error updating contact"
	msgDeleteFailed    = "Error deleting contact"
)

type identifier struct {
	ID string `json:"id" validate:"required,objectid"`
}

// castError is raised when contact field holds object or array
type castError struct {
	kind string
}

func (e *castError) Error() string {
	return "cannot cast " + e.kind + " to string"
}

// castString accepts any scalar json value and keeps its string form, null becomes empty
type castString string

func (s *castString) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch val := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = castString(val)
	case bool:
		*s = castString(strconv.FormatBool(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return err
		}
		*s = castString(strconv.FormatFloat(f, 'f', -1, 64))
	case map[string]any:
		return &castError{kind: "object"}
	default:
		return &castError{kind: "array"}
	}
	return nil
}

type contactPayload struct {
	FirstName castString `json:"firstName"`
	LastName  castString `json:"lastName"`
	Email     castString `json:"email"`
	Phone     castString `json:"phone"`
}

func (p *contactPayload) contact(id string) *model.Contact {
	return &model.Contact{
		ID:        id,
		FirstName: string(p.FirstName),
		LastName:  string(p.LastName),
		Email:     string(p.Email),
		Phone:     string(p.Phone),
	}
}

// ContactHTTPHandler is http handler for contacts endpoint
type ContactHTTPHandler struct {
	contactSvc service.ContactService
}

// NewContactHTTPHandler builds new ContactHTTPHandler
func NewContactHTTPHandler(contactSvc service.ContactService) *ContactHTTPHandler {
	return &ContactHTTPHandler{contactSvc: contactSvc}
}

// GetAll gets all contacts
// @Summary     Get all contacts
// @Description Returns all stored contacts
// @Tags        contacts
// @Produce     json
// @Success     200 {array}  model.Contact
// @Failure     500 {string} string "Server Error"
// @Router      /contacts [get]
func (h *ContactHTTPHandler) GetAll(c echo.Context) error {
	contacts, err := h.contactSvc.FindAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, msgServerError).SetInternal(err)
	}
	return c.JSON(http.StatusOK, contacts)
}

// Get gets contact
// @Summary     Get single contact by id
// @Description Returns single contact with provided id
// @Tags        contacts
// @Produce     json
// @Param       id  path     string true "Contact id"
// @Success     200 {object} model.Contact
// @Failure     404 {string} string "Contact not found"
// @Failure     500 {string} string "Server Error"
// @Router      /contacts/{id} [get]
func (h *ContactHTTPHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if err := c.Validate(&identifier{ID: id}); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, msgContactNotFound).SetInternal(err)
	}

	contact, err := h.contactSvc.FindByID(c.Request().Context(), id)
	if err != nil {
		var notFoundErr *apperrors.EntryNotFoundErr
		if errors.As(err, &notFoundErr) {
			return echo.NewHTTPError(http.StatusNotFound, msgContactNotFound).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, msgServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, contact)
}

// Post creates new contact
// @Summary     New contact
// @Description Creates new contact, all fields are optional, scalar values are stored as strings
// @Tags        contacts
// @Accept      json
// @Produce     json
// @Param       contact body     contactPayload true "Contact data"
// @Success     201     {object} model.Contact
// @Failure     400     {string} string "Error creating contact"
// @Router      /contacts [post]
func (h *ContactHTTPHandler) Post(c echo.Context) error {
	var p contactPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgCreateFailed).SetInternal(err)
	}

	contact, err := h.contactSvc.Create(c.Request().Context(), p.contact(""))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgCreateFailed).SetInternal(err)
	}

	return c.JSON(http.StatusCreated, contact)
}

// Put replaces contact fields
// @Summary     Update contact
// @Description Replaces all fields of existing contact, omitted fields become empty
// @Tags        contacts
// @Accept      json
// @Produce     json
// @Param       id      path     string         true "Contact id"
// @Param       contact body     contactPayload true "Contact data"
// @Success     200     {object} model.Contact
// @Failure     400     {string} string "Error updating contact"
// @Failure     404     {string} string "Contact not found"
// @Failure     500     {string} string "Error updating contact"
// @Router      /contacts/{id} [put]
func (h *ContactHTTPHandler) Put(c echo.Context) error {
	var p contactPayload
	if err := c.Bind(&p); err != nil {
		var castErr *castError
		if errors.As(err, &castErr) {
			return echo.NewHTTPError(http.StatusInternalServerError, msgUpdateFailed).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, msgUpdateFailed).SetInternal(err)
	}

	contact, err := h.contactSvc.Update(c.Request().Context(), p.contact(c.Param("id")))
	if err != nil {
		var notFoundErr *apperrors.EntryNotFoundErr
		if errors.As(err, &notFoundErr) {
			return echo.NewHTTPError(http.StatusNotFound, msgContactNotFound).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, msgUpdateFailed).SetInternal(err)
	}

	return c.JSON(http.StatusOK, contact)
}

// DeleteByID deletes contact
// @Summary     Delete contact by id
// @Description Deletes contact with provided id, missing contact is not reported
// @Tags        contacts
// @Param       id  path   string true "Contact id"
// @Success     204 "Successful status code"
// @Failure     500 {string} string "Error deleting contact"
// @Router      /contacts/{id} [delete]
func (h *ContactHTTPHandler) DeleteByID(c echo.Context) error {
	if err := h.contactSvc.DeleteByID(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, msgDeleteFailed).SetInternal(err)
	}

	return c.NoContent(http.StatusNoContent)
}
