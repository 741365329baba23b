package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	cataloguc "github.com/lebarbier/lebarbier-api/internal/usecase/catalog"
)

type EmployeeHandler struct {
	employees *cataloguc.Employees
}

func NewEmployeeHandler(employees *cataloguc.Employees) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

type CreateEmployeeRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	Specialties string    `json:"specialties" binding:"max=255"`
}

func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.employees.List(c.Request.Context(), principal(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, employees)
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.employees.Create(c.Request.Context(), req.UserID, req.Specialties)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Employé ajouté.", e)
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	e, err := h.employees.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, e)
}

func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	e, err := h.employees.Deactivate(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Employé désactivé.", e)
}
