package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/metrics"
	"github.com/99minutos/auth-service/internal/core/ports"
)

type UserHandler struct {
	roleService ports.RoleService
}

func NewUserHandler(roleService ports.RoleService) *UserHandler {
	return &UserHandler{roleService: roleService}
}

type updateRoleRequest struct {
	UserID string `json:"userId" form:"userId"`
	Role   string `json:"role" form:"role"`
}

// UpdateUserRole changes another account's role. Only SUPER_ADMIN callers
// are allowed.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Cookie  header    string             true  "user=<credential>"
// @Param        body    body      updateRoleRequest  true  "Target user and new role"
// @Success      200     {object}  response{data=domain.User}
// @Failure      400     {object}  response
// @Failure      401     {object}  response
// @Failure      404     {object}  response
// @Failure      500     {object}  response
// @Router       /updateUserRole [put]
func (h *UserHandler) UpdateUserRole(c echo.Context) (err error) {
	defer func() { metrics.RoleUpdatesTotal.WithLabelValues(outcome(err)).Inc() }()

	// An unreadable body counts as an empty one so the credential checks
	// still decide the response first.
	var req updateRoleRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		req = updateRoleRequest{}
	}

	user, err := h.roleService.UpdateUserRole(c.Request().Context(), ctxIdentity(c), ports.UpdateRoleInput{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: "User role updated successfully",
		Data:    user,
	})
}
