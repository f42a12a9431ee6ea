package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/app/service"
)

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the view for the caller's role. Normal users may
// filter and sort the store list with the same parameters as /stores.
// GET /api/dashboard
func (ctrl *DashboardController) GetDashboard(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var query StoreListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	view, err := ctrl.dashboardService.Dashboard(session, query.toServiceQuery())
	if err != nil {
		respondServiceError(c, err, "build dashboard")
		return
	}

	c.JSON(http.StatusOK, view)
}
