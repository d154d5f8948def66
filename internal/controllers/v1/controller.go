// Package v1 implements the v1 HTTP API of the analytics engine.
package v1

import (
	"github.com/envelope-zero/analytics/internal/allocation"
	"github.com/envelope-zero/analytics/internal/axis"
	"github.com/envelope-zero/analytics/internal/budget"
	"github.com/envelope-zero/analytics/internal/report"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Controller holds the services the API handlers work with.
type Controller struct {
	DB       *gorm.DB
	Axes     *axis.Registry
	Ledger   *allocation.DBLedger
	Engine   *allocation.Engine
	Tracker  *budget.Tracker
	Reporter *report.Reporter
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	RegisterRootRoutes(r)
	co.RegisterAxisRoutes(r.Group("/axes"))
	co.RegisterValueRoutes(r.Group("/values"))
	co.RegisterLedgerRoutes(r.Group("/ledger-entries"))
	co.RegisterTaggedEntryRoutes(r.Group("/tagged-entries"))
	co.RegisterRuleRoutes(r.Group("/rules"))
	RegisterFormulaRoutes(r.Group("/formulas"))
	co.RegisterBudgetRoutes(r.Group("/budgets"))
	co.RegisterAlertRoutes(r.Group("/alerts"))
	co.RegisterReportRoutes(r.Group("/reports"))
	co.RegisterExportRoutes(r.Group("/export"))
}
