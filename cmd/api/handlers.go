package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ledgerstack/erp-core/internal/application"
	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/pkg/api"
	"github.com/ledgerstack/erp-core/pkg/errors"
	"github.com/ledgerstack/erp-core/pkg/logging"
	"github.com/ledgerstack/erp-core/pkg/metrics"
	"github.com/ledgerstack/erp-core/pkg/middleware"
)

const ownerHeader = "X-Owner-ID"

// requireOwner rejects requests without an owner identity. Every aggregate in
// the system is scoped to the owner that created it.
func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(ownerHeader) == "" {
			middleware.AbortWithAppError(c, errors.ErrUnauthorized("missing "+ownerHeader+" header"))
			return
		}
		c.Next()
	}
}

func ownerID(c *gin.Context) string {
	return c.GetHeader(ownerHeader)
}

func recordProductionHandler(service *application.ProductionApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.RecordProductionCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)

		result, err := service.Record(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordProductionEvent(cmd.UnitName)
		switch {
		case result.Warning != "":
			m.RecordStockReconciliation("failed")
		case result.Reconciliation == nil:
		case result.Reconciliation.IsNew:
			m.RecordStockReconciliation("staged")
		case strings.HasPrefix(result.Reconciliation.Location, domain.StagingLocation):
			m.RecordStockReconciliation("appended")
		default:
			m.RecordStockReconciliation("incremented")
		}

		c.JSON(http.StatusCreated, result)
	}
}

func listProductionHandler(service *application.ProductionApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var (
			events interface{}
			err    error
		)
		if date := c.Query("date"); date != "" {
			events, err = service.ListByDate(c.Request.Context(), ownerID(c), date)
		} else {
			events, err = service.ListByOwner(c.Request.Context(), ownerID(c))
		}
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func createSubpartHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateSubpartCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)

		dto, err := service.CreateSubpart(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusCreated, dto)
	}
}

func listSubpartsHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		dtos, err := service.ListSubparts(c.Request.Context(), ownerID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dtos)
	}
}

func getSubpartHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		dto, err := service.GetSubpart(c.Request.Context(), ownerID(c), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dto)
	}
}

func updateSubpartHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateSubpartCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)
		cmd.SubpartID = c.Param("id")

		dto, err := service.UpdateSubpart(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dto)
	}
}

func deleteSubpartHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteSubpart(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
			responder.RespondWithError(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createSKUHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateSKUCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)

		dto, err := service.CreateSKU(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusCreated, dto)
	}
}

func listSKUsHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		dtos, err := service.ListSKUs(c.Request.Context(), ownerID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dtos)
	}
}

func listStagingSKUsHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		dtos, err := service.ListStagingSKUs(c.Request.Context(), ownerID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dtos)
	}
}

func getSKUHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		dto, err := service.GetSKU(c.Request.Context(), ownerID(c), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dto)
	}
}

func updateSKUHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateSKUCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)
		cmd.SKUID = c.Param("id")

		dto, err := service.UpdateSKU(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dto)
	}
}

func deleteSKUHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteSKU(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
			responder.RespondWithError(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func getAvailabilityHandler(service *application.AvailabilityApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		topN := 0
		if raw := c.Query("top"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				responder.RespondBadRequest("top must be a non-negative integer")
				return
			}
			topN = parsed
		}

		dtos, err := service.GetAvailability(c.Request.Context(), application.GetAvailabilityQuery{
			OwnerID: ownerID(c),
			TopN:    topN,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dtos)
	}
}

func postInvoiceHandler(service *application.LedgerApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.PostInvoiceCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)

		dto, err := service.PostInvoice(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordLedgerEntryPosted(dto.Direction, cmd.Kind)
		c.JSON(http.StatusCreated, dto)
	}
}

func postQuickEntryHandler(service *application.LedgerApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.PostQuickEntryCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)

		result, err := service.PostQuickEntry(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		if result.Entry != nil {
			m.RecordLedgerEntryPosted(result.Entry.Direction, cmd.EntryType)
		}
		c.JSON(http.StatusCreated, result)
	}
}

func listQuickEntriesHandler(service *application.LedgerApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		entries, err := service.ListQuickEntries(c.Request.Context(), ownerID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func getStatementHandler(service *application.LedgerApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		account := c.Query("account")
		if account == "" {
			responder.RespondBadRequest("account query parameter is required")
			return
		}

		statement, err := service.GetStatement(c.Request.Context(), application.GetStatementQuery{
			OwnerID:   ownerID(c),
			Account:   account,
			Direction: c.Query("direction"),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, statement)
	}
}

func getOutstandingHandler(service *application.LedgerApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		outstanding, err := service.GetOutstanding(c.Request.Context(), application.GetOutstandingQuery{
			OwnerID:   ownerID(c),
			Direction: c.Query("direction"),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, outstanding)
	}
}

func getOutstandingSummaryHandler(service *application.LedgerApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		summary, err := service.GetOutstandingSummary(c.Request.Context(), ownerID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func createOrderHandler(service *application.OrderApplicationService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CreateOrderCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)

		dto, err := service.CreateOrder(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		m.RecordOrderCreated(dto.Status)
		c.JSON(http.StatusCreated, dto)
	}
}

func listOrdersHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		dtos, err := service.ListOrders(c.Request.Context(), ownerID(c))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dtos)
	}
}

func getOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		dto, err := service.GetOrder(c.Request.Context(), ownerID(c), c.Param("id"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dto)
	}
}

func updateOrderLineHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateOrderLineCommand
		if appErr := api.BindAndValidate(c, &cmd); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		cmd.OwnerID = ownerID(c)
		cmd.OrderID = c.Param("id")

		dto, err := service.UpdateOrderLine(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}
		c.JSON(http.StatusOK, dto)
	}
}

func deleteOrderHandler(service *application.OrderApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteOrder(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
			responder.RespondWithError(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
