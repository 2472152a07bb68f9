package controllers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/kento-cell/MyHobbyCoffee/feed"
	"github.com/kento-cell/MyHobbyCoffee/middlewares"
	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type OrderController struct {
	DB  *gorm.DB
	Hub *feed.Hub
}

func NewOrderController(db *gorm.DB, hub *feed.Hub) *OrderController {
	return &OrderController{DB: db, Hub: hub}
}

// optionalTime tells an absent field apart from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("roasted_at: %w", err)
	}
	if raw == "" {
		o.Value = nil
		return nil
	}
	for _, layout := range []string{time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			o.Value = &t
			return nil
		}
	}
	return fmt.Errorf("roasted_at: invalid time %q", raw)
}

type updateOrderInput struct {
	ID        uint         `json:"id" binding:"required"`
	Status    *string      `json:"status"`
	RoastID   *string      `json:"roast_id"`
	RoastedAt optionalTime `json:"roasted_at"`
}

// GetAllOrders lists orders with their items, newest first.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	q := oc.DB.WithContext(c.Request.Context()).Preload("Items").Order("created_at desc, id desc")
	if status := c.Query("status"); status != "" {
		if !models.ValidOrderStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown status %q", status))
			return
		}
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		utils.ErrorLogger.Errorf("list orders: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to load orders"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var order models.Order
	if err := oc.DB.WithContext(c.Request.Context()).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
			return
		}
		utils.ErrorLogger.Errorf("get order %d: %v", id, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Server error"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrder sets status and roast details. Changing roasted_at or the roast
// recomputes the tasting window from the roast profile.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	var input updateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if input.Status != nil && !models.ValidOrderStatus(*input.Status) {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown status %q", *input.Status))
		return
	}

	var order models.Order
	err := oc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, input.ID).Error; err != nil {
			return err
		}

		if input.Status != nil {
			order.Status = *input.Status
		}
		if input.RoastID != nil {
			if *input.RoastID == "" {
				order.RoastID = nil
			} else {
				roastID := *input.RoastID
				order.RoastID = &roastID
			}
		}
		if input.RoastedAt.Set {
			order.RoastedAt = input.RoastedAt.Value
		}
		if input.RoastedAt.Set || input.RoastID != nil {
			if err := applyTasteWindow(tx, &order); err != nil {
				return err
			}
		}

		return tx.Select("status", "roast_id", "roasted_at", "taste_start", "taste_end", "expiry_date", "updated_at").
			Save(&order).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	if err != nil {
		utils.ErrorLogger.Errorf("update order %d: %v", input.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to update order"))
		return
	}

	utils.InfoLogger.Infof("order %d updated by %s: status=%s", order.ID, c.GetString(middlewares.ContextAdminEmail), order.Status)
	if oc.Hub != nil {
		oc.Hub.BroadcastOrderUpdated(order)
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// applyTasteWindow derives the window from roasted_at, or from the order date
// when the roast date is cleared. An unknown roast clears the window.
func applyTasteWindow(tx *gorm.DB, order *models.Order) error {
	order.TasteStart, order.TasteEnd, order.ExpiryDate = nil, nil, nil
	if order.RoastID == nil {
		return nil
	}

	var profile models.RoastProfile
	err := tx.Where("id = ?", *order.RoastID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load roast profile: %w", err)
	}

	base := order.CreatedAt
	if order.RoastedAt != nil {
		base = *order.RoastedAt
	}
	start, end, expiry := profile.Window(base)
	order.TasteStart, order.TasteEnd, order.ExpiryDate = &start, &end, &expiry
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

var orderCSVHeader = []string{"id", "created_at", "email", "status", "total_amount", "roast_id", "roasted_at", "taste_start", "taste_end", "expiry_date", "items"}

// writeOrdersCSV writes a BOM-prefixed CSV of orders to dst.
func writeOrdersCSV(dst io.Writer, orders []models.Order) error {
	if _, err := io.WriteString(dst, "\ufeff"); err != nil {
		return err
	}
	w := csv.NewWriter(dst)
	if err := w.Write(orderCSVHeader); err != nil {
		return err
	}
	for _, o := range orders {
		items := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, fmt.Sprintf("%s %dg x%d", it.ProductName, it.Grams, it.Qty))
		}
		roastID := ""
		if o.RoastID != nil {
			roastID = *o.RoastID
		}
		err := w.Write([]string{
			strconv.FormatUint(uint64(o.ID), 10),
			o.CreatedAt.Format(time.RFC3339),
			o.Email,
			o.Status,
			strconv.FormatInt(o.TotalAmount, 10),
			roastID,
			formatDate(o.RoastedAt),
			formatDate(o.TasteStart),
			formatDate(o.TasteEnd),
			formatDate(o.ExpiryDate),
			strings.Join(items, " / "),
		})
		if err != nil {
			return fmt.Errorf("order %d: %w", o.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}

// ExportOrdersCSV streams every order as CSV with a UTF-8 BOM so spreadsheet
// apps read the Japanese product names correctly.
func (oc *OrderController) ExportOrdersCSV(c *gin.Context) {
	var orders []models.Order
	if err := oc.DB.WithContext(c.Request.Context()).Preload("Items").Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		utils.ErrorLogger.Errorf("export orders: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to export orders"))
		return
	}

	var buf bytes.Buffer
	if err := writeOrdersCSV(&buf, orders); err != nil {
		utils.ErrorLogger.Errorf("write orders csv: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to export orders"))
		return
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
