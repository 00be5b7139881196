package adminControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/heiphin7/bloom-boutique-catalog/services"
)

// GET /admin/orders/export
func ExportOrdersToExcel(orders services.OrderRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := orders.All(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"OrderRef", "UserID", "CustomerName", "CustomerEmail",
			"City", "Street", "Subtotal", "Shipping", "Total",
			"Status", "Items", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range all {
			row := sheet.AddRow()

			row.AddCell().SetValue(o.OrderRef)
			row.AddCell().SetValue(o.UserID)
			row.AddCell().SetValue(o.CustomerName)
			row.AddCell().SetValue(o.CustomerEmail)
			row.AddCell().SetValue(o.ShippingAddress.City)
			row.AddCell().SetValue(o.ShippingAddress.Street)
			row.AddCell().SetValue(o.Subtotal)
			row.AddCell().SetValue(o.ShippingCost)
			row.AddCell().SetValue(o.Total)
			row.AddCell().SetValue(string(o.Status))

			var lines []string
			for _, item := range o.Items {
				lines = append(lines, item.ProductName+" x"+strconv.Itoa(item.Quantity))
			}
			row.AddCell().SetValue(strings.Join(lines, "; "))

			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
