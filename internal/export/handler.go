package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"glua-backend/internal/database"
	"glua-backend/internal/models"
	"glua-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook creates a single-sheet workbook with a bold, centered header row
// and a frozen pane so the headers stay visible while scrolling.
func buildWorkbook(sheet string, headers []string) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, Split: true, YSplit: 1})
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

func sendWorkbook(c *fiber.Ctx, f *excelize.File, filename string) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not build workbook")
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(buf.Bytes())
}

// GET /api/export/bin-report.xlsx
//
// Same filters as the bin report endpoint but without pagination, the whole
// filtered ledger goes into the file.
func BinReportExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Sale{}).
			Joins("LEFT JOIN clients ON clients.id = sales.client_id")
		q = report.LikeFilter(q, c.Query("q"), "sales.drug_sold", "sales.batch_no", "clients.name")
		q = report.ApplyDateRange(q, "sales.date_sold", c)

		var sales []models.Sale
		if err := q.
			Preload("Client").Preload("Seller").
			Order("sales.date_sold DESC, sales.id DESC").
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load sales")
		}

		sheet := "Bin Report"
		f, err := buildWorkbook(sheet, []string{
			"Date Sold", "Drug", "Batch No", "Client", "Seller", "Quantity", "Remaining",
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build workbook")
		}

		for i, s := range sales {
			client, seller := "", ""
			if s.Client != nil {
				client = s.Client.Name
			}
			if s.Seller != nil {
				seller = s.Seller.Username
			}
			writeRow(f, sheet, i+2, []interface{}{
				s.DateSold.Format("2006-01-02 15:04:05"),
				s.DrugSold, s.BatchNo, client, seller,
				s.Quantity, s.RemainingQuantity,
			})
		}

		return sendWorkbook(c, f, "bin-report.xlsx")
	}
}

// GET /api/export/bin-card.xlsx - the cannister issuance ledger
func BinCardExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.IssuedCannister{}).
			Joins("LEFT JOIN users ON users.id = issued_cannisters.staff_on_duty_id").
			Joins("LEFT JOIN clients ON clients.id = issued_cannisters.client_id")
		q = report.LikeFilter(q, c.Query("q"),
			"issued_cannisters.name", "issued_cannisters.batch_no", "clients.name", "users.username")
		q = report.ApplyDateRange(q, "issued_cannisters.date_issued", c)

		var issued []models.IssuedCannister
		if err := q.
			Preload("StaffOnDuty").Preload("ReturnedBy").Preload("Client").
			Order("issued_cannisters.date_issued DESC, issued_cannisters.id DESC").
			Find(&issued).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load issued cannisters")
		}

		sheet := "Bin Card"
		f, err := buildWorkbook(sheet, []string{
			"Date Issued", "Cannister", "Batch No", "Client", "Staff On Duty",
			"Quantity", "Balance", "Returned", "Date Returned", "Returned By",
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build workbook")
		}

		for i, ic := range issued {
			client, returnedBy, dateReturned := "", "", ""
			if ic.Client != nil {
				client = ic.Client.Name
			}
			if ic.ReturnedBy != nil {
				returnedBy = ic.ReturnedBy.Username
			}
			if ic.DateReturned != nil {
				dateReturned = ic.DateReturned.Format("2006-01-02 15:04:05")
			}
			returned := "No"
			if ic.Returned {
				returned = "Yes"
			}
			writeRow(f, sheet, i+2, []interface{}{
				ic.DateIssued.Format("2006-01-02 15:04:05"),
				ic.Name, ic.BatchNo, client, ic.StaffOnDuty.Username,
				ic.Quantity, ic.Balance, returned, dateReturned, returnedBy,
			})
		}

		return sendWorkbook(c, f, "bin-card.xlsx")
	}
}

// GET /api/export/top-sold.csv
func TopSoldCSVHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := report.TopSold(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load top sold drugs")
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"drug_sold", "total_quantity"}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not write CSV")
		}
		for _, r := range rows {
			record := []string{r.DrugSold, strconv.FormatFloat(r.TotalQuantity, 'f', -1, 64)}
			if err := w.Write(record); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not write CSV")
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not write CSV")
		}

		c.Set("Content-Type", "text/csv")
		c.Set("Content-Disposition", "attachment; filename=top-sold.csv")
		return c.Send(buf.Bytes())
	}
}
