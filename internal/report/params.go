package report

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Pagination struct {
	Page    int
	PerPage int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ParsePagination reads page/per_page query params, default 10 per page.
func ParsePagination(c *fiber.Ctx) Pagination {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.Query("per_page", "10"))
	if err != nil || perPage < 1 {
		perPage = 10
	}
	if perPage > 200 {
		perPage = 200
	}
	return Pagination{Page: page, PerPage: perPage}
}

func PagedResponse(items interface{}, p Pagination, total int64) fiber.Map {
	totalPages := total / int64(p.PerPage)
	if total%int64(p.PerPage) != 0 {
		totalPages++
	}
	return fiber.Map{
		"items":       items,
		"page":        p.Page,
		"per_page":    p.PerPage,
		"total":       total,
		"total_pages": totalPages,
	}
}

// ApplyDateRange narrows q to rows whose column falls in the inclusive
// start_date..end_date range ("2006-01-02"). Open-ended ranges are allowed; invalid
// dates are ignored, matching the old report screens.
func ApplyDateRange(q *gorm.DB, column string, c *fiber.Ctx) *gorm.DB {
	if start, err := time.ParseInLocation("2006-01-02", c.Query("start_date"), time.Local); err == nil {
		q = q.Where(column+" >= ?", start)
	}
	if end, err := time.ParseInLocation("2006-01-02", c.Query("end_date"), time.Local); err == nil {
		// inclusive end: anything before the next midnight
		q = q.Where(column+" < ?", end.AddDate(0, 0, 1))
	}
	return q
}

// LikeFilter builds a case-insensitive substring match usable on both Postgres and
// the sqlite test database.
func LikeFilter(q *gorm.DB, pattern string, columns ...string) *gorm.DB {
	if pattern == "" {
		return q
	}
	like := "%" + pattern + "%"
	where := ""
	args := make([]interface{}, 0, len(columns))
	for i, col := range columns {
		if i > 0 {
			where += " OR "
		}
		where += "LOWER(" + col + ") LIKE LOWER(?)"
		args = append(args, like)
	}
	return q.Where(where, args...)
}
