package report

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func parseFor(t *testing.T, target string) Pagination {
	t.Helper()
	var got Pagination
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return c.SendStatus(fiber.StatusOK)
	})
	if _, err := app.Test(httptest.NewRequest("GET", target, nil)); err != nil {
		t.Fatalf("request: %v", err)
	}
	return got
}

func TestParsePaginationDefaults(t *testing.T) {
	p := parseFor(t, "/")
	if p.Page != 1 || p.PerPage != 10 {
		t.Fatalf("defaults = %+v, want page 1 per_page 10", p)
	}
	if p.Offset() != 0 {
		t.Fatalf("offset = %d, want 0", p.Offset())
	}
}

func TestParsePaginationRejectsGarbage(t *testing.T) {
	p := parseFor(t, "/?page=zero&per_page=-4")
	if p.Page != 1 || p.PerPage != 10 {
		t.Fatalf("garbage input = %+v, want defaults", p)
	}
}

func TestParsePaginationCapsPerPage(t *testing.T) {
	p := parseFor(t, "/?page=3&per_page=9999")
	if p.PerPage != 200 {
		t.Fatalf("per_page = %d, want capped 200", p.PerPage)
	}
	if p.Offset() != 400 {
		t.Fatalf("offset = %d, want 400", p.Offset())
	}
}
