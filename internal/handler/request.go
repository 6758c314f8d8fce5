package handler

import (
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	appvalidator "github.com/fairyhunter13/slot-reservation-system/internal/validator"
)

// bind parses the JSON body into req and validates it. When ok is false the
// 400 response has been written and err is what the handler returns.
func bind(c *fiber.Ctx, v *validator.Validate, req any) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, badRequest(c, "invalid request body")
	}
	if err := v.Struct(req); err != nil {
		return false, badRequest(c, appvalidator.Message(err))
	}
	return true, nil
}

// numberParam reads a positive integer route parameter.
func numberParam(c *fiber.Ctx, name string) (int, bool) {
	n, err := strconv.Atoi(c.Params(name))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// emailParam reads an email route parameter, decoding %40 and friends.
func emailParam(c *fiber.Ctx) (string, bool) {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil || email == "" {
		return "", false
	}
	return email, true
}
