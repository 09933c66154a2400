package routes

import "github.com/gofiber/fiber/v2"

// chain prepends mw to h. Middleware is attached per route because a group with an empty prefix
// would install it for every later route sharing the parent prefix.
func chain(mw []fiber.Handler, h ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+len(h))
	out = append(out, mw...)
	return append(out, h...)
}
