package echoServer

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"bookborrow/app/echoServer/controller/book"
	"bookborrow/app/echoServer/controller/borrow"
	"bookborrow/app/echoServer/controller/payment"
	jwtutil "bookborrow/util/jwt"
)

type C struct {
	Book      *book.Controller
	Borrow    *borrow.Controller
	Payment   *payment.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// Public
	pub := e.Group("/v1")
	pub.POST("/payment/xendit", c.Payment.HandleXendit)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(ctx echo.Context, token string) (interface{}, error) {
			return jwtutil.Parse(token, c.JWTSecret)
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	}))

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)
	auth.POST("/books", c.Book.Create)
	auth.PATCH("/books/:id", c.Book.Update)
	auth.DELETE("/books/:id", c.Book.Delete)

	// Borrows
	auth.POST("/borrows", c.Borrow.Open)
	auth.GET("/borrows", c.Borrow.List)
	auth.GET("/borrows/:id", c.Borrow.Get)
	auth.POST("/borrows/:id/return", c.Borrow.Close)
	auth.GET("/borrows/:id/payments", c.Payment.ListByBorrow)
}
