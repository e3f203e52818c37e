package main

import "github.com/tbourn/go-crypto-backend/internal/cli"

// @title                       Crypto Conversion API
// @version                     1.0
// @description                 Converts crypto amounts into two fiat currencies, keeps per-user history and favorites.
// @BasePath                    /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter your Bearer token in the format: `Bearer {token}`
func main() {
	cli.Execute()
}
