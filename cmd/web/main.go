// @title           Job Board API
// @version         1.0
// @description     Job postings, companies and applications.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "jobboard_backend/internal/app"

func main() {
	app.Run()
}
