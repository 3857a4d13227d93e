package main

import (
	"github.com/dgstore/fulfillment/internal/app"
	"github.com/dgstore/fulfillment/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
