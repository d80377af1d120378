package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/genzes/internal/buildinfo"
	"github.com/dmitrijs2005/genzes/internal/server"
	"github.com/dmitrijs2005/genzes/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(log.Writer())

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
