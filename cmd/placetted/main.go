package main

import (
	"flag"

	"github.com/placette/messaging/internal/home"
	"github.com/placette/messaging/internal/server"
	"go.uber.org/fx"
)

func main() {
	dataDirFlag := flag.String("data-dir", "", "data directory (overrides PLACETTE_HOME and ~/.placette)")
	listenFlag := flag.String("listen", "", "listen address (overrides config)")
	flag.Parse()

	dataDir := *dataDirFlag
	if dataDir == "" {
		dataDir = home.BaseDir()
	}

	app := fx.New(
		server.Module(server.Params{
			DataDir:    dataDir,
			ListenAddr: *listenFlag,
		}),
	)

	app.Run()
}
