package main

import (
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/flonle/diyredis/app/diyredis"
)

func main() {
	port := flag.Int("port", 6379, "TCP port to listen on")
	dir := flag.String("dir", "", "directory reported by CONFIG GET dir (no file is read from it)")
	dbFilename := flag.String("dbfilename", "", "filename reported by CONFIG GET dbfilename (no file is read)")
	verbose := flag.BoolP("verbose", "v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	server := diyredis.NewServer(*port)
	server.ConfigDir = *dir
	server.ConfigDBFilename = *dbFilename

	if err := server.Start(); err != nil {
		logrus.WithError(err).Error("failed to start server")
		os.Exit(1)
	}
	os.Exit(0)
}
