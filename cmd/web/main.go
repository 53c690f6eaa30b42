package main

import (
	_ "embed"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/tomz197/platformer/internal/config"
	"github.com/tomz197/platformer/internal/level"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var htmlPage string

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "web"})

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")

	lvl := level.Default()
	if path := config.GetEnv("LEVEL_FILE", ""); path != "" {
		loaded, err := level.Load(path)
		if err != nil {
			logger.Fatal("load level", "err", err)
		}
		lvl = loaded
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           newRouter(sshHost, lvl),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting web server", "addr", "http://"+srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

// newRouter serves the landing page and a health check.
func newRouter(sshHost string, lvl *level.Level) *mux.Router {
	page := strings.NewReplacer(
		"{{.SSHHost}}", sshHost,
		"{{.LevelName}}", lvl.Name,
		"{{.Coins}}", fmt.Sprint(len(lvl.Coins)),
	).Replace(htmlPage)

	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)
	return r
}
