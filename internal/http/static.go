package http

import (
	"embed"
	"io/fs"
	stdhttp "net/http"
)

//go:embed static/*
var staticFiles embed.FS

func staticHandler() stdhttp.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.FS(sub)))
}

func faviconHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	icon, err := staticFiles.ReadFile("static/favicon.svg")
	if err != nil || len(icon) == 0 {
		w.WriteHeader(stdhttp.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if r.Method == stdhttp.MethodHead {
		return
	}
	_, _ = w.Write(icon)
}
