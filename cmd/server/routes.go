package main

import "net/http"

// Routes builds the service mux.
func (rt *Runtime) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := rt.Images.Handler()
	handler.SetMaxUpload(rt.config.Storage.MaxUploadSizeBytes())
	handler.Register(mux)

	return mux
}
