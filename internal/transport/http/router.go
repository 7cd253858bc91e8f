package httptransport

import (
	"net/http"

	"certdesk/internal/config"
	"certdesk/internal/filestore"
	"certdesk/internal/httpx"
	"certdesk/internal/service"
	"certdesk/internal/storage/providers"

	"github.com/gorilla/mux"
)

func Router(allProviders *providers.Providers, files filestore.FileStore, cfg *config.Config) *mux.Router {
	authService := service.NewAuthService(allProviders.UserProvider, cfg.JWT.Secret)
	templateService := service.NewTemplateService(allProviders.TemplateProvider, files)
	responseService := service.NewResponseService(
		allProviders.ResponseProvider,
		allProviders.TemplateProvider,
		allProviders.UserProvider,
		files,
	)

	authHandler := NewAuthHandlers(authService)
	templateHandler := NewTemplateHandlers(templateService)
	responseHandler := NewResponseHandlers(responseService)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(httpx.Protected(cfg.JWT.Secret))

	protected.HandleFunc("/auth/role", authHandler.ChangeRole).Methods(http.MethodPatch)
	protected.HandleFunc("/auth/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)

	templates := protected.PathPrefix("/templates").Subrouter()
	templates.HandleFunc("", templateHandler.CreateTemplate).Methods(http.MethodPost)
	templates.HandleFunc("", templateHandler.GetTemplates).Methods(http.MethodGet)
	templates.HandleFunc("/download/{filename}", responseHandler.DownloadDocument).Methods(http.MethodGet)
	templates.HandleFunc("/doc-html/{filename}", responseHandler.GetDocumentHTML).Methods(http.MethodGet)
	templates.HandleFunc("/{id:[0-9]+}", templateHandler.GetTemplate).Methods(http.MethodGet)
	templates.HandleFunc("/{id:[0-9]+}", templateHandler.UpdateTemplate).Methods(http.MethodPut)
	templates.HandleFunc("/{id:[0-9]+}", templateHandler.DeleteTemplate).Methods(http.MethodDelete)
	templates.HandleFunc("/{id:[0-9]+}/fields", templateHandler.GetFields).Methods(http.MethodGet)

	responses := protected.PathPrefix("/responses").Subrouter()
	responses.HandleFunc("", responseHandler.Fill).Methods(http.MethodPost)
	responses.HandleFunc("/details", responseHandler.GetAllWithDetails).Methods(http.MethodGet)
	responses.HandleFunc("/details/approved", responseHandler.GetApproved).Methods(http.MethodGet)
	responses.HandleFunc("/by-student/{studentId:[0-9]+}", responseHandler.GetByStudent).Methods(http.MethodGet)
	responses.HandleFunc("/{id:[0-9]+}", responseHandler.GetResponse).Methods(http.MethodGet)
	responses.HandleFunc("/{id:[0-9]+}", responseHandler.UpdateResponse).Methods(http.MethodPut)
	responses.HandleFunc("/{id:[0-9]+}", responseHandler.DeleteResponse).Methods(http.MethodDelete)
	responses.HandleFunc("/{id:[0-9]+}/status", responseHandler.ChangeStatus).Methods(http.MethodPatch)

	return router
}
