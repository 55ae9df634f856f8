package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"todoapp/config"
	"todoapp/infras/otel"
	"todoapp/internal/client/auth"
	"todoapp/internal/client/gateway"
	"todoapp/internal/client/session"
	"todoapp/internal/domains/todo/model/dto"
	"todoapp/shared/constant"
	"todoapp/shared/failure"
	"todoapp/shared/logger"
	"todoapp/shared/validator"
	"todoapp/transport/http/response"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const flashCookieName = "flash"

// Handler serves the browser-facing pages of the todo client. All todo
// mutations go through the gateway with the session's access token;
// the pages themselves hold no todo state.
type Handler struct {
	gateway      gateway.Todo
	sessionStore session.Store
	auth         auth.Authenticator
	config       *config.Config
	otel         otel.Otel
	templates    *template.Template
}

func New(
	todoGateway gateway.Todo,
	sessionStore session.Store,
	authenticator auth.Authenticator,
	cfg *config.Config,
	ot otel.Otel,
) Handler {
	return Handler{
		gateway:      todoGateway,
		sessionStore: sessionStore,
		auth:         authenticator,
		config:       cfg,
		otel:         ot,
		templates:    template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/login", handler.auth.Login)
	router.Get("/callback", handler.auth.Callback)
	router.Get("/logout", handler.auth.Logout)

	router.Group(func(routerGroup chi.Router) {
		routerGroup.Use(handler.sessionStore.Middleware)
		routerGroup.Get("/", handler.Home)
		routerGroup.Get("/todo", handler.TodoList)
		routerGroup.Post("/todo", handler.AddTodo)
		routerGroup.Post("/todo/update", handler.UpdateTodo)
		routerGroup.Post("/todo/delete", handler.DeleteTodo)
		routerGroup.Get("/users/me", handler.Me)
	})
}

type homeView struct {
	ClientName string
	Username   string
	Claims     map[string]any
}

func (handler *Handler) Home(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)

		return
	}

	handler.render(w, "home", homeView{
		ClientName: handler.config.Client.ClientName,
		Username:   sess.Username,
		Claims:     sess.Claims,
	})
}

type todoView struct {
	Todos []dto.TodoResponse
	Flash string
}

func (handler *Handler) TodoList(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)

		return
	}

	todos, err := handler.gateway.List(r.Context(), sess.AccessToken)
	if err != nil {
		handler.renderError(w, err)

		return
	}

	handler.render(w, "todo", todoView{
		Todos: todos,
		Flash: handler.readFlash(w, r),
	})
}

// addTodoForm mirrors the constraints the todo service enforces so bad
// input bounces back to the form instead of round-tripping as a 400.
type addTodoForm struct {
	Description string `validate:"required,notblank,max=255"`
}

func (handler *Handler) AddTodo(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)

		return
	}

	form := addTodoForm{Description: r.FormValue("description")}
	if err := validator.ValidateStruct(&form); err != nil {
		handler.setFlash(w, "Description must not be blank and must not exceed "+
			strconv.Itoa(constant.DescriptionMaxLength)+" characters.")
		http.Redirect(w, r, "/todo", http.StatusFound)

		return
	}

	completed := false

	_, err := handler.gateway.Create(r.Context(), sess.AccessToken, dto.CreateTodoRequest{
		Description: form.Description,
		Completed:   &completed,
	})
	if err != nil {
		handler.renderError(w, err)

		return
	}

	http.Redirect(w, r, "/todo", http.StatusFound)
}

func (handler *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)

		return
	}

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		handler.setFlash(w, "Invalid todo id.")
		http.Redirect(w, r, "/todo", http.StatusFound)

		return
	}

	completed := r.FormValue("completed") == "true"

	_, err = handler.gateway.Update(r.Context(), sess.AccessToken, id, dto.UpdateTodoRequest{
		ID:          &id,
		Description: r.FormValue("description"),
		Completed:   &completed,
	})
	if err != nil {
		handler.renderError(w, err)

		return
	}

	http.Redirect(w, r, "/todo", http.StatusFound)
}

func (handler *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)

		return
	}

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		handler.setFlash(w, "Invalid todo id.")
		http.Redirect(w, r, "/todo", http.StatusFound)

		return
	}

	if err := handler.gateway.Delete(r.Context(), sess.AccessToken, id); err != nil {
		handler.renderError(w, err)

		return
	}

	http.Redirect(w, r, "/todo", http.StatusFound)
}

// Me reports the logged-in user's name as JSON.
func (handler *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		response.WithError(w, failure.Unauthorized("No active session"))

		return
	}

	response.WithJSON(w, http.StatusOK, map[string]string{"name": sess.Username})
}

type errorView struct {
	Status int
	Reason string
}

// renderError shows the upstream status and reason when the todo
// service rejected the call, and a generic page for everything else.
func (handler *Handler) renderError(w http.ResponseWriter, err error) {
	view := errorView{}
	status := http.StatusInternalServerError

	var f *failure.Failure
	if errors.As(err, &f) {
		view.Status = f.Code
		view.Reason = f.Message
		status = f.Code
	} else {
		logger.ErrorWithStack(err)
	}

	w.Header().Set(constant.RequestHeaderContentType, "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := handler.templates.ExecuteTemplate(w, "error", view); err != nil {
		logger.ErrorWithStack(err)
	}
}

func (handler *Handler) render(w http.ResponseWriter, name string, view any) {
	w.Header().Set(constant.RequestHeaderContentType, "text/html; charset=utf-8")

	if err := handler.templates.ExecuteTemplate(w, name, view); err != nil {
		logger.ErrorWithStack(err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (handler *Handler) setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/todo",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) readFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/todo",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Discarding malformed flash cookie")

		return ""
	}

	return message
}
