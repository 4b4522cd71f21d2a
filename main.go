package main

import (
	"canvas-templates/api"
	"canvas-templates/auth"
	"canvas-templates/config"
	"canvas-templates/core"
	"canvas-templates/fakeapi"
	sessionHandlers "canvas-templates/handlers/session"
	templateHandlers "canvas-templates/handlers/templates"
	sessionMiddleware "canvas-templates/middleware"
	"canvas-templates/stores"
	"canvas-templates/templates"
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func setupRouter(sess *auth.Session, store *templates.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Route("/session", func(r chi.Router) {
		r.Get("/", sessionHandlers.HandleStatus(sess))
		r.Post("/login", sessionHandlers.HandleLogin(sess))
		r.Post("/logout", sessionHandlers.HandleLogout(sess))
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", templateHandlers.HandleList(store))

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.RequireSession(sess))
			r.Post("/", templateHandlers.HandleCreate(store))
			r.Post("/refresh", templateHandlers.HandleRefresh(store))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", templateHandlers.HandleGet(store))
				r.Post("/", templateHandlers.HandleUpdate(store))
				r.Patch("/", templateHandlers.HandleUpdate(store))
				r.Delete("/", templateHandlers.HandleDelete(store))
			})
		})
	})

	return r
}

// startFakeAPI serves the in-process upstream on a loopback port and
// returns its base URL. The default credentials are its only account.
func startFakeAPI(cfg config.Config) (string, *http.Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	users := map[string]string{}
	if cfg.DefaultEmail != "" {
		users[cfg.DefaultEmail] = cfg.DefaultPassword
	}
	fake := fakeapi.NewServer(fakeapi.Options{
		Secret: []byte(cfg.FakeAPISecret),
		Users:  users,
	})

	srv := &http.Server{Handler: fake}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start fake api").Error(err)
		}
	}()

	baseURL := "http://" + ln.Addr().String()
	logrus.WithField("base_url", baseURL).Info("Serving fake canvas template API")
	return baseURL, srv, nil
}

func waitForShutdown(tokenStore core.TokenStore, servers ...*http.Server) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signalC

	logrus.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Warn("Server did not shut down cleanly")
		}
	}
	if err := stores.CloseStore(tokenStore); err != nil {
		logrus.WithError(err).Warn("Failed to close token store")
	}
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	useFakeAPI := flag.Bool("fake-api", false, "Serve an in-process fake of the remote API and use it as upstream.")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	ctx := context.Background()
	cfg := config.Load()

	var fakeServer *http.Server
	if *useFakeAPI {
		cfg.BaseURL, fakeServer, err = startFakeAPI(cfg)
		if err != nil {
			logrus.Fatalf("Failed to start fake API: %v", err)
		}
	}

	tokenStore, err := stores.GetStore(ctx, cfg.Storage)
	if err != nil {
		logrus.Fatal(err)
	}

	client := api.New(cfg.BaseURL, nil)
	email, password := cfg.Credentials()
	sess, err := auth.NewSession(ctx, client, tokenStore, core.Credentials{Email: email, Password: password})
	if err != nil {
		logrus.Fatal(err)
	}
	store := templates.NewStore(client.WithTokens(sess), sess)

	if sess.IsAuthenticated() {
		if _, err := store.FetchAll(ctx); err != nil {
			logrus.WithError(err).Warn("Initial template fetch failed")
		}
	}

	r := setupRouter(sess, store)
	srv := &http.Server{Addr: *listenAddress, Handler: r}

	logrus.WithFields(logrus.Fields{
		"addr":     *listenAddress,
		"upstream": cfg.BaseURL,
	}).Info("starting server")
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(tokenStore, srv, fakeServer)
}
