package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/classpilot/classpilot-api/internal/api/http"
	auth "github.com/classpilot/classpilot-api/internal/auth/middleware"
	"github.com/classpilot/classpilot-api/internal/automation"
	"github.com/classpilot/classpilot-api/internal/config"
	"github.com/classpilot/classpilot-api/internal/db"
	"github.com/classpilot/classpilot-api/internal/feedback"
	"github.com/classpilot/classpilot-api/internal/form"
	"github.com/classpilot/classpilot-api/internal/grading"
	"github.com/classpilot/classpilot-api/internal/gworkspace"
	"github.com/classpilot/classpilot-api/internal/gworkspace/calendar"
	"github.com/classpilot/classpilot-api/internal/gworkspace/classroom"
	"github.com/classpilot/classpilot-api/internal/gworkspace/drive"
	"github.com/classpilot/classpilot-api/internal/gworkspace/forms"
	"github.com/classpilot/classpilot-api/internal/gworkspace/gmail"
	"github.com/classpilot/classpilot-api/internal/llm"
	"github.com/classpilot/classpilot-api/internal/quiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh)

	// --- Model ---
	model := llm.NewClient(cfg.ModelAPIKey, cfg.ModelBaseURL, cfg.ModelName)

	// --- Google Workspace clients (one OAuth client, five surfaces) ---
	gc, err := gworkspace.NewHTTPClient(context.Background(), gworkspace.Credentials{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RefreshToken: cfg.GoogleRefreshToken,
		TokenURL:     cfg.GoogleTokenURL,
	})
	if err != nil {
		log.Fatalf("google credentials: %v", err)
	}
	formsAPI := forms.NewClient(gc, "")
	classAPI := classroom.NewClient(gc, "")
	calAPI := calendar.NewClient(gc, "")
	mailAPI := gmail.NewClient(gc, "")
	driveAPI := drive.NewClient(gc, "")

	// --- Pipeline services ---
	gen := quiz.NewGenerator(model)
	mat := form.NewMaterializer(formsAPI)
	col := grading.NewCollector(formsAPI, nil)
	synth := feedback.NewSynthesizer(model)

	// --- Automation ---
	var sched *automation.Scheduler
	if cfg.AutomationEnabled {
		sched = automation.NewScheduler(automation.Config{
			PollInterval:     cfg.PollInterval,
			ReminderLeadTime: cfg.ReminderLeadTime,
			SummaryDelay:     cfg.SummaryDelay,
		}, calAPI, classAPI, mailAPI, driveAPI, model, automation.NewSQLQueue(dbh))
		if err := sched.Start(); err != nil {
			log.Fatalf("automation start: %v", err)
		}
		defer sched.Stop()
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, cfg.AdminUser, cfg.AdminPassHash))

	// Protected API: the single-operator teacher surface.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Post("/documents/extract", api.ExtractDocumentHandler())
		pr.Post("/documents/summarize", api.SummarizeDocumentHandler(model))
		pr.Post("/documents/question", api.QuestionDocumentHandler(model))

		pr.Post("/quizzes/generate", api.GenerateQuizHandler(gen, store))
		pr.Get("/quizzes/{quizID}", api.GetQuizHandler(store))
		pr.Post("/quizzes/{quizID}/materialize", api.MaterializeQuizHandler(store, mat))
		pr.Get("/quizzes/{quizID}/forms", api.ListQuizFormsHandler(store))

		pr.Get("/forms/{formID}/grades", api.GetGradesHandler(col, synth))
		pr.Get("/forms/{formID}/grades.csv", api.GetGradesCSVHandler(col, synth))

		pr.Get("/courses", api.ListCoursesHandler(classAPI))
		pr.Post("/courses", api.CreateCourseHandler(classAPI, mailAPI))
		pr.Get("/courses/{courseID}/students", api.ListStudentsHandler(classAPI))
		pr.Post("/courses/{courseID}/coursework", api.CreateCourseWorkHandler(classAPI))
		pr.Post("/courses/{courseID}/announcements", api.PostAnnouncementHandler(classAPI))

		pr.Post("/schedule/class", api.ScheduleClassHandler(calAPI, sched))
		pr.Get("/schedule/upcoming", api.ListUpcomingHandler(calAPI))

		pr.Get("/automation/status", api.AutomationStatusHandler(sched))
		pr.Post("/automation/run", api.AutomationRunHandler(sched))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s, automation=%t)", cfg.HTTPAddr, cfg.DBDriver, cfg.AutomationEnabled)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
