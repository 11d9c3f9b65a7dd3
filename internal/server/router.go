package server

import (
	"net/http"

	"github.com/fabworks/shoptrack/internal/config"
	"github.com/fabworks/shoptrack/internal/handlers"
	"github.com/fabworks/shoptrack/internal/httpx"
	"github.com/fabworks/shoptrack/internal/numbering"
	"github.com/fabworks/shoptrack/internal/services"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Perform a lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	numbers := numbering.NewService(db, cfg.DRNumberFloor)
	activity := services.NewDBActivityLogger(db)
	convSvc := services.NewConversionService(db, numbers, activity)
	matSvc := services.NewMaterialOrderService(db, numbers, activity)

	nh := handlers.NewNumberingHandler(db, numbers, activity)
	mux.Handle("/numbers", get(nh.List))
	mux.Handle("/numbers/next", get(nh.Next))
	mux.Handle("/numbers/stats", get(nh.Stats))
	mux.Handle("/numbers/void", post(nh.Void))

	eh := handlers.NewEstimateHandler(db, convSvc)
	mux.Handle("/estimates", get(eh.Get))
	mux.Handle("/estimates/convert", post(eh.Convert))
	mux.Handle("/estimates/reset-conversion", post(eh.ResetConversion))

	wh := handlers.NewWorkOrderHandler(db)
	mux.Handle("/workorders", get(wh.Get))
	mux.Handle("/workorders/list", get(wh.List))

	mh := handlers.NewMaterialHandler(matSvc)
	mux.Handle("/materials/order", post(mh.Order))

	ah := handlers.NewActivityHandler(db)
	mux.Handle("/activity", get(ah.List))

	return mux
}

func get(h http.HandlerFunc) http.Handler  { return methodOnly(http.MethodGet, h) }
func post(h http.HandlerFunc) http.Handler { return methodOnly(http.MethodPost, h) }

func methodOnly(method string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		h(w, r)
	})
}
