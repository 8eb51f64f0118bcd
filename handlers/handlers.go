package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"pricingradar/forecast"
	"pricingradar/matcher"
	"pricingradar/models"
	"pricingradar/repository"
	"pricingradar/scheduler"
	"pricingradar/services"
)

type Handlers struct {
	scans       *services.ScanService
	products    *repository.ProductRepository
	history     *repository.HistoryRepository
	taskManager *scheduler.TaskManager

	targetVariance float64
	startedAt      time.Time
}

func NewHandlers(scans *services.ScanService, products *repository.ProductRepository, history *repository.HistoryRepository, targetVariance float64) *Handlers {
	h := &Handlers{
		scans:          scans,
		products:       products,
		history:        history,
		targetVariance: targetVariance,
		startedAt:      time.Now(),
	}

	// Scans hold a browser session; keep them serialized.
	h.taskManager = scheduler.NewTaskManager(scans.Scan, 1)

	return h
}

// Close stops the async task manager.
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// GetTaskManager returns the async task manager
func (h *Handlers) GetTaskManager() *scheduler.TaskManager {
	return h.taskManager
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Status reports uptime and task manager statistics.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
		"tasks":  h.taskManager.GetStats(),
	})
}

// Scan runs a synchronous market scan. Optional query params:
// marketplace=medsgo|watsons narrows the scan, force=true bypasses the
// scrape cache.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	marketplace := models.Marketplace(r.URL.Query().Get("marketplace"))
	force := r.URL.Query().Get("force") == "true"

	result, err := h.scans.Scan(marketplace, force)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ScanAsync queues a scan task and returns immediately with its id.
func (h *Handlers) ScanAsync(w http.ResponseWriter, r *http.Request) {
	marketplace := models.Marketplace(r.URL.Query().Get("marketplace"))
	task := h.taskManager.SubmitScan(marketplace)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTask returns the state of an async scan task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	task, exists := h.taskManager.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Comparison returns the current comparison groups, alerts and market
// statistics. Served from the scrape cache when fresh, so the dashboard
// can poll it cheaply.
func (h *Handlers) Comparison(w http.ResponseWriter, r *http.Request) {
	result, err := h.scans.Scan("", false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build comparison")
		return
	}

	var medsgo, watsons []models.Listing
	for _, l := range result.Listings {
		switch l.Marketplace {
		case models.MarketplaceMedsGo:
			medsgo = append(medsgo, l)
		case models.MarketplaceWatsons:
			watsons = append(watsons, l)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups":     result.Groups,
		"pairs":      matcher.Pair(medsgo, watsons),
		"alerts":     result.Alerts,
		"stats":      result.Stats,
		"scanned_at": result.ScannedAt,
	})
}

// GetProducts lists all known products.
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetProducts()
	if err != nil {
		log.Printf("Failed to get products: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get products")
		return
	}

	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetPriceHistory returns the price history for one product, most recent
// first. Optional limit query param, default 30.
func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	limit := repository.DefaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	history, err := h.history.GetHistory(id, limit)
	if err != nil {
		log.Printf("Failed to get price history for product %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to get price history")
		return
	}

	if history == nil {
		history = []models.PricePoint{}
	}
	writeJSON(w, http.StatusOK, history)
}

// Forecast returns a pricing suggestion for one product based on its
// competitor price history. The our_price query param is the operator's
// current price for the matching product; 0 means not set.
func (h *Handlers) Forecast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.products.GetProductByID(id)
	if err != nil {
		log.Printf("Failed to get product %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	var ourPrice float64
	if p := r.URL.Query().Get("our_price"); p != "" {
		if parsed, err := strconv.ParseFloat(p, 64); err == nil {
			ourPrice = parsed
		}
	}

	points, err := h.history.GetHistory(id, repository.DefaultHistoryLimit)
	if err != nil {
		log.Printf("Failed to get price history for product %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to get price history")
		return
	}

	// Oldest first for the regression.
	prices := make([]float64, 0, len(points))
	for i := len(points) - 1; i >= 0; i-- {
		prices = append(prices, points[i].Price)
	}

	suggestion := forecast.Suggest(ourPrice, prices, h.targetVariance)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"product":    product,
		"points":     len(prices),
		"suggestion": suggestion,
	})
}

// Backfill generates synthetic price history for all known products.
func (h *Handlers) Backfill(w http.ResponseWriter, r *http.Request) {
	result, err := h.scans.BackfillAll()
	if err != nil {
		log.Printf("Backfill failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Backfill failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
