package session

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/poplarplanet/SmileWritingQuiz/internal/models"
)

// TokenHeader carries the opaque session token on every request after
// registration.
const TokenHeader = "X-Session-Token"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the wizard endpoints onto the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/register", h.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/quiz/start", h.Start).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/quiz/current", h.Current).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/quiz/answer", h.Answer).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/quiz/hint", h.Hint).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/quiz/submit", h.Submit).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/quiz/restart", h.Restart).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/user/profile", h.Profile).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/user/history", h.History).Methods("GET", "OPTIONS")
}

type registerRequest struct {
	Name string `json:"name"`
}

type startRequest struct {
	Level string `json:"level"`
	Week  string `json:"week"`
	Day   string `json:"day"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type hintRequest struct {
	QuestionNumber int `json:"question_number"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	session, err := h.service.Register(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": session.Token,
		"user":  session.User,
	})
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	selector := models.QuizSelector{Level: req.Level, Week: req.Week, Day: req.Day}
	question, err := h.service.Start(r.Context(), token(r), selector)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"question": question})
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	question, answer, err := h.service.CurrentQuestion(token(r))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"question": question,
		"answer":   answer,
	})
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.service.SelectAnswer(token(r), req.Answer); err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "answer recorded"})
}

func (h *Handler) Hint(w http.ResponseWriter, r *http.Request) {
	var req hintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	hint, err := h.service.UseHint(token(r), req.QuestionNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"hint": hint})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	next, result, err := h.service.Submit(token(r))
	if err != nil {
		writeError(w, err)
		return
	}

	if result != nil {
		json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"question": next})
}

func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Restart(token(r)); err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile(r.Context(), token(r))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(user)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context(), token(r))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(history)
}

func token(r *http.Request) string {
	return r.Header.Get(TokenHeader)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrRegistrationFailed):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	case errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrInvalidSelector),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInvalidQuestion),
		errors.Is(err, ErrNoQuestions):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Unexpected handler error: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
