package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// APIResponse represents a standard JSON response structure.
type APIResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	resp := APIResponse{Data: payload}
	if payload == nil {
		resp.Message = http.StatusText(status)
	}
	write(w, status, resp)
}

// RespondMessage sends a payload together with a human-readable message.
func RespondMessage(w http.ResponseWriter, status int, message string, payload interface{}) {
	write(w, status, APIResponse{Message: message, Data: payload})
}

// RespondError sends a JSON error response with the given status code and error message.
func RespondError(w http.ResponseWriter, status int, message string) {
	write(w, status, APIResponse{Error: message})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

// DecodeJSON reads a JSON body into dst and runs struct validation on it.
// The returned error is safe to show to the client.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request payload: %v", err)
	}
	return ValidateStruct(dst)
}

// PathInt reads an integer mux path variable.
func PathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

// QueryInt reads an optional integer query parameter; absent means 0.
func QueryInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}
