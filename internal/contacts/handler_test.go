package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestCreateContact_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := NewHandler(repo, nil)

	reqBody := CreateContactRequest{
		Name:    "Amina Hassan",
		Email:   "amina@example.com",
		Subject: "Opening hours",
		Message: "Is the clinic open on Fridays?",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var msg ContactMessage
	if err := json.NewDecoder(w.Body).Decode(&msg); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if msg.Name != reqBody.Name {
		t.Errorf("expected name %s, got %s", reqBody.Name, msg.Name)
	}
	if msg.ID == "" {
		t.Error("expected generated id")
	}
}

func TestCreateContact_RequiresContactDetail(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), nil)

	body, _ := json.Marshal(CreateContactRequest{
		Name:    "Amina Hassan",
		Message: "No way to reach me",
	})
	req := httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateContact_RequiresMessage(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), nil)

	body, _ := json.Marshal(CreateContactRequest{
		Name:  "Amina Hassan",
		Email: "amina@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/contacts", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListAndDeleteContacts(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := NewHandler(repo, nil)

	msg, err := repo.Create(context.Background(), &CreateContactRequest{
		Name:    "Amina Hassan",
		Email:   "amina@example.com",
		Message: "Is the clinic open on Fridays?",
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/admin/contacts", handler.List)
	r.Delete("/admin/contacts/{id}", handler.Delete)

	req := httptest.NewRequest(http.MethodGet, "/admin/contacts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("expected 1 message, got %d", resp.Count)
	}

	req = httptest.NewRequest(http.MethodDelete, "/admin/contacts/"+msg.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/admin/contacts/"+msg.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for repeat delete, got %d", w.Code)
	}
}
