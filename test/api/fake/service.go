/*
Copyright 2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fake is an in-memory stand-in for the user management service.
// It answers the same endpoints with the same statuses and messages, so the
// client, the cases and the sequencer can be exercised without a backend.
package fake

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Defaults used when Options leave them empty.
const (
	DefaultSecretKey = "ROADTOSDET"
	DefaultPassword  = "1234"
	AgentEmail       = "agent@roadtocareer.net"
	AdminEmail       = "admin@roadtocareer.net"

	tokenLifetime = time.Hour
	firstUserID   = 1000
)

var errUnauthorized = errors.New("unauthorized")

// Account is a user known to the service.
type Account struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	NID         string `json:"nid"`
	Role        string `json:"role"`
}

type Options struct {
	// SecretKey must be presented in X-Auth-Secret-Key on create and delete.
	SecretKey string
	// SigningKey signs issued tokens.
	SigningKey []byte
	// Accounts seed the service. When empty an agent and an admin exist.
	Accounts []Account
}

// Service is the fake.
type Service struct {
	lock       sync.Mutex
	accounts   map[string]*Account
	order      []string
	nextID     int
	secretKey  string
	signingKey []byte
	requests   int
}

// New creates a fake service.
func New(options Options) *Service {
	s := &Service{
		accounts:   map[string]*Account{},
		nextID:     firstUserID,
		secretKey:  options.SecretKey,
		signingKey: options.SigningKey,
	}

	if s.secretKey == "" {
		s.secretKey = DefaultSecretKey
	}

	if len(s.signingKey) == 0 {
		s.signingKey = []byte("fake-signing-key")
	}

	accounts := options.Accounts
	if len(accounts) == 0 {
		accounts = []Account{
			{Name: "Agent", Email: AgentEmail, Password: DefaultPassword, PhoneNumber: "01502500001", Role: "Agent"},
			{Name: "Admin", Email: AdminEmail, Password: DefaultPassword, PhoneNumber: "01502500002", Role: "Admin"},
		}
	}

	for i := range accounts {
		s.add(accounts[i])
	}

	return s
}

// SecretKey returns the key privileged requests must present.
func (s *Service) SecretKey() string {
	return s.secretKey
}

// Len returns the number of accounts.
func (s *Service) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.accounts)
}

// Requests returns the number of requests served.
func (s *Service) Requests() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.requests
}

// Lookup returns a copy of the account with id.
func (s *Service) Lookup(id string) (Account, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return Account{}, false
	}

	return *account, true
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.count)

	r.Route("/user", func(r chi.Router) {
		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/list", s.list)
			r.Get("/search/id/{id}", s.search)

			r.Group(func(r chi.Router) {
				r.Use(s.privileged)

				r.Post("/create", s.create)
				r.Delete("/delete/{id}", s.delete)
			})
		})
	})

	return r
}

// add must be called with the lock held or before the service is shared.
func (s *Service) add(account Account) Account {
	account.ID = s.nextID
	s.nextID++

	id := strconv.Itoa(account.ID)
	s.accounts[id] = &account
	s.order = append(s.order, id)

	return account
}

func (s *Service) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.requests++
		s.lock.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Service) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			writeMessage(w, http.StatusUnauthorized, "No Token Found!")
			return
		}

		if err := s.verify(token); err != nil {
			writeMessage(w, http.StatusUnauthorized, "Token expired!")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) privileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Secret-Key") != s.secretKey {
			writeMessage(w, http.StatusUnauthorized, "Authentication failed, secret key is invalid")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) issue(account *Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":   strconv.Itoa(account.ID),
		"email": account.Email,
		"role":  account.Role,
		"exp":   jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func (s *Service) verify(token string) error {
	_, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %w", errUnauthorized, err)
	}

	return nil
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.lock.Lock()
	account := s.findByEmail(credentials.Email)
	s.lock.Unlock()

	if account == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	if account.Password != credentials.Password {
		writeMessage(w, http.StatusUnauthorized, "Password incorrect")
		return
	}

	token, err := s.issue(account)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"role":    account.Role,
	})
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	limit := -1

	if value := r.URL.Query().Get("limit"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "Invalid limit")
			return
		}

		limit = n
	}

	s.lock.Lock()

	users := make([]map[string]any, 0, len(s.order))

	for _, id := range s.order {
		if limit >= 0 && len(users) == limit {
			break
		}

		users = append(users, publicView(s.accounts[id]))
	}

	total := len(s.order)

	s.lock.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User list",
		"count":   total,
		"users":   users,
	})
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	var account Account

	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if account.Name == "" || account.Email == "" || account.Password == "" || account.PhoneNumber == "" {
		writeMessage(w, http.StatusBadRequest, "Name, email, password and phone number are required")
		return
	}

	s.lock.Lock()

	if s.findByEmail(account.Email) != nil {
		s.lock.Unlock()
		writeMessage(w, http.StatusConflict, "User already exists")

		return
	}

	created := s.add(account)

	s.lock.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created",
		"user":    publicView(&created),
	})
}

func (s *Service) search(w http.ResponseWriter, r *http.Request) {
	account, ok := s.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User found",
		"user":    publicView(&account),
	})
}

func (s *Service) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.lock.Lock()

	if _, ok := s.accounts[id]; !ok {
		s.lock.Unlock()
		writeMessage(w, http.StatusNotFound, "User not found")

		return
	}

	delete(s.accounts, id)

	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.lock.Unlock()

	writeMessage(w, http.StatusOK, "User deleted successfully")
}

// findByEmail must be called with the lock held.
func (s *Service) findByEmail(email string) *Account {
	for _, account := range s.accounts {
		if strings.EqualFold(account.Email, email) {
			return account
		}
	}

	return nil
}

// publicView omits the password.
func publicView(account *Account) map[string]any {
	return map[string]any{
		"id":           account.ID,
		"name":         account.Name,
		"email":        account.Email,
		"phone_number": account.PhoneNumber,
		"nid":          account.NID,
		"role":         account.Role,
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
