package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"petlink/internal/apiclient"
	"petlink/internal/notify"
	"petlink/pkg/domain"
	"petlink/pkg/store"
)

// fakeMarketplace is an in-memory stand-in for the marketplace HTTP API.
type fakeMarketplace struct {
	t *testing.T

	mu        sync.Mutex
	users     map[int64]*domain.User
	passwords map[int64]string
	nextUser  int64
	orders    map[int64]domain.Order
	nextOrder int64
	messages  map[int64][]domain.Message
	nextMsg   int64
	proposals map[int64]domain.Proposal
	nextProp  int64
	calls     []string

	getUserStatus         int
	deleteUserStatus      int
	failDeleteMessages    bool
	failListOrders        bool
	messageGates          map[int64]chan struct{}
	lastOrderPayload      map[string]any
	lastProfilePatch      map[string]any
	lastMessageSenderSeen int64
	omitSenderOnSend      bool
}

func newFakeMarketplace(t *testing.T) (*fakeMarketplace, *httptest.Server) {
	t.Helper()
	f := &fakeMarketplace{
		t:            t,
		users:        map[int64]*domain.User{},
		passwords:    map[int64]string{},
		nextUser:     41,
		orders:       map[int64]domain.Order{},
		nextOrder:    100,
		messages:     map[int64][]domain.Message{},
		nextMsg:      500,
		proposals:    map[int64]domain.Proposal{},
		nextProp:     900,
		messageGates: map[int64]chan struct{}{},
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeMarketplace) addUser(username, password string, role domain.UserRole) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUser++
	u := &domain.User{ID: f.nextUser, Username: username, Email: username + "@example.com", Role: role}
	f.users[u.ID] = u
	f.passwords[u.ID] = password
	return u
}

func (f *fakeMarketplace) addOrder(o domain.Order) domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextOrder++
	o.ID = f.nextOrder
	if o.Status == "" {
		o.Status = domain.OrderOpen
	}
	f.orders[o.ID] = o
	return o
}

func (f *fakeMarketplace) addMessage(orderID, senderID int64, content string) domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMsg++
	m := domain.Message{ID: f.nextMsg, OrderID: orderID, SenderID: senderID, Content: content}
	if u, ok := f.users[senderID]; ok {
		m.Sender = &domain.UserPublic{ID: u.ID, Username: u.Username}
	}
	f.messages[orderID] = append(f.messages[orderID], m)
	return m
}

// gateMessages blocks message listings of orderID until the returned func runs.
func (f *fakeMarketplace) gateMessages(orderID int64) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.messageGates[orderID] = ch
	f.mu.Unlock()
	var once sync.Once
	release := func() { once.Do(func() { close(ch) }) }
	f.t.Cleanup(release)
	return release
}

func (f *fakeMarketplace) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func mintToken(t *testing.T, sub any) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func pathID(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path || rest == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	return id, err == nil
}

func (f *fakeMarketplace) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	path := r.URL.Path
	if path != "/auth/login" && !(path == "/users/" && r.Method == http.MethodPost) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
	}

	switch {
	case path == "/auth/login":
		f.login(w, r)
	case strings.HasPrefix(path, "/users/"):
		f.serveUsers(w, r)
	case strings.HasPrefix(path, "/care_orders/"):
		f.serveOrders(w, r)
	case strings.HasPrefix(path, "/messages/"):
		f.serveMessages(w, r)
	case strings.HasPrefix(path, "/proposals/"):
		f.serveProposals(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeMarketplace) login(w http.ResponseWriter, r *http.Request) {
	var body struct{ Username, Password string }
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	var found *domain.User
	for id, u := range f.users {
		if u.Username == body.Username && f.passwords[id] == body.Password {
			found = u
		}
	}
	f.mu.Unlock()
	if found == nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": mintToken(f.t, strconv.FormatInt(found.ID, 10)),
		"token_type":   "bearer",
	})
}

func (f *fakeMarketplace) serveUsers(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/users/" && r.Method == http.MethodPost {
		var body struct {
			Username, Email, Password string
			Role                      domain.UserRole
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		for _, u := range f.users {
			if u.Username == body.Username {
				f.mu.Unlock()
				writeDetail(w, http.StatusBadRequest, "Username already registered")
				return
			}
		}
		f.mu.Unlock()
		u := f.addUser(body.Username, body.Password, body.Role)
		f.mu.Lock()
		u.Email = body.Email
		out := *u
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
		return
	}

	id, ok := pathID(r.URL.Path, "/users/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, exists := f.users[id]
	switch r.Method {
	case http.MethodGet:
		if f.getUserStatus != 0 {
			writeDetail(w, f.getUserStatus, "Could not validate credentials")
			return
		}
		if !exists {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		writeJSON(w, http.StatusOK, u)
	case http.MethodPatch:
		if !exists {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastProfilePatch = body
		if v, ok := body["username"].(string); ok {
			u.Username = v
		}
		if v, ok := body["email"].(string); ok {
			u.Email = v
		}
		if v, ok := body["role"].(string); ok {
			u.Role = domain.UserRole(v)
		}
		if v, ok := body["password"].(string); ok {
			f.passwords[id] = v
		}
		writeJSON(w, http.StatusOK, u)
	case http.MethodDelete:
		if f.deleteUserStatus != 0 {
			writeDetail(w, f.deleteUserStatus, http.StatusText(f.deleteUserStatus))
			return
		}
		if !exists {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		var body struct{ Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if f.passwords[id] != body.Password {
			writeDetail(w, http.StatusForbidden, "Incorrect password")
			return
		}
		delete(f.users, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeMarketplace) serveOrders(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/care_orders/" {
		switch r.Method {
		case http.MethodGet:
			f.mu.Lock()
			fail := f.failListOrders
			var out []domain.Order
			status := domain.OrderStatus(r.URL.Query().Get("status"))
			for _, o := range f.orders {
				if status == "" || o.Status == status {
					out = append(out, o)
				}
			}
			f.mu.Unlock()
			if fail {
				writeDetail(w, http.StatusInternalServerError, "database unavailable")
				return
			}
			if out == nil {
				out = []domain.Order{}
			}
			writeJSON(w, http.StatusOK, out)
		case http.MethodPost:
			body := map[string]any{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.lastOrderPayload = body
			f.mu.Unlock()
			desc, _ := body["description"].(string)
			o := domain.Order{
				Title:       fmt.Sprint(body["title"]),
				Description: &desc,
				StartDate:   strings.TrimSuffix(fmt.Sprint(body["start_date"]), "Z"),
				EndDate:     strings.TrimSuffix(fmt.Sprint(body["end_date"]), "Z"),
				Status:      domain.OrderStatus(fmt.Sprint(body["status"])),
				OwnerID:     42,
			}
			writeJSON(w, http.StatusOK, f.addOrder(o))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, ok := pathID(r.URL.Path, "/care_orders/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, exists := f.orders[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, "Care order not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, o)
	case http.MethodPatch:
		var patch domain.OrderPatch
		_ = json.NewDecoder(r.Body).Decode(&patch)
		if patch.Title != nil {
			o.Title = *patch.Title
		}
		if patch.Description != nil {
			o.Description = patch.Description
		}
		if patch.StartDate != nil {
			o.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			o.EndDate = *patch.EndDate
		}
		if patch.Status != nil {
			o.Status = *patch.Status
		}
		f.orders[id] = o
		writeJSON(w, http.StatusOK, o)
	case http.MethodDelete:
		delete(f.orders, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeMarketplace) serveMessages(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/messages/" {
		switch r.Method {
		case http.MethodGet:
			orderID, _ := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
			f.mu.Lock()
			gate := f.messageGates[orderID]
			f.mu.Unlock()
			if gate != nil {
				<-gate
			}
			f.mu.Lock()
			out := append([]domain.Message{}, f.messages[orderID]...)
			f.mu.Unlock()
			writeJSON(w, http.StatusOK, out)
		case http.MethodPost:
			var body struct {
				OrderID  int64  `json:"order_id"`
				SenderID int64  `json:"sender_id"`
				Content  string `json:"content"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.lastMessageSenderSeen = body.SenderID
			omit := f.omitSenderOnSend
			f.mu.Unlock()
			m := f.addMessage(body.OrderID, body.SenderID, body.Content)
			if omit {
				m.Sender = nil
			}
			writeJSON(w, http.StatusOK, m)
		case http.MethodDelete:
			f.mu.Lock()
			fail := f.failDeleteMessages
			if !fail {
				orderID, _ := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
				delete(f.messages, orderID)
			}
			f.mu.Unlock()
			if fail {
				writeDetail(w, http.StatusInternalServerError, "messages locked")
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, ok := pathID(r.URL.Path, "/messages/")
	if !ok || r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for orderID, msgs := range f.messages {
		for i, m := range msgs {
			if m.ID == id {
				f.messages[orderID] = append(msgs[:i], msgs[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	writeDetail(w, http.StatusNotFound, "Message not found")
}

func (f *fakeMarketplace) serveProposals(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.URL.Path == "/proposals/" {
		switch r.Method {
		case http.MethodGet:
			out := []domain.Proposal{}
			for _, p := range f.proposals {
				out = append(out, p)
			}
			writeJSON(w, http.StatusOK, out)
		case http.MethodPost:
			var p domain.Proposal
			_ = json.NewDecoder(r.Body).Decode(&p)
			f.nextProp++
			p.ID = f.nextProp
			p.Status = domain.ProposalPending
			f.proposals[p.ID] = p
			writeJSON(w, http.StatusOK, p)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	id, ok := pathID(r.URL.Path, "/proposals/")
	p, exists := f.proposals[id]
	if !ok || !exists {
		writeDetail(w, http.StatusNotFound, "Proposal not found")
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var patch domain.ProposalPatch
		_ = json.NewDecoder(r.Body).Decode(&patch)
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Comment != nil {
			p.Comment = patch.Comment
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		f.proposals[id] = p
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		delete(f.proposals, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type toastLog struct {
	mu    sync.Mutex
	shown []notify.Toast
}

func (l *toastLog) record(ev notify.Event) {
	if ev.Kind != notify.Shown {
		return
	}
	l.mu.Lock()
	l.shown = append(l.shown, ev.Toast)
	l.mu.Unlock()
}

func (l *toastLog) count(sev notify.Severity) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.shown {
		if t.Severity == sev {
			n++
		}
	}
	return n
}

func (l *toastLog) last() notify.Toast {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.shown) == 0 {
		return notify.Toast{}
	}
	return l.shown[len(l.shown)-1]
}

type harness struct {
	app     *App
	market  *fakeMarketplace
	kv      *store.MemoryStore
	toasts  *toastLog
	confirm bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	market, srv := newFakeMarketplace(t)
	h := &harness{market: market, kv: store.NewMemoryStore(), toasts: &toastLog{}, confirm: true}
	n := notify.New()
	n.Subscribe(h.toasts.record)
	a, err := New(Config{
		API:      apiclient.NewClient(srv.URL, 5*time.Second),
		Storage:  h.kv,
		Notifier: n,
		Confirm:  func(string) bool { return h.confirm },
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	h.app = a
	return h
}
