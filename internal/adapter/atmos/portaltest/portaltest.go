// Package portaltest runs an in-process imitation of the Atmos Energy
// account center for tests.
package portaltest

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	LoginFormPath    = "/accountcenter/logon/login.html"
	AuthenticatePath = "/accountcenter/logon/authenticate.html"
	LandingPath      = "/accountcenter/landing/landingScreen.html"
	LogoutPath       = "/accountcenter/logout/index.html"
	DownloadPath     = "/accountcenter/usagehistory/dailyUsageDownload.html"

	ContentTypeXLS = "application/vnd.ms-excel"

	sessionCookie = "JSESSIONID"
)

type Portal struct {
	*httptest.Server

	Username string
	Password string
	FormID   string

	// LoginPage replaces the rendered login form when set.
	LoginPage string
	// ContentType is sent with every workbook download.
	ContentType string
	// Workbooks maps a billingPeriod label to the bytes served for it.
	// Labels without an entry get DefaultWorkbook.
	Workbooks       map[string][]byte
	DefaultWorkbook []byte
	// LogoutStatus, when non-zero, is returned by the logout endpoint.
	LogoutStatus int

	mu        sync.Mutex
	sessions  map[string]bool
	downloads []string
	requests  int
	logouts   int
}

func New(t testing.TB) *Portal {
	t.Helper()

	p := &Portal{
		Username:    "test_user",
		Password:    "test_pass",
		FormID:      "areallyawesomeformid",
		ContentType: ContentTypeXLS,
		Workbooks:   make(map[string][]byte),
		sessions:    make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(LoginFormPath, p.loginForm)
	mux.HandleFunc(AuthenticatePath, p.authenticate)
	mux.HandleFunc(LandingPath, p.landing)
	mux.HandleFunc(LogoutPath, p.logout)
	mux.HandleFunc(DownloadPath, p.download)

	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.requests++
		p.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(p.Server.Close)

	return p
}

// Downloads returns the billingPeriod labels requested so far, in order.
func (p *Portal) Downloads() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.downloads...)
}

// Requests counts every request the portal received.
func (p *Portal) Requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

func (p *Portal) Logouts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logouts
}

// ExpireSessions drops every server-side session.
func (p *Portal) ExpireSessions() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = make(map[string]bool)
}

func (p *Portal) loginForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if p.LoginPage != "" {
		fmt.Fprint(w, p.LoginPage)
		return
	}
	fmt.Fprintf(w, `<html><body><form id="authenticate" action="%s" method="post">
<input type="text" name="username"/>
<input type="password" name="password"/>
<input type="hidden" name="formId" value="%s" id="authenticate_formId"/>
</form></body></html>`, AuthenticatePath, p.FormID)
}

func (p *Portal) authenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("username") != p.Username ||
		r.PostForm.Get("password") != p.Password ||
		r.PostForm.Get("formId") != p.FormID {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html>this is the login page</html>")
		return
	}

	id := newSessionID()
	p.mu.Lock()
	p.sessions[id] = true
	p.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	http.Redirect(w, r, LandingPath, http.StatusFound)
}

func (p *Portal) landing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html>welcome</html>")
}

func (p *Portal) logout(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.logouts++
	if c, err := r.Cookie(sessionCookie); err == nil {
		delete(p.sessions, c.Value)
	}
	p.mu.Unlock()

	if p.LogoutStatus != 0 {
		http.Error(w, "logout failed", p.LogoutStatus)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html>this is the logout page</html>")
}

func (p *Portal) download(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookie)

	p.mu.Lock()
	valid := err == nil && p.sessions[c.Value]
	label := r.URL.Query().Get("billingPeriod")
	if valid {
		p.downloads = append(p.downloads, label)
	}
	p.mu.Unlock()

	if !valid {
		http.Redirect(w, r, LoginFormPath, http.StatusFound)
		return
	}

	body, ok := p.Workbooks[label]
	if !ok {
		body = p.DefaultWorkbook
	}
	w.Header().Set("Content-Type", p.ContentType)
	w.Write(body)
}

func newSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Row is one line of a usage export.
type Row struct {
	Day   time.Time
	Value float64
}

// DailyRows returns n consecutive days starting at start.
func DailyRows(start time.Time, n int, value float64) []Row {
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{Day: start.AddDate(0, 0, i), Value: value})
	}
	return rows
}

// BuildWorkbook renders rows in the portal's export layout.
func BuildWorkbook(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"Account", "Usage (CCF)", "Temperature", "Read Date"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		line := []interface{}{"3001234567", r.Value, 41, r.Day.Format("01/02/2006")}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustWorkbook is BuildWorkbook for test setup.
func MustWorkbook(t testing.TB, rows []Row) []byte {
	t.Helper()
	b, err := BuildWorkbook(rows)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	return b
}
