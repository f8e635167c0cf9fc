package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinic-console/internal/adapters/backend"
	"clinic-console/internal/adapters/cache"
	"clinic-console/internal/adapters/http/handlers"
	"clinic-console/internal/adapters/http/middleware"
	"clinic-console/internal/config"
	"clinic-console/internal/core/address"
	"clinic-console/internal/core/preview"
	"clinic-console/internal/pkg/seal"
)

const sessionToken = "test-token"

// fakeBackend records every call and answers from per-route handlers
type fakeBackend struct {
	mu     sync.Mutex
	calls  []string
	routes map[string]http.HandlerFunc
}

func (f *fakeBackend) on(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	call := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, call)
	h, ok := f.routes[call]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// index returns the position of the first matching call, -1 when absent
func (f *fakeBackend) index(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.calls {
		if c == call {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(data any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": data})
	}
}

func fail(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	}
}

type harness struct {
	t       *testing.T
	app     *fiber.App
	backend *fakeBackend
	deps    *handlers.Deps
	sealer  *seal.Sealer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fb := &fakeBackend{routes: make(map[string]http.HandlerFunc)}
	fb.on(http.MethodGet, "/user/current", ok(map[string]any{
		"id": 1, "firstName": "Ada", "lastName": "Admin", "email": "ada@clinic.test",
	}))
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AppMode: "dev",
		Port:    "0",
		Backend: config.BackendConfig{APIURL: srv.URL, FileUploadsURL: srv.URL + "/uploads", Timeout: 5 * time.Second},
		Session: config.SessionConfig{Secret: "test-secret", CookieName: "token", MaxAge: time.Hour},
		Cookie:  config.CookieConfig{SameSite: "lax"},
		Preview: config.PreviewConfig{TTL: time.Minute, SweepSpec: "@every 5m", MaxBytes: 1 << 20},
	}

	ds, err := address.EmbeddedDataset()
	require.NoError(t, err)

	sealer := seal.New(cfg.Session.Secret)
	deps := &handlers.Deps{
		Config: cfg,
		Client: backend.New(backend.Config{
			APIURL:         cfg.Backend.APIURL,
			FileUploadsURL: cfg.Backend.FileUploadsURL,
			Timeout:        cfg.Backend.Timeout,
		}, zap.NewNop()),
		Cookies:   middleware.NewSessionCookies(cfg, sealer),
		Previews:  preview.NewStore(cfg.Preview.MaxBytes),
		Snapshots: cache.NewMemoryStore(time.Hour),
		Directory: address.NewIndex(ds),
		Logger:    zap.NewNop(),
	}

	return &harness{t: t, app: NewApp(deps), backend: fb, deps: deps, sealer: sealer}
}

func (h *harness) send(req *http.Request, token string) *http.Response {
	h.t.Helper()
	if token != "" {
		sealed, err := h.sealer.Seal(token)
		require.NoError(h.t, err)
		req.AddCookie(&http.Cookie{Name: "token", Value: sealed})
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	return resp
}

func (h *harness) get(target string) *http.Response {
	return h.send(httptest.NewRequest(http.MethodGet, target, nil), sessionToken)
}

func (h *harness) post(target string, form url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.send(req, sessionToken)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func patientRows(n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, map[string]any{"id": i, "controlNo": "P-" + string(rune('A'+i-1)), "firstName": "Patient", "lastName": string(rune('A' + i - 1))})
	}
	return rows
}

// ============================================================
// Session
// ============================================================

func TestDashboard_RequiresSession(t *testing.T) {
	h := newHarness(t)

	resp := h.send(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "")

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestDashboard_Home(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/dashboard")
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome, Ada")
	assert.Contains(t, body, "System Users")
}

func TestLogin_SetsSealedCookie(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodPost, "/user/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@clinic.test", body["email"])
		assert.Equal(t, " secret ", body["password"])
		ok(map[string]any{"token": "fresh-token"})(w, r)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(url.Values{
		"email":    {" ada@clinic.test "},
		"password": {" secret "},
	}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := h.send(req, "")

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	var sealed string
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			sealed = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, sealed)
	token, err := h.sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestLogin_WrongCredentials(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodPost, "/user/login", fail(http.StatusUnauthorized, map[string]any{"status": false}))

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.c&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := h.send(req, "")
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Email or Password is incorrect.")
	assert.Contains(t, body, "Unable to login.")
}

func TestSession_BackendRejectsToken(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/user/current", fail(http.StatusUnauthorized, map[string]any{"status": false}))

	resp := h.get("/dashboard")

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?error="))
}

func TestSession_ExpiredTokenSkipsBackend(t *testing.T) {
	h := newHarness(t)
	expired, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	resp := h.send(httptest.NewRequest(http.MethodGet, "/dashboard", nil), expired)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?error="))
	assert.Equal(t, -1, h.backend.index("GET /user/current"))
}

// ============================================================
// Lists
// ============================================================

func TestList_NormalizesQuery(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/dashboard/patients/list?firstName=Jane")

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard/patients/list?firstName=Jane&limit=10&page=1", resp.Header.Get("Location"))
}

func TestList_FirstPageOfFive(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/patient", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		ok(map[string]any{
			"patients":   patientRows(10),
			"pagination": map[string]any{"page": 1, "limit": 10, "total": 50, "totalNumberOfPages": 5},
		})(w, r)
	})

	resp := h.get("/dashboard/patients/list?limit=10&page=1")
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "1/5 pages")
	assert.Equal(t, 10, strings.Count(body, "/delete\""))
	assert.Contains(t, body, "page=4\"")
	assert.NotContains(t, body, "page=5\"")
	assert.Contains(t, body, `<span aria-disabled="true">Previous</span>`)
	assert.NotContains(t, body, `<span aria-disabled="true">Next</span>`)
}

func TestList_SearchResetsPageAndKeepsOtherParams(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/dashboard/patients/list/search", url.Values{
		"_query":    {"lastName=Doe&limit=10&page=3"},
		"firstName": {"Jane"},
	})

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/patients/list?firstName=Jane&lastName=Doe&limit=10&page=1", resp.Header.Get("Location"))
	assert.Equal(t, -1, h.backend.index("GET /patient"))
}

func TestList_ClearSearchAndFilters(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/dashboard/users/system-users/list/search/clear", url.Values{
		"_query": {"email=a%40b.c&firstName=Jane&limit=25&page=2&role=admin"},
	})
	assert.Equal(t, "/dashboard/users/system-users/list?limit=25&page=1&role=admin", resp.Header.Get("Location"))

	resp = h.post("/dashboard/users/system-users/list/filter/clear", url.Values{
		"_query": {"firstName=Jane&limit=25&page=2&role=admin&role=nurse"},
	})
	assert.Equal(t, "/dashboard/users/system-users/list?firstName=Jane&limit=25&page=1", resp.Header.Get("Location"))
}

func TestList_FilterStoresRepeatedKeys(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/dashboard/users/system-users/list/filter", url.Values{
		"_query": {"limit=10&page=4"},
		"role":   {"admin", "nurse"},
	})

	assert.Equal(t, "/dashboard/users/system-users/list?limit=10&page=1&role=admin&role=nurse", resp.Header.Get("Location"))
}

func TestList_RoleOptionsLoadBeforeUsers(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/role", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		ok(map[string]any{"roles": []map[string]any{
			{"id": 1, "key": "admin", "name": "Admin"},
			{"id": 2, "key": "nurse", "name": "Nurse"},
		}})(w, r)
	})
	h.backend.on(http.MethodGet, "/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"admin"}, r.URL.Query()["role"])
		ok(map[string]any{"users": []map[string]any{
			{"id": 9, "firstName": "Jane", "lastName": "Doe", "roles": []map[string]any{{"id": 1, "key": "admin"}}},
		}})(w, r)
	})

	resp := h.get("/dashboard/users/system-users/list?limit=10&page=1&role=admin")
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Less(t, h.backend.index("GET /role"), h.backend.index("GET /user"))
	assert.Contains(t, body, `value="admin" checked`)
	assert.Contains(t, body, "Jane Doe")
}

func TestList_FailureKeepsPreviousRows(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/role", ok(map[string]any{
		"roles": []map[string]any{{"id": 3, "key": "pharmacist", "name": "Pharmacist", "userCount": 2}},
	}))
	require.Equal(t, fiber.StatusOK, h.get("/dashboard/users/roles/list?limit=10&page=1").StatusCode)

	h.backend.on(http.MethodGet, "/role", fail(http.StatusInternalServerError, map[string]any{"status": false}))
	resp := h.get("/dashboard/users/roles/list?limit=10&page=2")
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Pharmacist")
	assert.Contains(t, body, "Oops! Something went wrong.")
}

func TestList_DeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodDelete, "/role/7", ok(nil))

	resp := h.post("/dashboard/users/roles/list/7/delete", url.Values{"_query": {"limit=10&page=2"}})

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/users/roles/list?limit=10&page=2", resp.Header.Get("Location"))
	assert.Equal(t, -1, h.backend.index("DELETE /role/7"))

	resp = h.post("/dashboard/users/roles/list/7/delete", url.Values{"_query": {"limit=10&page=2"}, "confirm": {"yes"}})

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/users/roles/list?limit=10&page=2&notice=Successfully+deleted.", resp.Header.Get("Location"))
	assert.GreaterOrEqual(t, h.backend.index("DELETE /role/7"), 0)
}

func TestList_DeleteFailureFlashesError(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodDelete, "/role/7", fail(http.StatusBadRequest, map[string]any{
		"data": map[string]any{"message": "Role is still assigned."},
	}))

	resp := h.post("/dashboard/users/roles/list/7/delete", url.Values{"_query": {"limit=10&page=1"}, "confirm": {"yes"}})

	assert.Equal(t, "/dashboard/users/roles/list?limit=10&page=1&error=Role+is+still+assigned.", resp.Header.Get("Location"))
}

func TestList_Export(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/service", ok(map[string]any{
		"services": []map[string]any{{"id": 1, "name": "Check-up", "category": 1, "price": 350}},
	}))

	resp := h.get("/dashboard/services/list/export?limit=10&page=1")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "services.xlsx")
	assert.NotEmpty(t, readBody(t, resp))
}

// ============================================================
// Forms
// ============================================================

func TestForm_CreateSuccessRedirectsToList(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodPost, "/role", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"name": "Nurse"}, body)
		ok(map[string]any{"role": map[string]any{"id": 4}})(w, r)
	})

	resp := h.post("/dashboard/users/roles/create", url.Values{"name": {" Nurse "}})

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/users/roles/list?limit=10&page=1&notice=Nurse+role+is+created%21", resp.Header.Get("Location"))
}

func TestForm_ValidationErrorsStayOnForm(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodPost, "/role", fail(http.StatusBadRequest, map[string]any{
		"data": map[string]any{"validationErrors": map[string]any{"name": []string{"Name is required."}}},
	}))

	resp := h.post("/dashboard/users/roles/create", url.Values{"name": {""}})
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Name is required.")
	assert.Contains(t, body, "Check your form for errors.")
}

func TestForm_EditHydratesRecord(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/role/3", ok(map[string]any{"role": map[string]any{"id": 3, "name": "Nurse"}}))

	resp := h.get("/dashboard/users/roles/3")
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Nurse"`)
	assert.NotContains(t, body, "<fieldset disabled>")
}

func TestForm_EditMissingRecord(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/role/99", ok(map[string]any{}))

	resp := h.get("/dashboard/users/roles/99")

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestForm_EditLoadFailureRendersDisabled(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/role/3", fail(http.StatusInternalServerError, nil))

	resp := h.get("/dashboard/users/roles/3")
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<fieldset disabled>")
	assert.Contains(t, body, "Oops! Something went wrong.")
}

func TestForm_DemographicsContinueToAdditionalData(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodPost, "/patient/demographics", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Jane", r.FormValue("firstName"))
		assert.Empty(t, r.MultipartForm.File)
		ok(map[string]any{"patient": map[string]any{"id": 42}})(w, r)
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("firstName", "Jane"))
	require.NoError(t, mw.WriteField("lastName", "Doe"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/dashboard/patients/demographics", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp := h.send(req, sessionToken)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/dashboard/patients/additional-data/42?notice="))
}

func TestForm_UploadIsSentAsFilePart(t *testing.T) {
	h := newHarness(t)
	png := []byte("\x89PNG\r\n\x1a\nlogo")
	h.backend.on(http.MethodPost, "/service", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, fh, err := r.FormFile("logo")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "logo.png", fh.Filename)
		assert.Equal(t, png, data)
		assert.Equal(t, "1", r.FormValue("category"))
		ok(map[string]any{"service": map[string]any{"id": 5}})(w, r)
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Check-up"))
	require.NoError(t, mw.WriteField("category", "1"))
	require.NoError(t, mw.WriteField("price", "350"))
	part, err := mw.CreateFormFile("logo", "logo.png")
	require.NoError(t, err)
	_, _ = part.Write(png)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/dashboard/services/create", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp := h.send(req, sessionToken)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 0, h.deps.Previews.Len())
}

func TestForm_AddressCascadeDoesNotSubmit(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/dashboard/settings/health-service-details", url.Values{
		"name":         {"Clinic"},
		"province":     {"0434"},
		"municipality": {"043424"},
		"_cascade":     {"province"},
	})
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "City of Calamba")
	assert.NotContains(t, body, `value="043424" selected`)
	assert.Equal(t, -1, h.backend.index("PATCH /store"))
}

func TestForm_StoreSubmitSendsAddressIDs(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodPatch, "/store", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "0434", r.FormValue("province"))
		assert.Equal(t, "043404", r.FormValue("municipality"))
		assert.Equal(t, "043404001", r.FormValue("baranggay"))
		ok(nil)(w, r)
	})

	resp := h.post("/dashboard/settings/health-service-details", url.Values{
		"name":         {"Clinic"},
		"province":     {"0434"},
		"municipality": {"043404"},
		"baranggay":    {"043404001"},
	})

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard/settings/health-service-details?notice=Store+successfully+updated.", resp.Header.Get("Location"))
}

func TestForm_EditKeepsAddressOutsideDirectory(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodGet, "/patient/7/additional-data", ok(map[string]any{"patient": map[string]any{
		"id":              7,
		"stateOrProvince": map[string]any{"provinceId": "0314", "name": "Bulacan"},
		"cityOrTown":      map[string]any{"provinceId": "0314", "municipalityId": "031410", "name": "City of Malolos"},
		"baranggay":       map[string]any{"provinceId": "0314", "municipalityId": "031410", "baranggayId": "031410001", "name": "Anilao"},
	}}))
	var payload map[string]any
	h.backend.on(http.MethodPatch, "/patient/7/additional-data", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		ok(nil)(w, r)
	})

	resp := h.get("/dashboard/patients/additional-data/7")
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<option value="0314" selected>Bulacan</option>`)
	assert.Contains(t, body, `<option value="031410" selected>City of Malolos</option>`)
	assert.Contains(t, body, `<option value="031410001" selected>Anilao</option>`)
	assert.Contains(t, body, `name="_region.province" value="Bulacan"`)

	resp = h.post("/dashboard/patients/additional-data/7", url.Values{
		"province":             {"0314"},
		"municipality":         {"031410"},
		"baranggay":            {"031410001"},
		"_region.province":     {"Bulacan"},
		"_region.municipality": {"City of Malolos"},
		"_region.baranggay":    {"Anilao"},
		"emergencyContactNo":   {"09170000000"},
	})

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.NotNil(t, payload)
	assert.Equal(t, "0314", payload["province"])
	assert.Equal(t, "031410", payload["municipality"])
	assert.Equal(t, "031410001", payload["baranggay"])
}

func TestForm_WrongCurrentPasswordIsFieldError(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodPatch, "/user/current/password", fail(http.StatusUnauthorized, map[string]any{"status": false}))

	resp := h.post("/dashboard/profile/security", url.Values{
		"currentPassword": {"wrong"},
		"password":        {"n3w-secret"},
		"confirmPassword": {"n3w-secret"},
	})
	body := readBody(t, resp)

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Invalid current password")
	assert.Contains(t, body, "Unable to reset password.")
}

func TestForm_UnauthorizedSubmitEndsSession(t *testing.T) {
	h := newHarness(t)
	h.backend.on(http.MethodPost, "/role", fail(http.StatusUnauthorized, map[string]any{"status": false}))

	resp := h.post("/dashboard/users/roles/create", url.Values{"name": {"Nurse"}})

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?error="))
}

// ============================================================
// Previews
// ============================================================

var previewURL = regexp.MustCompile(`/previews/([0-9a-f-]{36})`)

func openUserForm(t *testing.T, h *harness) string {
	t.Helper()
	h.backend.on(http.MethodGet, "/role", ok(map[string]any{"roles": []map[string]any{
		{"id": 1, "key": "admin", "name": "Admin"},
		{"id": 2, "key": "nurse", "name": "Nurse"},
	}}))
	h.backend.on(http.MethodGet, "/user/9", ok(map[string]any{"user": map[string]any{
		"id": 9, "firstName": "Jane", "lastName": "Doe", "profilePhoto": "jane.png",
		"roles": []map[string]any{{"id": 1, "key": "admin"}},
	}}))
	h.backend.on(http.MethodGet, "/uploads/profile-photos/jane.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("jane-photo"))
	})

	resp := h.get("/dashboard/users/system-users/9")
	body := readBody(t, resp)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="1" selected`)
	assert.NotContains(t, body, `value="2" selected`)

	m := previewURL.FindStringSubmatch(body)
	require.Len(t, m, 2)
	return m[1]
}

func TestPreview_ServedToOwnerOnly(t *testing.T) {
	h := newHarness(t)
	id := openUserForm(t, h)

	resp := h.get("/previews/" + id)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "jane-photo", readBody(t, resp))

	other := h.send(httptest.NewRequest(http.MethodGet, "/previews/"+id, nil), "other-token")
	assert.Equal(t, fiber.StatusNotFound, other.StatusCode)
}

func TestPreview_CancelReleasesScope(t *testing.T) {
	h := newHarness(t)
	id := openUserForm(t, h)
	item, err := h.deps.Previews.Get(id)
	require.NoError(t, err)

	resp := h.post("/previews/scopes/"+item.Scope+"/release", url.Values{"next": {"//evil.example"}})

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	assert.Equal(t, 0, h.deps.Previews.Len())
}

func TestLogout_ReleasesPreviewsAndClearsCookie(t *testing.T) {
	h := newHarness(t)
	openUserForm(t, h)
	require.Equal(t, 1, h.deps.Previews.Len())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	resp := h.send(req, sessionToken)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?notice="))
	assert.Equal(t, 0, h.deps.Previews.Len())
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			assert.Empty(t, c.Value)
		}
	}
}

// ============================================================
// Health
// ============================================================

func TestHealth(t *testing.T) {
	h := newHarness(t)

	resp := h.send(httptest.NewRequest(http.MethodGet, "/health", nil), "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "disabled", body.Data.Checks["database"])
	assert.Equal(t, "memory", body.Data.Checks["snapshots"])
}
