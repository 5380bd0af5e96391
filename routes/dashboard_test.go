package routes

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"timeclock/config"
	"timeclock/jobs"
	"timeclock/models"
	"timeclock/storage"
)

type fixedSource int

func (f fixedSource) Intn(n int) int { return int(f) % n }

func TestRightsAndRoles(t *testing.T) {
	env := newTestEnv(t, nil)
	clerk := env.addUser(t, "clerk", models.RoleUser, []string{models.RightEmployees}, nil)
	cookie := env.dashboardCookie(t, clerk)

	if rec := env.do(http.MethodGet, "/api/categories", nil, nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/employees", nil, cookie, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with the employees right, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/categories", nil, cookie, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without the categories right, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/users", nil, cookie, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on users for a non-admin, got %d", rec.Code)
	}

	// a stale admin token is judged by the stored role
	stale := env.dashboardCookie(t, &models.User{ID: clerk.ID, Role: models.RoleSuperAdmin})
	if rec := env.do(http.MethodGet, "/api/users", nil, stale, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a demoted user, got %d", rec.Code)
	}
}

func TestEmployeeIDsAreValidated(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	cookie := env.dashboardCookie(t, admin)

	for _, id := range []string{"xyz", "65a1f0c2e4b0a1b2c3d4e5f", "65a1f0c2e4b0a1b2c3d4e5fz"} {
		rec := env.do(http.MethodGet, "/api/employees/"+id, nil, cookie, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", id, rec.Code)
		}
		if decode(t, rec)["error"] != "Validation failed" {
			t.Fatalf("%s: expected validation error, got %s", id, rec.Body.String())
		}
	}
	if rec := env.do(http.MethodGet, "/api/employees/65a1f0c2e4b0a1b2c3d4e5f6", nil, cookie, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a well-formed unknown id, got %d", rec.Code)
	}
}

func TestEmployeeCRUDAndLocationScope(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	adminCookie := env.dashboardCookie(t, admin)

	rec := env.do(http.MethodPost, "/api/employees", gin.H{"name": "Ada", "pin": "1111", "location": "North"}, adminCookie, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	north := decode(t, rec)["employee"].(map[string]interface{})
	if loc := north["location"].([]interface{}); len(loc) != 1 || loc[0] != "North" {
		t.Fatalf("expected a single-string location to become a list, got %v", loc)
	}
	south := env.addEmployee(t, "Bob", "2222", "South")

	if rec := env.do(http.MethodPost, "/api/employees", gin.H{"name": "", "pin": "12"}, adminCookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	clerk := env.addUser(t, "clerk", models.RoleUser, []string{models.RightEmployees}, []string{"North"})
	clerkCookie := env.dashboardCookie(t, clerk)

	rec = env.do(http.MethodGet, "/api/employees", nil, clerkCookie, nil)
	list := decode(t, rec)["employees"].([]interface{})
	if len(list) != 1 || list[0].(map[string]interface{})["name"] != "Ada" {
		t.Fatalf("expected only North employees, got %v", list)
	}
	if rec := env.do(http.MethodGet, "/api/employees/"+south.ID.Hex(), nil, clerkCookie, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 outside the clerk's locations, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPut, "/api/employees/"+south.ID.Hex(), gin.H{"name": "Robert"}, clerkCookie, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when updating outside scope, got %d", rec.Code)
	}
	if rec := env.do(http.MethodDelete, "/api/employees/"+south.ID.Hex(), nil, clerkCookie, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when deleting outside scope, got %d", rec.Code)
	}
	if len(env.mem.employees.employees) != 2 {
		t.Fatal("an out-of-scope delete must leave the employee in place")
	}
	if rec := env.do(http.MethodDelete, "/api/employees/"+north["id"].(string), nil, clerkCookie, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected the clerk to delete within scope, got %d", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/employees", nil, adminCookie, nil)
	if list := decode(t, rec)["employees"].([]interface{}); len(list) != 1 {
		t.Fatalf("expected admins to see the remaining employee, got %v", list)
	}

	rec = env.do(http.MethodPut, "/api/employees/"+south.ID.Hex(), gin.H{"name": "Robert", "role": []string{"Cook"}}, adminCookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["employee"].(map[string]interface{})["name"]; got != "Robert" {
		t.Fatalf("expected rename, got %v", got)
	}

	if rec := env.do(http.MethodDelete, "/api/employees/"+south.ID.Hex(), nil, adminCookie, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected delete 200, got %d", rec.Code)
	}
	if rec := env.do(http.MethodDelete, "/api/employees/"+south.ID.Hex(), nil, adminCookie, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected second delete 404, got %d", rec.Code)
	}
}

func TestGeneratePin(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	cookie := env.dashboardCookie(t, admin)
	env.addEmployee(t, "Ada", "0042")

	env.h.PinSource = fixedSource(7)
	rec := env.do(http.MethodGet, "/api/employees/generate-pin", nil, cookie, nil)
	if rec.Code != http.StatusOK || decode(t, rec)["pin"] != "0007" {
		t.Fatalf("expected 0007, got %d %s", rec.Code, rec.Body.String())
	}

	env.h.PinSource = fixedSource(42)
	rec = env.do(http.MethodGet, "/api/employees/generate-pin", nil, cookie, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 once every draw collides, got %d", rec.Code)
	}
}

func TestCategoriesAndDevices(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	cookie := env.dashboardCookie(t, admin)

	rec := env.do(http.MethodPost, "/api/categories", gin.H{"name": "HQ", "type": "location", "lat": 1.5, "lng": 2.5, "radius": 80}, cookie, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	hq := decode(t, rec)["category"].(map[string]interface{})
	if hq["geofenceMode"] != models.GeofenceSoft {
		t.Fatalf("expected soft default, got %v", hq["geofenceMode"])
	}
	if rec := env.do(http.MethodPut, "/api/categories/"+hq["id"].(string), gin.H{"lat": 3.5}, cookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a partial geofence update, got %d", rec.Code)
	}
	if got := env.mem.categories.categories[0]; *got.Lat != 1.5 {
		t.Fatalf("expected the fence to stay put, got lat %v", *got.Lat)
	}
	if rec := env.do(http.MethodPost, "/api/categories", gin.H{"name": "HQ", "type": "location"}, cookie, nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/api/categories", gin.H{"name": "Cook", "type": "role", "radius": 10}, cookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a geofence on a role, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/categories?type=planet", nil, cookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown type filter, got %d", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/devices", gin.H{"deviceId": "tablet-1", "locationName": "HQ"}, cookie, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	device := decode(t, rec)["device"].(map[string]interface{})
	if device["registeredBy"] != admin.ID.Hex() {
		t.Fatalf("expected registeredBy to be the admin, got %v", device["registeredBy"])
	}

	rec = env.do(http.MethodPatch, "/api/devices/"+device["id"].(string)+"/status", gin.H{"status": "revoked"}, cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if got := env.mem.devices.devices[0]; got.Status != models.DeviceRevoked || got.RevokedBy == nil || *got.RevokedBy != admin.ID {
		t.Fatalf("expected revocation to be recorded, got %+v", got)
	}
	if rec := env.do(http.MethodPatch, "/api/devices/"+device["id"].(string)+"/status", gin.H{"status": "lost"}, cookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown status, got %d", rec.Code)
	}
}

func TestUserManagement(t *testing.T) {
	env := newTestEnv(t, nil)
	root := env.addUser(t, "root", models.RoleSuperAdmin, nil, nil)
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	rootCookie, adminCookie := env.dashboardCookie(t, root), env.dashboardCookie(t, admin)

	newUser := func(role string) gin.H {
		return gin.H{"username": "new-" + role, "password": testPassword, "role": role, "rights": []string{"employees"}}
	}

	if rec := env.do(http.MethodPost, "/api/users", newUser(models.RoleAdmin), adminCookie, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for an admin creating an admin, got %d", rec.Code)
	}
	rec := env.do(http.MethodPost, "/api/users", newUser(models.RoleUser), adminCookie, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	clerkID := decode(t, rec)["user"].(map[string]interface{})["id"].(string)

	if rec := env.do(http.MethodPost, "/api/users", newUser(models.RoleAdmin), rootCookie, nil); rec.Code != http.StatusCreated {
		t.Fatalf("expected super admin to create admins, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/api/users", newUser(models.RoleUser), adminCookie, nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate username, got %d", rec.Code)
	}

	if rec := env.do(http.MethodPut, "/api/users/"+root.ID.Hex(), gin.H{"name": "x"}, adminCookie, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for an admin editing a super admin, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPut, "/api/users/"+clerkID, gin.H{"role": "super_admin"}, adminCookie, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for promoting beyond own rank, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPut, "/api/users/"+clerkID, gin.H{"name": "Clerk"}, adminCookie, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if rec := env.do(http.MethodDelete, "/api/users/"+admin.ID.Hex(), nil, adminCookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when deleting yourself, got %d", rec.Code)
	}
	if rec := env.do(http.MethodDelete, "/api/users/"+clerkID, nil, adminCookie, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTimesheetEditsRebuildShiftAndExport(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	cookie := env.dashboardCookie(t, admin)
	env.addEmployee(t, "Ada", "1234")

	for _, p := range []gin.H{
		{"pin": "1234", "type": "in", "date": "01-03-2024", "time": "09:00"},
		{"pin": "1234", "type": "break", "date": "01-03-2024", "time": "12:00"},
		{"pin": "1234", "type": "endBreak", "date": "01-03-2024", "time": "12:30"},
		{"pin": "1234", "type": "out", "date": "01-03-2024", "time": "17:00"},
	} {
		rec := env.do(http.MethodPost, "/api/timesheets", p, cookie, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
		}
		if src := decode(t, rec)["timesheet"].(map[string]interface{})["source"]; src != models.SourceInsert {
			t.Fatalf("expected source insert, got %v", src)
		}
	}
	if rec := env.do(http.MethodPost, "/api/timesheets", gin.H{"pin": "1234", "type": "lunch", "date": "2024-03-01", "time": "9"}, cookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	shift, err := env.mem.shifts.FindByPinDate(context.Background(), "1234", "01-03-2024")
	if err != nil {
		t.Fatalf("expected a daily shift: %v", err)
	}
	if shift.Source != models.ShiftSourceManual || shift.Status != models.ShiftCompleted || shift.TotalWorkingHours != 7.5 || shift.TotalBreakMinutes != 30 {
		t.Fatalf("unexpected shift %+v", shift)
	}

	// moving clock-out to another day splits the shift
	outID := env.mem.timesheets.rows[3].ID.Hex()
	rec := env.do(http.MethodPut, "/api/timesheets/"+outID, gin.H{"pin": "1234", "type": "out", "date": "02-03-2024", "time": "01:00"}, cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	shift, _ = env.mem.shifts.FindByPinDate(context.Background(), "1234", "01-03-2024")
	if shift.ClockOut != nil || shift.Status != models.ShiftActive {
		t.Fatalf("expected clock-out removed from the old day, got %+v", shift)
	}
	if _, err := env.mem.shifts.FindByPinDate(context.Background(), "1234", "02-03-2024"); err != nil {
		t.Fatalf("expected a shift on the new day: %v", err)
	}

	rec = env.do(http.MethodGet, "/api/timesheets?from=2024-03-01&to=2024-03-01", nil, cookie, nil)
	if rows := decode(t, rec)["timesheets"].([]interface{}); len(rows) != 3 {
		t.Fatalf("expected 3 rows on the first, got %d", len(rows))
	}
	if rec := env.do(http.MethodGet, "/api/timesheets?from=2024-03-05&to=2024-03-01", nil, cookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an inverted range, got %d", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/timesheets/export?from=2024-03-01&to=2024-03-01", nil, cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "timesheets_2024-03-01_2024-03-01.xlsx") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	book, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows("Timesheets")
	if err != nil {
		t.Fatalf("read punches: %v", err)
	}
	if len(rows) != 4 || rows[1][0] != "1234" || rows[1][1] != "Ada" || rows[1][3] != "09:00" {
		t.Fatalf("unexpected punch rows %v", rows)
	}
	summary, err := book.GetRows("Summary")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if len(summary) != 2 || summary[1][3] != "09:00" || summary[1][7] != "30" {
		t.Fatalf("unexpected summary rows %v", summary)
	}
}

func TestShiftApproval(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	cookie := env.dashboardCookie(t, admin)

	for _, p := range []gin.H{
		{"pin": "1234", "type": "in", "date": "01-03-2024", "time": "09:00"},
		{"pin": "1234", "type": "out", "date": "01-03-2024", "time": "17:00"},
	} {
		env.do(http.MethodPost, "/api/timesheets", p, cookie, nil)
	}

	rec := env.do(http.MethodGet, "/api/shifts?pin=1234&date=01-03-2024", nil, cookie, nil)
	shifts := decode(t, rec)["shifts"].([]interface{})
	if len(shifts) != 1 {
		t.Fatalf("expected one shift, got %v", shifts)
	}
	id := shifts[0].(map[string]interface{})["id"].(string)

	if rec := env.do(http.MethodGet, "/api/shifts?date=2024-03-01", nil, cookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an ISO date, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPatch, "/api/shifts/"+id+"/status", gin.H{"status": "completed"}, cookie, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPatch, "/api/shifts/"+id+"/status", gin.H{"status": "approved"}, cookie, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// later edits recompute totals but keep the review
	env.do(http.MethodPost, "/api/timesheets", gin.H{"pin": "1234", "type": "out", "date": "01-03-2024", "time": "18:00"}, cookie, nil)
	shift, _ := env.mem.shifts.FindByPinDate(context.Background(), "1234", "01-03-2024")
	if shift.Status != models.ShiftApproved || shift.TotalWorkingHours != 9 {
		t.Fatalf("expected approved 9h shift, got %+v", shift)
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(data)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t, nil)
	emp := env.addEmployee(t, "Ada", "1234")
	cookie := env.employeeCookie(t, emp.ID)

	body, ct := multipartBody(t, "file", "photo.jpg", []byte("jpeg bytes"))
	rec := env.do(http.MethodPost, "/api/employee/upload/image", body, cookie, map[string]string{"Content-Type": ct})
	if rec.Code != http.StatusOK || decode(t, rec)["url"] != env.images.url {
		t.Fatalf("expected uploaded url, got %d %s", rec.Code, rec.Body.String())
	}
	if len(env.images.uploads) != 1 || env.images.uploads[0] != "punches/photo.jpg" {
		t.Fatalf("expected a punch upload, got %v", env.images.uploads)
	}

	body, ct = multipartBody(t, "", "", nil)
	if rec := env.do(http.MethodPost, "/api/employee/upload/image", body, cookie, map[string]string{"Content-Type": ct}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file, got %d", rec.Code)
	}

	env.images.err = storage.ErrNotImage
	body, ct = multipartBody(t, "file", "notes.txt", []byte("hello"))
	if rec := env.do(http.MethodPost, "/api/employee/upload/image", body, cookie, map[string]string{"Content-Type": ct}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-image, got %d", rec.Code)
	}

	env.images.err = nil
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	body, ct = multipartBody(t, "file", "portrait.png", []byte("png bytes"))
	rec = env.do(http.MethodPost, "/api/upload/image", body, env.dashboardCookie(t, admin), map[string]string{"Content-Type": ct})
	if rec.Code != http.StatusOK || env.images.uploads[1] != "employees/portrait.png" {
		t.Fatalf("expected a dashboard upload, got %d %v", rec.Code, env.images.uploads)
	}
}

func TestImageProxyRejectsDisallowedURLs(t *testing.T) {
	env := newTestEnv(t, nil)
	emp := env.addEmployee(t, "Ada", "1234")
	cookie := env.employeeCookie(t, emp.ID)

	if rec := env.do(http.MethodGet, "/api/image?url="+url.QueryEscape("https://images.example.com/a.jpg"), nil, nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	for _, raw := range []string{
		"",
		"http://images.example.com/a.jpg",
		"ftp://images.example.com/a.jpg",
		"//images.example.com/a.jpg",
		"https://evil.example.com/a.jpg",
		"https://images.example.com.evil.com/a.jpg",
		"https://images.example.com:8443/a.jpg",
		"https://user:pw@images.example.com/a.jpg",
		"https://images.example.com@evil.com/a.jpg",
		"not a url at all",
	} {
		rec := env.do(http.MethodGet, "/api/image?url="+url.QueryEscape(raw), nil, cookie, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", raw, rec.Code)
		}
	}
}

func TestImageProxyRedirectsStayOnImageHost(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("INTERNAL-SECRET"))
	}))
	defer internal.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("pixel"))
	})
	mux.HandleFunc("/moved.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok.png", http.StatusFound)
	})
	mux.HandleFunc("/escape.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internal.URL+"/secret.png", http.StatusFound)
	})
	mux.HandleFunc("/loop.png", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop.png", http.StatusFound)
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()

	env := newTestEnv(t, func(c *config.Config) { c.ImageHost = strings.TrimPrefix(srv.URL, "https://") })
	env.h.HTTPClient = srv.Client()
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	cookie := env.dashboardCookie(t, admin)

	rec := env.do(http.MethodGet, "/api/image?url="+url.QueryEscape(srv.URL+"/moved.png"), nil, cookie, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "pixel" {
		t.Fatalf("expected a same-host redirect to be followed, got %d %q", rec.Code, rec.Body.String())
	}

	for _, path := range []string{"/escape.png", "/loop.png"} {
		rec := env.do(http.MethodGet, "/api/image?url="+url.QueryEscape(srv.URL+path), nil, cookie, nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "INTERNAL-SECRET") {
			t.Fatalf("%s: leaked the internal response", path)
		}
	}
}

func TestImageProxyFetchesFromImageHost(t *testing.T) {
	pixel := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pixel)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()

	env := newTestEnv(t, func(c *config.Config) { c.ImageHost = strings.TrimPrefix(srv.URL, "https://") })
	env.h.HTTPClient = srv.Client()
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	cookie := env.dashboardCookie(t, admin)

	rec := env.do(http.MethodGet, "/api/image?url="+url.QueryEscape(srv.URL+"/ok.png"), nil, cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(rec.Body.Bytes(), pixel) || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected the upstream image, got %q %q", rec.Header().Get("Content-Type"), rec.Body.Bytes())
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=86400" {
		t.Fatalf("unexpected cache header %q", rec.Header().Get("Cache-Control"))
	}

	cases := map[string]int{
		"/missing": http.StatusNotFound,
		"/page":    http.StatusBadRequest,
		"/broken":  http.StatusInternalServerError,
	}
	for path, want := range cases {
		rec := env.do(http.MethodGet, "/api/image?url="+url.QueryEscape(srv.URL+path), nil, cookie, nil)
		if rec.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, rec.Code)
		}
	}
}

func TestAdminCleanup(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.addUser(t, "boss", models.RoleAdmin, nil, nil)
	clerk := env.addUser(t, "clerk", models.RoleUser, models.UserRights, nil)
	adminCookie := env.dashboardCookie(t, admin)

	ctx := context.Background()
	for _, date := range []string{"15-06-2023", "15-01-2024", "29-02-2024", "01-03-2024", "10-03-2024"} {
		if err := env.mem.timesheets.Create(ctx, &models.Timesheet{Pin: "1234", Type: models.PunchIn, Date: date, Time: "09:00"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	env.mem.shifts.Upsert(ctx, &models.DailyShift{Pin: "1234", Date: "15-01-2024"})
	env.mem.shifts.Upsert(ctx, &models.DailyShift{Pin: "1234", Date: "01-03-2024"})

	before := gin.H{"beforeDate": "2024-03-01"}
	if rec := env.do(http.MethodPost, "/api/admin/cleanup/timesheets", before, nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/api/admin/cleanup/timesheets", before, env.dashboardCookie(t, clerk), nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin, got %d", rec.Code)
	}
	for _, bad := range []string{"01-03-2024", "2024-02-30", ""} {
		if rec := env.do(http.MethodPost, "/api/admin/cleanup/timesheets", gin.H{"beforeDate": bad}, adminCookie, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", bad, rec.Code)
		}
	}

	rec := env.do(http.MethodPost, "/api/admin/cleanup/timesheets", before, adminCookie, nil)
	if rec.Code != http.StatusOK || decode(t, rec)["deleted"] != float64(3) {
		t.Fatalf("expected 3 deleted, got %d %s", rec.Code, rec.Body.String())
	}
	if len(env.mem.timesheets.rows) != 2 || env.mem.timesheets.rows[0].Date != "01-03-2024" {
		t.Fatalf("expected rows from the cutoff onward to remain, got %+v", env.mem.timesheets.rows)
	}
	if len(env.mem.shifts.shifts) != 1 || env.mem.shifts.shifts[0].Date != "01-03-2024" {
		t.Fatalf("expected old shifts removed, got %+v", env.mem.shifts.shifts)
	}

	env.images.deleted = 2
	env.images.failures = []string{"punches/2024/01/x.jpg: denied"}
	rec = env.do(http.MethodPost, "/api/admin/cleanup/cloudinary", before, adminCookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["deleted"] != float64(2) || len(body["errors"].([]interface{})) != 1 {
		t.Fatalf("unexpected image cleanup result %v", body)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !env.images.sweptTill.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, env.images.sweptTill)
	}
	if env.images.sweptFrom != storage.PunchFolder {
		t.Fatalf("expected only punch photos swept, got %q", env.images.sweptFrom)
	}

	env.h.Cleaner = jobs.NewCleaner(env.h.Store, nil, time.UTC)
	if rec := env.do(http.MethodPost, "/api/admin/cleanup/cloudinary", before, adminCookie, nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without image storage, got %d", rec.Code)
	}
}

func TestCronCleanupSecret(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.ImageRetentionDays = 7 })
	env.images.deleted = 4

	path := "/api/cron/cleanup-cloudinary"
	if rec := env.do(http.MethodGet, path, nil, nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, path, nil, nil, map[string]string{"Authorization": "Bearer nope"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong secret, got %d", rec.Code)
	}

	rec := env.do(http.MethodGet, path, nil, nil, map[string]string{"Authorization": "Bearer cron-secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with header secret, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["ok"] != true || body["deleted"] != float64(4) || !strings.Contains(body["message"].(string), "7 days") {
		t.Fatalf("unexpected cron result %v", body)
	}
	if age := time.Since(env.images.sweptTill); age < 7*24*time.Hour-time.Minute || age > 7*24*time.Hour+time.Minute {
		t.Fatalf("expected a 7 day cutoff, got %v", env.images.sweptTill)
	}
	if env.images.sweptFrom != storage.PunchFolder {
		t.Fatalf("expected the cron sweep to spare portraits, got %q", env.images.sweptFrom)
	}

	if rec := env.do(http.MethodPost, path+"?secret=cron-secret", nil, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with query secret, got %d", rec.Code)
	}

	open := newTestEnv(t, func(c *config.Config) { c.CronSecret = "" })
	if rec := open.do(http.MethodGet, path+"?secret=", nil, nil, map[string]string{"Authorization": "Bearer "}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no secret is configured, got %d", rec.Code)
	}
}
